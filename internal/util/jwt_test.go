package util

import (
	"eduassess_backend/internal/model"
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"
	user := &model.User{
		Name:  "张三",
		Email: "zhangsan@example.com",
		Role:  model.Teacher,
	}
	user.ID = 7

	token, err := GenerateJWT(user, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseJWT(token, secret)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != 7 || claims.Role != model.Teacher || claims.Email != user.Email {
		t.Errorf("claims = %+v", claims)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	user := &model.User{Role: model.Student}
	user.ID = 1

	token, _ := GenerateJWT(user, "0123456789abcdef0123456789abcdef", time.Hour)
	if _, err := ParseJWT(token, "another-secret-another-secret-ab"); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}

func TestJWTExpired(t *testing.T) {
	user := &model.User{Role: model.Student}
	user.ID = 1

	token, _ := GenerateJWT(user, "0123456789abcdef0123456789abcdef", -time.Minute)
	if _, err := ParseJWT(token, "0123456789abcdef0123456789abcdef"); err == nil {
		t.Fatal("expected expired token to fail")
	}
}
