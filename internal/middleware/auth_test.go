package middleware

import (
	"eduassess_backend/internal/config"
	"eduassess_backend/internal/model"
	"eduassess_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeUsers struct {
	users map[uint]*model.User
}

func (f *fakeUsers) FindByID(id uint) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func testUser(id uint, role model.UserRole) *model.User {
	u := &model.User{
		Name:  "测试用户",
		Email: "test@example.com",
		Role:  role,
	}
	u.ID = id
	return u
}

func authRouter(users *fakeUsers, roles ...model.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.JWT.Secret = testSecret

	r := gin.New()
	group := r.Group("/", AuthMiddleware(cfg, users))
	if len(roles) > 0 {
		group.Use(RoleMiddleware(roles...))
	}
	group.GET("/probe", func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": claims.UserID, "role": claims.Role})
	})
	return r
}

func doRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	r := authRouter(&fakeUsers{users: map[uint]*model.User{}})
	if w := doRequest(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddlewareBadToken(t *testing.T) {
	r := authRouter(&fakeUsers{users: map[uint]*model.User{}})
	if w := doRequest(r, "not-a-jwt"); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	user := testUser(1, model.Student)
	r := authRouter(&fakeUsers{users: map[uint]*model.User{1: user}})

	token, err := util.GenerateJWT(user, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if w := doRequest(r, token); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddlewareUnknownUser(t *testing.T) {
	// 令牌有效但账号已不存在
	ghost := testUser(42, model.Student)
	r := authRouter(&fakeUsers{users: map[uint]*model.User{}})

	token, _ := util.GenerateJWT(ghost, testSecret, time.Hour)
	if w := doRequest(r, token); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestAuthMiddlewareDisabledUser(t *testing.T) {
	user := testUser(1, model.Student)
	user.Disabled = true
	r := authRouter(&fakeUsers{users: map[uint]*model.User{1: user}})

	token, _ := util.GenerateJWT(user, testSecret, time.Hour)
	if w := doRequest(r, token); w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestRoleMiddleware(t *testing.T) {
	student := testUser(1, model.Student)
	users := &fakeUsers{users: map[uint]*model.User{1: student}}
	token, _ := util.GenerateJWT(student, testSecret, time.Hour)

	r := authRouter(users, model.Teacher)
	if w := doRequest(r, token); w.Code != http.StatusForbidden {
		t.Errorf("student on teacher route: status = %d, want 403", w.Code)
	}

	r = authRouter(users, model.Student, model.Teacher)
	if w := doRequest(r, token); w.Code != http.StatusOK {
		t.Errorf("student on shared route: status = %d, want 200", w.Code)
	}
}

func TestRoleRefreshedFromDirectory(t *testing.T) {
	// 令牌签发时是 student，此后账号改为 teacher：以数据库为准
	stale := testUser(1, model.Student)
	current := testUser(1, model.Teacher)
	users := &fakeUsers{users: map[uint]*model.User{1: current}}

	token, _ := util.GenerateJWT(stale, testSecret, time.Hour)
	r := authRouter(users, model.Teacher)
	if w := doRequest(r, token); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 after role refresh", w.Code)
	}
}
