//go:build harness

package middleware

import (
	"eduassess_backend/internal/model"
	"eduassess_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// 测试装具身份解析。只在 harness 构建中编译，
// 生产二进制里不存在这条路径，误配置也不会把旁路带上线。
const (
	HarnessAuthHeader = "X-Harness-Auth"
	HarnessRoleHeader = "X-Harness-Role"
)

func harnessPrincipal(c *gin.Context) *util.Claims {
	if c.GetHeader(HarnessAuthHeader) != "1" {
		return nil
	}

	role := model.Teacher
	if r := model.UserRole(c.GetHeader(HarnessRoleHeader)); model.ValidRole(r) {
		role = r
	}

	return &util.Claims{
		UserID: 1,
		Role:   role,
		Email:  "harness@example.com",
		Name:   "Harness User",
	}
}
