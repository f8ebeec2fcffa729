//go:build !harness

package middleware

import (
	"eduassess_backend/internal/util"

	"github.com/gin-gonic/gin"
)

func harnessPrincipal(c *gin.Context) *util.Claims {
	return nil
}
