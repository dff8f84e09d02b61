package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"projectpulse/internal/apperr"
	"projectpulse/pkg/metrics"
)

func validationErr(msg string) error {
	return apperr.Validation(msg)
}

// respondError 把错误分类映射到 HTTP 状态码。
// 鉴权失败直接拒绝，不暴露 owner-only 操作的细节。
func respondError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindUnauthorized:
		metrics.UnauthorizedMutationCount.Inc()
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case apperr.KindValidation:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case apperr.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case apperr.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": "record was modified concurrently, refetch and retry"})
	case apperr.KindTransient:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
