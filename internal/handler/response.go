package handler

import (
	"net/http"

	"github.com/blues/fis/internal/logger"
	"github.com/blues/fis/internal/logic"
	"github.com/gin-gonic/gin"
)

// ErrorResponse 错误响应体
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// respondError 统一错误映射
//
// 业务错误按自带状态码返回，其余一律500且不泄露内部细节。
func respondError(c *gin.Context, err error) {
	if e := logic.AsError(err); e != nil {
		c.JSON(e.Status, ErrorResponse{Message: e.Message})
		return
	}

	logger.Error("Unexpected error handling %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
}

// respondBindError 请求体解析失败
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Message: "请求体格式不正确", Details: err.Error()})
}
