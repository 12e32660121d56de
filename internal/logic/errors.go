package logic

import (
	"errors"
	"net/http"
)

// Error 带HTTP状态码的业务错误，由 handler 统一映射为响应
type Error struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// NewError 创建业务错误
func NewError(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// 常用错误构造

func ErrValidation(message string) *Error {
	return NewError(http.StatusBadRequest, message)
}

func ErrUnauthorized(message string) *Error {
	return NewError(http.StatusUnauthorized, message)
}

func ErrForbidden(message string) *Error {
	return NewError(http.StatusForbidden, message)
}

func ErrNotFound(message string) *Error {
	return NewError(http.StatusNotFound, message)
}

func ErrConflict(message string) *Error {
	return NewError(http.StatusConflict, message)
}

// AsError 提取业务错误，非业务错误返回 nil
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
