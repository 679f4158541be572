package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Code 稳定的符号化错误码，调用方据此做本地化展示，不依赖错误文本
type Code string

const (
	CodeAuthRequired       Code = "AUTH_REQUIRED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeUserBlocked        Code = "USER_BLOCKED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeNotFound           Code = "NOT_FOUND"
	CodeRoomNotFound       Code = "ROOM_NOT_FOUND"
	CodeSensorNotFound     Code = "SENSOR_NOT_FOUND"
	CodeMemberNotFound     Code = "MEMBER_NOT_FOUND"
	CodeUserNotFound       Code = "USER_NOT_FOUND"
	CodeAlertNotFound      Code = "ALERT_NOT_FOUND"
	CodeInvalidState       Code = "INVALID_STATE"
	CodeValidationFailed   Code = "VALIDATION_FAILED"
	CodeConflict           Code = "CONFLICT"
	CodeInternal           Code = "INTERNAL"
)

// statusHints 错误码到 HTTP 状态码的映射
var statusHints = map[Code]int{
	CodeAuthRequired:       http.StatusUnauthorized,
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeUserBlocked:        http.StatusForbidden,
	CodeForbidden:          http.StatusForbidden,
	CodeNotFound:           http.StatusNotFound,
	CodeRoomNotFound:       http.StatusNotFound,
	CodeSensorNotFound:     http.StatusNotFound,
	CodeMemberNotFound:     http.StatusNotFound,
	CodeUserNotFound:       http.StatusNotFound,
	CodeAlertNotFound:      http.StatusNotFound,
	CodeInvalidState:       http.StatusBadRequest,
	CodeValidationFailed:   http.StatusBadRequest,
	CodeConflict:           http.StatusConflict,
	CodeInternal:           http.StatusInternalServerError,
}

// Error 业务错误，携带符号码与可选的底层错误
// 底层错误仅用于日志，不会出现在对外响应中
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status 返回错误码对应的 HTTP 状态码
func (e *Error) Status() int {
	if s, ok := statusHints[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// New 创建业务错误
func New(code Code) *Error {
	return &Error{Code: code}
}

// Wrap 创建携带底层错误的业务错误
func Wrap(code Code, err error) *Error {
	return &Error{Code: code, Err: err}
}

// CodeOf 提取错误的符号码；非业务错误一律归为 INTERNAL
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// StatusOf 提取错误对应的 HTTP 状态码
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status()
	}
	return http.StatusInternalServerError
}

// Is 判断错误是否携带指定符号码
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
