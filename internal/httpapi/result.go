package httpapi

import (
	"net/http"

	"github.com/SecureSpaceProject/secure-space-backend/internal/errs"
)

// 响应信封：
// - 成功 {"ok":true,"data":...}
// - 失败 {"ok":false,"error":"CODE"}，错误码见 errs 包
type Result[T any] struct {
	OK   bool `json:"ok"`
	Data T    `json:"data"`
}

type ErrorResult struct {
	OK    bool      `json:"ok"`
	Error errs.Code `json:"error"`
}

func Ok[T any](data T) Result[T] {
	return Result[T]{OK: true, Data: data}
}

func Fail(code errs.Code) ErrorResult {
	return ErrorResult{OK: false, Error: code}
}

// writeError 将业务错误映射为 HTTP 状态码与错误信封
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errs.StatusOf(err), Fail(errs.CodeOf(err)))
}
