package httpapi

// Result 统一响应信封
// - code: 2000 成功
// - type: 'success' | 'error'
// - message: string
// - result: any
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1
	// TokenExpired 使用 code=60401 + HTTP 401（前端拦截器会特殊处理）
	ResultTokenExpired = 60401
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: nil}
}

func TokenExpired(message string) Result[any] {
	return Result[any]{Code: ResultTokenExpired, Type: "error", Message: message, Result: nil}
}
