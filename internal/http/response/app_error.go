package response

// 错误分类，与服务层的错误种类一一对应，用于日志与响应码映射
const (
	KindNotFound          = "not_found"
	KindInvalidState      = "invalid_state"
	KindInvalidTransition = "invalid_transition"
	KindValidation        = "validation"
	KindUnauthorized      = "unauthorized"
	KindStore             = "store"
	KindInternal          = "internal"
)

// AppError 已分类的处理器错误：HTTP 状态码、错误种类与面向用户的英文消息
type AppError struct {
	Code    int
	Kind    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil || e.Err.Error() == e.Message {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Loggable 存储类与未分类错误需要记录日志，业务类错误直接返回给调用方
func (e *AppError) Loggable() bool {
	return e.Kind == KindStore || e.Kind == KindInternal
}

// NewAppError 创建已分类错误
func NewAppError(kind string, code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}
