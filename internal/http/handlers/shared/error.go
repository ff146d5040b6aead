package shared

import (
	"errors"

	"github.com/reseller-hub/internal/http/response"
	"github.com/reseller-hub/internal/logger"
	"github.com/reseller-hub/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondErrorWithMsg 返回自定义消息错误响应，并在有原始错误时记录日志。
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	appErr := response.NewAppError(kindForStatus(code), code, msg, err)
	if err != nil {
		logAppError(c, appErr)
	}
	response.Fail(c, appErr)
}

// ClassifyError 按服务层错误种类得到状态码与对外消息
func ClassifyError(err error) *response.AppError {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return response.NewAppError(response.KindNotFound, response.CodeNotFound, err.Error(), err)
	case errors.Is(err, service.ErrInvalidTransition):
		return response.NewAppError(response.KindInvalidTransition, response.CodeConflict, err.Error(), err)
	case errors.Is(err, service.ErrInvalidState):
		return response.NewAppError(response.KindInvalidState, response.CodeConflict, err.Error(), err)
	case errors.Is(err, service.ErrValidation):
		return response.NewAppError(response.KindValidation, response.CodeBadRequest, err.Error(), err)
	case errors.Is(err, service.ErrUnauthorized):
		return response.NewAppError(response.KindUnauthorized, response.CodeUnauthorized, err.Error(), err)
	}
	var storeErr *service.StoreError
	if errors.As(err, &storeErr) {
		return response.NewAppError(response.KindStore, response.CodeInternal, storeErr.Error(), err)
	}
	return response.NewAppError(response.KindInternal, response.CodeInternal, "Internal server error", err)
}

// StatusForError 按错误分类映射 HTTP 状态码
func StatusForError(err error) int {
	return ClassifyError(err).Code
}

// RespondServiceError 返回业务错误；存储类与未分类错误记录日志
func RespondServiceError(c *gin.Context, err error) {
	appErr := ClassifyError(err)
	if appErr.Loggable() {
		logAppError(c, appErr)
	}
	response.Fail(c, appErr)
}

func logAppError(c *gin.Context, appErr *response.AppError) {
	RequestLog(c).Errorw("handler_error",
		"code", appErr.Code,
		"kind", appErr.Kind,
		"message", appErr.Message,
		"error", appErr.Err,
	)
}

func kindForStatus(code int) string {
	switch code {
	case response.CodeNotFound:
		return response.KindNotFound
	case response.CodeConflict:
		return response.KindInvalidState
	case response.CodeBadRequest:
		return response.KindValidation
	case response.CodeUnauthorized:
		return response.KindUnauthorized
	}
	return response.KindInternal
}
