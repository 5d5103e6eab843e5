package response

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Err struct {
	Err            error  `json:"-"`
	HTTPStatusCode int    `json:"-"`
	StatusText     string `json:"status"`
	ErrorMsg       string `json:"error,omitempty"`
}

func (e *Err) Error() string {
	return e.ErrorMsg
}

// RenderErr writes e as the response body. Server side failures are logged
// with the request id so they can be traced from the client's report.
func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError && e.Err != nil {
		fields := []zap.Field{
			zap.String("request_id", requestid.Get(ctx)),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Error(e.Err),
		}
		if e.HTTPStatusCode == http.StatusInternalServerError {
			zap.L().Error("request failed", fields...)
		} else {
			zap.L().Warn("request failed", fields...)
		}
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func newErr(status int, err error) *Err {
	e := &Err{
		Err:            err,
		HTTPStatusCode: status,
		StatusText:     http.StatusText(status),
	}
	if err != nil {
		e.ErrorMsg = err.Error()
	}
	return e
}

func ErrBadRequest(err error) *Err {
	return newErr(http.StatusBadRequest, err)
}

func ErrUnauthorized(err error) *Err {
	return newErr(http.StatusUnauthorized, err)
}

func ErrPermissionDenied(err error) *Err {
	return newErr(http.StatusForbidden, err)
}

func ErrNotFound(entity, field string, value interface{}) *Err {
	return newErr(http.StatusNotFound, fmt.Errorf("%s with %s=%v not found", entity, field, value))
}

func ErrConflict(err error) *Err {
	return newErr(http.StatusConflict, err)
}

// ErrServiceUnavailable tells the client the request may succeed on retry.
func ErrServiceUnavailable(err error) *Err {
	return newErr(http.StatusServiceUnavailable, err)
}

// ErrInternalServerError hides err from the client and logs it instead.
func ErrInternalServerError(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     http.StatusText(http.StatusInternalServerError),
		ErrorMsg:       "something went wrong",
	}
}
