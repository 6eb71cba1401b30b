package response

import (
	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/webapi/proxyutil"

	"github.com/xxxsen/datachat/internal/pkg/errcode"
)

// codeErr carries a datachat errcode through proxyutil's envelope.
type codeErr struct {
	code uint32
	msg  string
}

func (e codeErr) Error() string {
	return e.msg
}

func (e codeErr) Code() uint32 {
	return e.code
}

func Success(c *gin.Context, data interface{}) {
	proxyutil.SuccessJson(c, data)
}

func Error(c *gin.Context, code int, message string) {
	proxyutil.FailJson(c, 200, codeErr{code: uint32(code), msg: message})
}

// Shorthands for the error classes the middleware and handlers hand out most.

func NotFound(c *gin.Context, message string) {
	Error(c, errcode.ErrNotFound, message)
}

func Invalid(c *gin.Context, message string) {
	Error(c, errcode.ErrInvalid, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, errcode.ErrUnauthorized, message)
}

func TooMany(c *gin.Context, message string) {
	Error(c, errcode.ErrTooMany, message)
}
