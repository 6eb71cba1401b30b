package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/datachat/internal/ai"
	"github.com/xxxsen/datachat/internal/pkg/errcode"
	appErr "github.com/xxxsen/datachat/internal/pkg/errors"
	"github.com/xxxsen/datachat/internal/pkg/response"
)

// handleError maps the error taxonomy onto response codes. User-input
// errors are logged as informational events only; infrastructure faults are
// logged as errors with their cause.
func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	ctx := c.Request.Context()
	logger := logutil.GetLogger(ctx).With(
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
	)
	switch {
	case errors.Is(err, appErr.ErrDatasetNotFound):
		logger.Info("dataset not found", zap.String("reason", err.Error()))
		response.NotFound(c, "dataset not found")
	case errors.Is(err, appErr.ErrUnknownDocumentType):
		logger.Info("unknown document type", zap.String("reason", err.Error()))
		response.Error(c, errcode.ErrUnknownDocumentType, err.Error())
	case appErr.IsDocumentConstructionError(err):
		logger.Info("malformed document item", zap.String("reason", err.Error()))
		response.Error(c, errcode.ErrDocumentConstruction, err.Error())
	case errors.Is(err, appErr.ErrInvalid):
		logger.Info("invalid request", zap.String("reason", err.Error()))
		response.Invalid(c, err.Error())
	case errors.Is(err, ai.ErrUnavailable):
		logger.Error("ai provider unavailable", zap.Error(err))
		response.Error(c, errcode.ErrAIUnavailable, "ai not configured")
	case appErr.IsVectorStoreError(err):
		logger.Error("vector store fault", zap.Error(err))
		response.Error(c, errcode.ErrVectorStore, "vector store error")
	case appErr.IsRegistryError(err):
		logger.Error("dataset registry fault", zap.Error(err))
		response.Error(c, errcode.ErrRegistry, "dataset registry error")
	default:
		logger.Error("internal error", zap.Error(err))
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
