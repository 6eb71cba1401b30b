package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/datachat/internal/document"
	"github.com/xxxsen/datachat/internal/model"
	"github.com/xxxsen/datachat/internal/pkg/response"
)

// DataChatService is what the HTTP layer needs from the orchestrator.
type DataChatService interface {
	Register(ctx context.Context, name string, docs []document.Document, systemPrompt string) error
	Answer(ctx context.Context, name string, query string, topK int) (string, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) (map[string]*model.Dataset, error)
}

type DatasetHandler struct {
	svc      DataChatService
	registry *document.Registry
}

func NewDatasetHandler(svc DataChatService, registry *document.Registry) *DatasetHandler {
	return &DatasetHandler{svc: svc, registry: registry}
}

type uploadRequest struct {
	Data         []map[string]interface{} `json:"data"`
	DocumentType string                   `json:"document_type"`
	SystemPrompt string                   `json:"system_prompt"`
}

type chatRequest struct {
	Message string `json:"message"`
	TopK    int    `json:"top_k"`
}

func (h *DatasetHandler) Upload(c *gin.Context) {
	name := c.Param("name")
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, "invalid request")
		return
	}
	if req.DocumentType == "" {
		response.Invalid(c, "document_type required")
		return
	}
	docs, err := document.Build(h.registry, req.DocumentType, req.Data)
	if err != nil {
		handleError(c, err)
		return
	}
	if err := h.svc.Register(c.Request.Context(), name, docs, req.SystemPrompt); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "dataset '" + name + "' uploaded and processed successfully"})
}

func (h *DatasetHandler) Chat(c *gin.Context) {
	name := c.Param("name")
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		response.Invalid(c, "message required")
		return
	}
	answer, err := h.svc.Answer(c.Request.Context(), name, req.Message, req.TopK)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"response": answer})
}

func (h *DatasetHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	if err := h.svc.Delete(c.Request.Context(), name); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "dataset '" + name + "' deleted"})
}

func (h *DatasetHandler) List(c *gin.Context) {
	datasets, err := h.svc.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"datasets": datasets})
}

// Types lists the registered document type tags, so callers can discover
// what document_type values upload accepts.
func (h *DatasetHandler) Types(c *gin.Context) {
	response.Success(c, gin.H{"types": h.registry.Types()})
}
