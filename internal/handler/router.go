package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/datachat/internal/middleware"
)

type RouterDeps struct {
	Datasets *DatasetHandler
	// JWTSecret enables bearer auth on all dataset routes when non-empty.
	JWTSecret []byte
	// ChatRateWindow throttles chat per (ip, subject, path); zero disables.
	ChatRateWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	group := api.Group("")
	if len(deps.JWTSecret) > 0 {
		group.Use(middleware.JWTAuth(deps.JWTSecret))
	}

	group.GET("/datasets", deps.Datasets.List)
	group.GET("/document-types", deps.Datasets.Types)
	group.POST("/datasets/:name/upload", deps.Datasets.Upload)
	group.DELETE("/datasets/:name", deps.Datasets.Delete)

	chatGroup := group.Group("")
	if deps.ChatRateWindow > 0 {
		chatGroup.Use(middleware.RateLimit(deps.ChatRateWindow))
	}
	chatGroup.POST("/datasets/:name/chat", deps.Datasets.Chat)
}
