package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusHandler serves liveness and service information
type StatusHandler struct {
	name             string
	version          string
	apiKeyConfigured bool
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(name, version string, apiKeyConfigured bool) *StatusHandler {
	return &StatusHandler{
		name:             name,
		version:          version,
		apiKeyConfigured: apiKeyConfigured,
	}
}

// Health reports liveness and whether the provider credential is configured
// GET /health
func (h *StatusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":             "healthy",
		"api_key_configured": h.apiKeyConfigured,
	})
}

// Root describes the service and its endpoints
// GET /
func (h *StatusHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        h.name,
		"description": "Model Context Protocol (MCP) server for Financial Modeling Prep data",
		"version":     h.version,
		"endpoints": gin.H{
			"mcp":    "/mcp",
			"health": "/health",
			"api":    "/api/v1",
		},
	})
}
