package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/yourorg/fmp-tool-server/internal/kafka"
	"github.com/yourorg/fmp-tool-server/internal/middleware"
)

const auditPublishTimeout = 5 * time.Second

// Publisher sends tool invocation events, satisfied by *kafka.Producer
type Publisher interface {
	PublishToolInvocation(ctx context.Context, event kafka.ToolInvocation) error
}

// Audit returns a tool middleware that publishes a ToolInvocation after every call.
// Publishing failures are logged and never affect the tool result.
func Audit(publisher Publisher, logger *zap.Logger) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := time.Now()
			result, err := next(ctx, request)

			event := kafka.ToolInvocation{
				Tool:       request.Params.Name,
				Arguments:  request.GetArguments(),
				IsError:    err != nil || (result != nil && result.IsError),
				DurationMS: time.Since(start).Milliseconds(),
				RequestID:  middleware.RequestIDFromContext(ctx),
				Subject:    middleware.SubjectFromContext(ctx),
				Timestamp:  start.UTC(),
			}

			pubCtx, cancel := context.WithTimeout(context.Background(), auditPublishTimeout)
			defer cancel()

			if perr := publisher.PublishToolInvocation(pubCtx, event); perr != nil {
				logger.Error("Failed to publish audit event",
					zap.Error(perr),
					zap.String("tool", event.Tool))
			}

			return result, err
		}
	}
}
