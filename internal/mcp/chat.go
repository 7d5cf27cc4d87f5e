package mcp

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mark3labs/mcp-go/mcp"

	"worklens/internal/agent"
	"worklens/internal/domain"
)

// historyWindow bounds how many completed turns the chat tool feeds back
// into intent analysis.
const historyWindow = 10

// ChatTool handles the project_chat MCP tool: one natural-language request
// against the configured project, with conversation history kept per server
// process.
type ChatTool struct {
	coordinator *agent.Coordinator
	logger      *zap.Logger

	mu      sync.Mutex
	history []domain.Turn

	afterTurn func()
}

// Option configures a ChatTool.
type Option func(*ChatTool)

// WithAfterTurn registers a callback invoked after each successful chat turn.
// The CLI uses it to flush tracker state to disk.
func WithAfterTurn(fn func()) Option {
	return func(t *ChatTool) { t.afterTurn = fn }
}

func NewChatTool(coordinator *agent.Coordinator, logger *zap.Logger) *ChatTool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatTool{coordinator: coordinator, logger: logger}
}

// Definition returns the MCP tool definition for project_chat.
func (t *ChatTool) Definition() mcp.Tool {
	return mcp.NewTool("project_chat",
		mcp.WithDescription(
			"Ask a natural-language question about the project or request a change. "+
				"Read requests (\"show the backlog\", \"how is the sprint going\") return metrics and insights; "+
				"write requests (\"assign AG-12 to Dana\", \"update AG-3 status to Done\") apply the change in the configured tracker.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The request, in plain language"),
		),
	)
}

// Handle processes one project_chat call.
func (t *ChatTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}

	t.mu.Lock()
	history := make([]domain.Turn, len(t.history))
	copy(history, t.history)
	t.mu.Unlock()

	resp := t.coordinator.RouteAndExecute(ctx, query, history)

	t.logger.Debug("chat tool call",
		zap.String("handler", string(resp.Handler)),
		zap.Bool("success", resp.Success))

	if !resp.Success {
		return mcp.NewToolResultError(resp.Content), nil
	}

	t.mu.Lock()
	t.history = append(t.history, domain.Turn{Query: query, Response: resp.Content})
	if len(t.history) > historyWindow {
		t.history = t.history[len(t.history)-historyWindow:]
	}
	t.mu.Unlock()

	if t.afterTurn != nil {
		t.afterTurn()
	}

	var b strings.Builder
	b.WriteString(resp.Content)
	fmt.Fprintf(&b, "\n\n---\nHandled by: %s (confidence %.1f)", resp.Handler, resp.Routing.Confidence)
	if resp.Data != nil && len(resp.Data.Errors) > 0 {
		fmt.Fprintf(&b, "\nPartial results, %d source(s) failed:\n- %s",
			len(resp.Data.Errors), strings.Join(resp.Data.Errors, "\n- "))
	}

	return mcp.NewToolResultText(b.String()), nil
}
