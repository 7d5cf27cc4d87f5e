package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"worklens/internal/agent"
	"worklens/internal/domain"
)

// CapabilitiesTool handles the project_capabilities MCP tool: a static
// description of the tools configured for the project and what each can do.
type CapabilitiesTool struct {
	coordinator *agent.Coordinator
}

func NewCapabilitiesTool(coordinator *agent.Coordinator) *CapabilitiesTool {
	return &CapabilitiesTool{coordinator: coordinator}
}

// Definition returns the MCP tool definition for project_capabilities.
func (t *CapabilitiesTool) Definition() mcp.Tool {
	return mcp.NewTool("project_capabilities",
		mcp.WithDescription(
			"List the project's configured tools with the entity types and operations each one supports.",
		),
	)
}

// Handle processes one project_capabilities call.
func (t *CapabilitiesTool) Handle(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project := t.coordinator.Project()
	caps := domain.DefaultCapabilities()

	var b strings.Builder
	fmt.Fprintf(&b, "Project %s (%s)\n\n", project.Name, project.Key)

	for _, name := range project.Tools {
		c, ok := caps[name]
		if !ok {
			fmt.Fprintf(&b, "%s: unknown tool, no capability descriptor\n\n", name)
			continue
		}
		entities := make([]string, 0, len(c.SupportedEntities))
		for _, e := range c.SupportedEntities {
			entities = append(entities, string(e))
		}
		ops := make([]string, 0, len(c.SupportedOps))
		for _, op := range c.SupportedOps {
			ops = append(ops, string(op))
		}
		fmt.Fprintf(&b, "%s:\n  entities: %s\n  operations: %s\n  real-time: %t\n  rate limit: %d/min\n\n",
			name, strings.Join(entities, ", "), strings.Join(ops, ", "), c.RealTimeData, c.RateLimitPerMin)
	}

	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}
