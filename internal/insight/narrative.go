package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"worklens/internal/domain"
	"worklens/internal/llm"
)

const narratorSystemPrompt = `You are a Senior Project Manager and Data Analyst AI. Your role is to analyze project data from multiple tools and provide actionable insights.

Analysis Framework:
1. Understand what the user actually wants to know
2. Analyze data in a consistent, unified manner across all tools
3. Generate insights that are specific to the user's question and project context
4. Provide clear next steps and recommendations

Output executive-level summaries with data-driven insights, specific recommendations with supporting evidence, and clear explanations of data sources. Always be specific about what data was analyzed and from which tools.`

// Narrator renders a prose narrative for an analysis report, via the LLM
// when one is available and through the deterministic summary otherwise.
type Narrator struct {
	client llm.Client
	logger *zap.Logger
}

func NewNarrator(client llm.Client, logger *zap.Logger) *Narrator {
	return &Narrator{client: client, logger: logger}
}

// Narrate writes the user-facing analysis. A report with no data gets a
// troubleshooting message rather than an invented analysis.
func (n *Narrator) Narrate(ctx context.Context, query string, decision domain.Decision, report Report) string {
	if report.TotalItems() == 0 {
		return noDataMessage
	}

	if n.client == nil {
		return report.Summary()
	}

	prompt := fmt.Sprintf(`Based on the intelligent analysis of project data, provide actionable insights and recommendations.

Original User Query: %q

Agent Decision Context:
- Action Type: %s
- Reasoning: %s
- Confidence: %.2f
- Tools Used: %s

Analysis Results:
%s

IMPORTANT: Only analyze the actual data provided above. Do not make up statistics or numbers. If the data shows 0 items or empty results, acknowledge that no data was found.

Please provide:
1. Key findings and insights relevant to the user's question
2. Actionable recommendations based on the data
3. Areas of concern or opportunity
4. Next steps for the project team

Focus on being specific and actionable, using ONLY the actual data retrieved from the tools.`,
		query,
		decision.ActionType,
		decision.Reasoning,
		decision.Confidence,
		strings.Join(decision.ToolsToUse, ", "),
		formatReport(report))

	resp, err := n.client.Complete(ctx, llm.CompletionRequest{
		System:      narratorSystemPrompt,
		Prompt:      prompt,
		Temperature: 0.3,
		MaxTokens:   1000,
	})
	if err != nil {
		n.logger.Warn("narrative generation failed, using summary", zap.Error(err))
		return report.Summary()
	}
	return resp
}

const noDataMessage = `## No Data Retrieved

The query returned 0 items from the configured tools. This could be due to:

1. **Connection Problem**: A tool integration may not be properly connected
2. **Project Key Mismatch**: The system might be looking in the wrong project
3. **Permission Issues**: The API token may not have access to view items
4. **Filter Issues**: The query filters might be too restrictive

Check the tool configuration for this project and try again.`

// formatReport flattens the report into prompt-friendly text.
func formatReport(report Report) string {
	var b strings.Builder

	section := func(label string, v any) {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return
		}
		fmt.Fprintf(&b, "\n%s:\n%s\n", label, data)
	}

	if report.WorkItems != nil {
		section("Work Items", report.WorkItems)
	}
	if report.Sprints != nil {
		section("Sprints", report.Sprints)
	}
	if report.PullRequests != nil {
		section("Pull Requests", report.PullRequests)
	}
	if report.Commits != nil {
		section("Commits", report.Commits)
	}
	if report.Repositories != nil {
		section("Repositories", report.Repositories)
	}
	section("Key Metrics", report.Metrics)

	if len(report.CrossEntityInsights) > 0 {
		b.WriteString("\nCross-Entity Insights:\n")
		for _, insight := range report.CrossEntityInsights {
			fmt.Fprintf(&b, "  - %s\n", insight)
		}
	}
	return b.String()
}
