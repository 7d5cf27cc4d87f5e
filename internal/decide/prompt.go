package decide

import (
	"fmt"
	"sort"
	"strings"

	"worklens/internal/domain"
)

func systemPrompt(caps map[string]domain.Capability, availableTools []string, project domain.ProjectContext) string {
	return fmt.Sprintf(`You are an intelligent project management assistant that analyzes user queries and determines the best course of action.

Your goal is to understand what the user wants and decide:
1. What type of action needs to be performed
2. What entities/data need to be retrieved
3. Which tools should be used to get that data
4. What filters should be applied
5. How to present the information

Available Tools and Their Capabilities:
%s

Project Context:
- Project: %s
- Key: %s
- Tools Configured: %d

Decision-Making Principles:
1. **Efficiency**: Use the minimum number of tools needed to answer the query
2. **Relevance**: Only fetch data that's directly relevant to the user's question
3. **Completeness**: Ensure all necessary information is retrieved to provide a complete answer
4. **Performance**: Consider tool rate limits and response times
5. **User Intent**: Focus on what the user actually wants to know, not just what they said

Action Types:
- **analyze**: Generate insights, reports, status updates, health checks
- **create**: Create new work items, sprints, projects
- **update**: Modify existing items, change status, assign users
- **delete**: Remove items, cancel sprints
- **search**: Find specific items, users, or information
- **report**: Generate detailed reports and dashboards

Entity Types:
- **work_item**: Tasks, issues, stories, bugs, epics
- **sprint**: Sprints, iterations, cycles
- **user**: Team members, assignees, developers
- **repository**: Code repositories, projects
- **pull_request**: Pull requests, merge requests
- **commit**: Code commits, changes

Always provide clear reasoning for your decisions and consider the user's likely follow-up questions.`,
		formatCapabilities(caps, availableTools),
		project.Name, project.Key, len(project.Tools))
}

func formatCapabilities(caps map[string]domain.Capability, availableTools []string) string {
	var b strings.Builder
	for _, name := range availableTools {
		c, ok := caps[name]
		if !ok {
			continue
		}
		entities := make([]string, 0, len(c.SupportedEntities))
		for _, e := range c.SupportedEntities {
			entities = append(entities, string(e))
		}
		ops := make([]string, 0, len(c.SupportedOps))
		for _, o := range c.SupportedOps {
			ops = append(ops, string(o))
		}
		fmt.Fprintf(&b, "\n- **%s**: Entities: %s, Operations: %s",
			strings.ToUpper(name), strings.Join(entities, ", "), strings.Join(ops, ", "))
	}
	return b.String()
}

func userPrompt(query string, analysis domain.QueryAnalysis, availableTools []string) string {
	actions := make([]string, 0, len(analysis.ActionsImplied))
	for _, a := range analysis.ActionsImplied {
		actions = append(actions, string(a))
	}
	return fmt.Sprintf(`
Analyze this user query and make intelligent decisions about what actions to take and which tools to use.

User Query: %q

Query Analysis:
- Primary Intent: %s
- Entities Mentioned: %s
- Actions Implied: %s
- Temporal References: %s
- Specific Filters: %s
- Context Clues: %s

Available Tools: %s

IMPORTANT FILTER RULES:
- "backlog" is NOT a work item status - it refers to all project work items
- Valid statuses are: "To Do", "In Progress", "Done", "Blocked", etc.
- When user asks for "backlog items", they want ALL work items, not items with status "backlog"
- Only use status filters for actual statuses like "To Do", "In Progress", "Done"

Based on this analysis, provide a JSON response with your decisions:

{
  "action_type": "analyze|create|update|delete|search|report",
  "entities_needed": ["work_item", "sprint", "user", "repository", "pull_request", "commit"],
  "tools_to_use": ["jira", "github", "azure_devops"],
  "filters": {"priority": "...", "assignee": "...", "date_range": "..."},
  "reasoning": "Explanation of why these decisions were made",
  "confidence": 0.8,
  "additional_context": {"limit": 50, "sort_by": "created_date", "sort_order": "desc"}
}

Consider:
1. What information does the user actually need?
2. Which tools contain that information?
3. What filters would be most relevant? (Remember: NO status="backlog")
4. What's the most efficient way to get the answer?
`,
		query,
		analysis.Intent,
		strings.Join(analysis.EntitiesMentioned, ", "),
		strings.Join(actions, ", "),
		strings.Join(analysis.TemporalReferences, ", "),
		formatFilters(analysis.SpecificFilters),
		strings.Join(analysis.ContextClues, ", "),
		strings.Join(availableTools, ", "))
}

func formatFilters(filters map[string]string) string {
	if len(filters) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, filters[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
