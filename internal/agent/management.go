package agent

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"worklens/internal/decide"
	"worklens/internal/domain"
	"worklens/internal/mutate"
	"worklens/internal/provider"
)

// ManagementHandler owns write requests. The decision engine classifies the
// operation; regex extraction pulls identifiers and values out of the text;
// the tracker adapter applies the mutation.
type ManagementHandler struct {
	engine    *decide.Engine
	providers map[string]provider.Provider
	logger    *zap.Logger
}

func NewManagementHandler(engine *decide.Engine, providers []provider.Provider, logger *zap.Logger) *ManagementHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	byName := make(map[string]provider.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &ManagementHandler{engine: engine, providers: byName, logger: logger}
}

func (h *ManagementHandler) Handle(ctx context.Context, query string, project domain.ProjectContext, history []domain.Turn) Result {
	decision, err := h.engine.Decide(ctx, query, project, history)
	if err != nil {
		return userErrorResult(err)
	}

	h.logger.Debug("management decision",
		zap.String("action", string(decision.ActionType)),
		zap.Strings("tools", decision.ToolsToUse),
		zap.Float64("confidence", decision.Confidence))

	var res Result
	switch decision.ActionType {
	case domain.ActionCreate:
		switch {
		case hasEntity(decision.EntitiesNeeded, domain.EntityWorkItem):
			res = h.createWorkItem(ctx, query, decision)
		case hasEntity(decision.EntitiesNeeded, domain.EntitySprint):
			res = h.planSprints(ctx, query)
		default:
			res = h.generalGuidance(decision, project)
		}
	case domain.ActionUpdate, domain.ActionMove:
		// "move AG-1 to Done" and "assign AG-1 to Dana" share surface
		// structure; status vocabulary wins.
		if mutate.IsAssignmentRequest(query) {
			res = h.assignWork(ctx, query)
		} else {
			res = h.updateWorkItem(ctx, query)
		}
	case domain.ActionDelete:
		if strings.Contains(strings.ToLower(decision.Reasoning), "duplicate") {
			res = h.removeDuplicates(ctx)
		} else {
			res = h.deleteWorkItem(ctx, query)
		}
	case domain.ActionAssign:
		res = h.assignWork(ctx, query)
	case domain.ActionPlan:
		res = h.planSprints(ctx, query)
	default:
		res = h.generalGuidance(decision, project)
	}

	res.Decision = decision
	return res
}

// tracker picks the adapter that will carry a mutation: the first tool, in
// name order, whose capability covers the operation.
func (h *ManagementHandler) tracker(op domain.Operation) (provider.Provider, bool) {
	names := make([]string, 0, len(h.providers))
	for name := range h.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if h.providers[name].Capability().SupportsOp(op) {
			return h.providers[name], true
		}
	}
	return nil, false
}

func noTrackerResult(op domain.Operation) Result {
	return Result{
		Success: false,
		Content: fmt.Sprintf("None of the configured tools support the %s operation. Please configure a work tracker first.", op),
	}
}

var quotedTitle = regexp.MustCompile(`["']([^"']+)["']`)
var createLead = regexp.MustCompile(`(?i)^\s*(?:please\s+)?(?:create|add|new)\s+(?:a\s+|an\s+|new\s+)?(?:task|story|bug|epic|feature|issue|ticket|work\s*item|item)?\s*(?:for|to|called|titled|named|:)?\s*`)

func (h *ManagementHandler) createWorkItem(ctx context.Context, query string, decision domain.Decision) Result {
	p, ok := h.tracker(domain.OpCreate)
	if !ok {
		return noTrackerResult(domain.OpCreate)
	}

	title := ""
	if m := quotedTitle.FindStringSubmatch(query); m != nil {
		title = strings.TrimSpace(m[1])
	} else {
		title = strings.TrimSpace(createLead.ReplaceAllString(query, ""))
	}
	if title == "" {
		return Result{
			Success: false,
			Content: "No work item title found. Please describe what to create (e.g., 'create a task for user authentication').",
		}
	}

	item := &domain.WorkItem{
		Title:    title,
		Type:     itemTypeFrom(query),
		Priority: domain.Priority(strings.ToLower(decision.Filters["priority"])),
	}

	created, err := p.CreateWorkItem(ctx, item)
	if err != nil {
		return Result{
			Success: false,
			Content: fmt.Sprintf("❌ Failed to create work item: %v", err),
		}
	}

	return Result{
		Success: true,
		Content: fmt.Sprintf("✅ Work item %s has been successfully created.\n\nTitle: %s\nType: %s\nPriority: %s",
			created.ID, created.Title, created.Type, created.Priority),
	}
}

func itemTypeFrom(query string) domain.WorkItemType {
	lower := strings.ToLower(query)
	for _, t := range []domain.WorkItemType{domain.TypeBug, domain.TypeStory, domain.TypeEpic, domain.TypeFeature} {
		if strings.Contains(lower, string(t)) {
			return t
		}
	}
	return domain.TypeTask
}

func (h *ManagementHandler) planSprints(ctx context.Context, query string) Result {
	p, ok := h.tracker(domain.OpCreate)
	if !ok {
		return noTrackerResult(domain.OpCreate)
	}

	start, end, ok := mutate.ExtractDateRange(query)
	if !ok {
		return Result{
			Success: false,
			Content: "No sprint date range found. Please include a start and end date (e.g., 'plan sprints from 2025-07-07 to 2025-08-04').",
		}
	}
	if !start.Before(end) {
		return Result{
			Success: false,
			Content: fmt.Sprintf("The start date %s is not before the end date %s. Please check the dates and try again.",
				start.Format("2006-01-02"), end.Format("2006-01-02")),
		}
	}

	planned := mutate.PlanSprints(start, end)

	var lines []string
	created := 0
	for i := range planned {
		s := planned[i]
		out, err := p.CreateSprint(ctx, &s)
		if err != nil {
			lines = append(lines, fmt.Sprintf("❌ **%s**: %v", s.Name, err))
			continue
		}
		created++
		lines = append(lines, fmt.Sprintf("✅ **%s**: %s - %s",
			out.Name, out.StartDate.Format("2006-01-02"), out.EndDate.Format("2006-01-02")))
	}

	var status string
	switch {
	case created == len(planned):
		status = fmt.Sprintf("Successfully planned and created %d sprints for your project.", created)
	case created > 0:
		status = fmt.Sprintf("Successfully planned %d sprints and created %d of them.", len(planned), created)
	default:
		status = fmt.Sprintf("Planned %d sprints, but encountered issues creating them.", len(planned))
	}

	content := fmt.Sprintf(`%s

## Created Sprints:
%s

## Timeline Summary:
- Start Date: %s
- End Date: %s
- Sprint Duration: 2 weeks
- Total Sprints: %d`,
		status, strings.Join(lines, "\n"),
		start.Format("2006-01-02"), end.Format("2006-01-02"), len(planned))

	return Result{Success: created > 0, Content: content}
}

func (h *ManagementHandler) updateWorkItem(ctx context.Context, query string) Result {
	id, err := mutate.ExtractWorkItemID(query)
	if err != nil {
		return userErrorResult(err)
	}
	updates, err := mutate.ExtractUpdates(query, id)
	if err != nil {
		return userErrorResult(err)
	}

	p, ok := h.tracker(domain.OpUpdate)
	if !ok {
		return noTrackerResult(domain.OpUpdate)
	}

	if _, err := p.UpdateWorkItem(ctx, id, updates); err != nil {
		return mutationFailure("update", id, err)
	}

	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	changes := make([]string, 0, len(keys))
	for _, k := range keys {
		changes = append(changes, fmt.Sprintf("%s: %v", k, updates[k]))
	}

	return Result{
		Success: true,
		Content: fmt.Sprintf("✅ Work item %s has been successfully updated.\n\nChanges made: %s",
			id, strings.Join(changes, ", ")),
	}
}

func (h *ManagementHandler) deleteWorkItem(ctx context.Context, query string) Result {
	id, err := mutate.ExtractWorkItemID(query)
	if err != nil {
		return userErrorResult(err)
	}

	p, ok := h.tracker(domain.OpDelete)
	if !ok {
		return noTrackerResult(domain.OpDelete)
	}

	if err := p.DeleteWorkItem(ctx, id); err != nil {
		return mutationFailure("delete", id, err)
	}

	return Result{
		Success: true,
		Content: fmt.Sprintf("✅ Work item %s has been successfully deleted.", id),
	}
}

func (h *ManagementHandler) assignWork(ctx context.Context, query string) Result {
	id, err := mutate.ExtractWorkItemID(query)
	if err != nil {
		return userErrorResult(err)
	}

	// Sprint assignment is checked before person assignment so that
	// "assign AG-1 to sprint 2" never reads "sprint 2" as a name.
	if ref, ok := mutate.ExtractSprintRef(query); ok {
		return h.assignToSprint(ctx, id, ref)
	}

	assignee, err := mutate.ExtractAssignee(query)
	if err != nil {
		return userErrorResult(err)
	}

	p, ok := h.tracker(domain.OpUpdate)
	if !ok {
		return noTrackerResult(domain.OpUpdate)
	}

	if _, err := p.UpdateWorkItem(ctx, id, map[string]any{"assignee": assignee}); err != nil {
		return mutationFailure("assign", id, err)
	}

	return Result{
		Success: true,
		Content: fmt.Sprintf("✅ Work item %s has been successfully assigned to %s.", id, assignee),
	}
}

func (h *ManagementHandler) assignToSprint(ctx context.Context, id, ref string) Result {
	p, ok := h.tracker(domain.OpUpdate)
	if !ok {
		return noTrackerResult(domain.OpUpdate)
	}

	entities, err := p.Fetch(ctx, domain.EntitySprint, nil, 0)
	if err != nil {
		return Result{
			Success: false,
			Content: fmt.Sprintf("❌ Failed to look up sprints: %v", err),
		}
	}
	sprints := make([]domain.Sprint, 0, len(entities))
	for _, e := range entities {
		if s, ok := e.(domain.Sprint); ok {
			sprints = append(sprints, s)
		}
	}

	target, ok := matchSprint(sprints, ref)
	if !ok {
		names := make([]string, 0, len(sprints))
		for _, s := range sprints {
			names = append(names, s.Name)
		}
		return Result{
			Success: false,
			Content: fmt.Sprintf("❌ Sprint '%s' not found. Available sprints: %s", ref, strings.Join(names, ", ")),
		}
	}

	if _, err := p.UpdateWorkItem(ctx, id, map[string]any{"sprint_id": target.ID}); err != nil {
		return mutationFailure("assign", id, err)
	}

	return Result{
		Success: true,
		Content: fmt.Sprintf("✅ Work item %s has been successfully assigned to sprint '%s'.", id, target.Name),
	}
}

// matchSprint resolves a sprint reference: exact id, name (case-insensitive),
// or a bare number meaning "Sprint N".
func matchSprint(sprints []domain.Sprint, ref string) (domain.Sprint, bool) {
	if _, err := strconv.Atoi(ref); err == nil {
		ref = "Sprint " + ref
	}
	for _, s := range sprints {
		if s.ID == ref || strings.EqualFold(s.Name, ref) {
			return s, true
		}
	}
	return domain.Sprint{}, false
}

func (h *ManagementHandler) removeDuplicates(ctx context.Context) Result {
	p, ok := h.tracker(domain.OpUpdate)
	if !ok {
		return noTrackerResult(domain.OpUpdate)
	}

	entities, err := p.Fetch(ctx, domain.EntityWorkItem, nil, 0)
	if err != nil {
		return Result{
			Success: false,
			Content: fmt.Sprintf("❌ Failed to retrieve work items: %v", err),
		}
	}
	items := make([]domain.WorkItem, 0, len(entities))
	for _, e := range entities {
		if wi, ok := e.(domain.WorkItem); ok {
			items = append(items, wi)
		}
	}

	if len(items) == 0 {
		return Result{
			Success: false,
			Content: "No work items found in the project or failed to retrieve them.",
		}
	}

	groups := mutate.FindDuplicates(items)
	if len(groups) == 0 {
		return Result{
			Success: true,
			Content: "No duplicate work items found in your backlog. Your backlog is already clean!",
		}
	}

	resolved := 0
	var lines []string
	for i, group := range groups {
		lines = append(lines, fmt.Sprintf("**Group %d**: %q", i+1, group.Kept.Title))
		lines = append(lines, fmt.Sprintf("  ✅ **Kept**: %s (oldest)", group.Kept.ID))
		for _, dup := range group.Duplicates {
			if _, err := p.UpdateWorkItem(ctx, dup.ID, mutate.DuplicateResolution()); err != nil {
				lines = append(lines, fmt.Sprintf("  ❌ Failed: %s (%v)", dup.ID, err))
				continue
			}
			resolved++
			lines = append(lines, fmt.Sprintf("  ✅ Resolved: %s", dup.ID))
		}
	}

	content := fmt.Sprintf(`Successfully cleaned up your backlog by resolving %d duplicate work items.

## Duplicates Resolved:
%s

## Cleanup Summary:
- Total items analyzed: %d
- Duplicate groups found: %d
- Items resolved as duplicates: %d

Your backlog is now cleaner and easier to manage!`,
		resolved, strings.Join(lines, "\n"), len(items), len(groups), resolved)

	return Result{Success: true, Content: content}
}

func (h *ManagementHandler) generalGuidance(decision domain.Decision, project domain.ProjectContext) Result {
	tools := strings.Join(project.Tools, ", ")

	var content string
	if decision.Confidence > 0.7 {
		content = fmt.Sprintf(`I understand you want to perform a management operation, but I need more specific information to help you effectively.

## Analysis:
**Request Understanding**: %s
**Confidence**: %.2f

## Available Operations:
Based on your project's configured tools (%s), I can help you with:

- **Create Work Items**: "Create a new task for user authentication"
- **Create Sprints**: "Plan sprints from 2025-07-07 to 2025-08-04"
- **Update Work Items**: "Update AG-123 status to In Progress"
- **Assign Work**: "Assign AG-123 to John Doe"
- **Move Items**: "Move AG-123 to Done"
- **Remove Duplicates**: "Clean up duplicate items in the backlog"

## Next Steps:
Please be more specific about what you'd like me to do.`, decision.Reasoning, decision.Confidence, tools)
	} else {
		content = fmt.Sprintf(`I want to help you with your project management request, but I need some clarification to ensure I provide the right assistance.

## What I understood:
%s

## What I can help with:
- Creating and managing work items (tasks, stories, bugs)
- Sprint planning and management
- Assigning work to team members
- Updating work item statuses
- Organizing and cleaning up backlogs

## Please clarify:
Could you be more specific about what you'd like me to do? The more details you provide, the better I can assist you.`, decision.Reasoning)
	}

	return Result{Success: true, Content: content}
}

func userErrorResult(err error) Result {
	return Result{Success: false, Content: err.Error()}
}

func mutationFailure(verb, id string, err error) Result {
	var content string
	switch provider.KindOf(err) {
	case provider.KindNotFound:
		content = fmt.Sprintf("❌ Work item %s was not found. Please check the ID and try again.", id)
	case provider.KindForbidden:
		content = fmt.Sprintf("❌ You don't have permission to %s work item %s.", verb, id)
	default:
		content = fmt.Sprintf("❌ Failed to %s work item %s: %v", verb, id, err)
	}
	return Result{Success: false, Content: content}
}

func hasEntity(list []domain.EntityType, et domain.EntityType) bool {
	for _, e := range list {
		if e == et {
			return true
		}
	}
	return false
}
