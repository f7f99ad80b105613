package dashboard

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mwadron/metabase-mcp/internal/observability"
	"github.com/mwadron/metabase-mcp/model"
)

// CopyTabRequest describes one tab copy between dashboards.
type CopyTabRequest struct {
	SourceDashboardID int
	SourceTabID       int
	TargetDashboardID int
	// NewTabName defaults to the source tab's name.
	NewTabName string
	// IncludeFilters copies the source parameters that the copied
	// dashcards reference, renaming on identifier collision.
	IncludeFilters bool
}

// CopyTabResult summarizes what one copy produced.
type CopyTabResult struct {
	NewTabID          int               `json:"new_tab_id"`
	CopiedDashcardIDs []int             `json:"copied_dashcard_ids"`
	ParameterRenames  map[string]string `json:"parameter_renames,omitempty"`
	CopiedParameters  []string          `json:"copied_parameters,omitempty"`
	Response          any               `json:"-"`
}

// CopyTab copies one tab, its dashcard placements, and (optionally) the
// dashboard-level filters those placements reference from the source
// dashboard to the target. The copy is additive: no existing target tab,
// dashcard, or parameter is removed or mutated. It is not idempotent —
// repeating it creates another duplicate tab with fresh identifiers.
func (e *Engine) CopyTab(ctx context.Context, req CopyTabRequest) (*CopyTabResult, error) {
	source, err := e.Get(ctx, req.SourceDashboardID)
	if err != nil {
		return nil, err
	}
	target, err := e.Get(ctx, req.TargetDashboardID)
	if err != nil {
		return nil, err
	}

	sourceTab, ok := findTab(source.Tabs, req.SourceTabID)
	if !ok {
		return nil, model.NewNotFoundError(fmt.Sprintf(
			"tab %d not found on dashboard %d (available: %s)",
			req.SourceTabID, req.SourceDashboardID, tabIDs(source.Tabs)))
	}

	// Dashcards placed on the source tab, in source iteration order.
	selected := make([]model.Dashcard, 0, len(source.Dashcards))
	for _, dc := range source.Dashcards {
		if dc.DashboardTabID != nil && *dc.DashboardTabID == req.SourceTabID {
			selected = append(selected, dc)
		}
	}

	newTabID := NewIDAllocator(tabIDList(target.Tabs)).Next()

	// Parameters referenced by any selected dashcard's mappings.
	referenced := map[string]bool{}
	for _, dc := range selected {
		for _, pm := range dc.ParameterMappings {
			referenced[pm.ParameterID] = true
		}
	}

	var copiedParams []model.Parameter
	renames := map[string]string{}
	if req.IncludeFilters && len(referenced) > 0 {
		copiedParams, renames = copyParameters(source.Parameters, target.Parameters, referenced)
	}

	// Fresh dashcard identifiers: strictly decreasing, one per copy.
	cardAlloc := NewIDAllocator(dashcardIDList(target.Dashcards))
	copied := make([]model.Dashcard, 0, len(selected))
	copiedIDs := make([]int, 0, len(selected))
	for _, dc := range selected {
		clone := dc
		clone.ID = cardAlloc.Next()
		tabID := newTabID
		clone.DashboardTabID = &tabID
		clone.ParameterMappings = rewriteMappings(dc.ParameterMappings, renames, dc.CardID)
		copied = append(copied, clone)
		copiedIDs = append(copiedIDs, clone.ID)
	}

	tabName := req.NewTabName
	if tabName == "" {
		tabName = sourceTab.Name
	}
	newTab := model.Tab{ID: newTabID, Name: tabName}

	fields := map[string]any{
		"tabs":      append(append([]model.Tab{}, target.Tabs...), newTab),
		"dashcards": append(append([]model.Dashcard{}, target.Dashcards...), copied...),
	}
	if len(copiedParams) > 0 {
		fields["parameters"] = append(append([]model.Parameter{}, target.Parameters...), copiedParams...)
	}

	response, err := e.write(ctx, req.TargetDashboardID, fields)
	if err != nil {
		return nil, err
	}

	result := &CopyTabResult{
		NewTabID:          newTabID,
		CopiedDashcardIDs: copiedIDs,
		Response:          response,
	}
	if len(renames) > 0 {
		result.ParameterRenames = renames
	}
	for _, p := range copiedParams {
		result.CopiedParameters = append(result.CopiedParameters, p.ID)
	}

	observability.RequestLogger(ctx, e.logger).Info("tab copied",
		zap.Int("source_dashboard_id", req.SourceDashboardID),
		zap.Int("source_tab_id", req.SourceTabID),
		zap.Int("target_dashboard_id", req.TargetDashboardID),
		zap.Int("new_tab_id", newTabID),
		zap.Int("dashcards", len(copiedIDs)),
		zap.Int("parameters", len(copiedParams)),
	)
	return result, nil
}

// copyParameters copies the source parameters whose identifiers are in
// referenced, renaming each that collides with the continuously updated
// target identifier set. Parameters referenced by dashcards but absent from
// the source list are silently skipped. Iteration follows the source
// parameter list, so the result is deterministic.
func copyParameters(source, target []model.Parameter, referenced map[string]bool) ([]model.Parameter, map[string]string) {
	taken := map[string]bool{}
	for _, p := range target {
		taken[p.ID] = true
	}

	var copied []model.Parameter
	renames := map[string]string{}
	for _, p := range source {
		if !referenced[p.ID] {
			continue
		}
		clone := p
		if taken[p.ID] {
			clone.ID = freshParameterID(p.ID, taken)
			renames[p.ID] = clone.ID
		}
		taken[clone.ID] = true
		copied = append(copied, clone)
	}
	return copied, renames
}

// freshParameterID appends _copy, then _copy_1, _copy_2, … until the
// identifier no longer collides.
func freshParameterID(old string, taken map[string]bool) string {
	candidate := old + "_copy"
	for i := 1; taken[candidate]; i++ {
		candidate = fmt.Sprintf("%s_copy_%d", old, i)
	}
	return candidate
}

// rewriteMappings rewrites each mapping's parameter identifier through the
// rename table (unmapped identifiers pass through) and re-pins the mapping
// to the dashcard's own card.
func rewriteMappings(mappings []model.ParameterMapping, renames map[string]string, cardID *int) []model.ParameterMapping {
	if len(mappings) == 0 {
		return nil
	}
	out := make([]model.ParameterMapping, len(mappings))
	for i, pm := range mappings {
		clone := pm
		if newID, ok := renames[pm.ParameterID]; ok {
			clone.ParameterID = newID
		}
		if cardID != nil {
			id := *cardID
			clone.CardID = &id
		}
		out[i] = clone
	}
	return out
}

func findTab(tabs []model.Tab, id int) (model.Tab, bool) {
	for _, t := range tabs {
		if t.ID == id {
			return t, true
		}
	}
	return model.Tab{}, false
}

func tabIDs(tabs []model.Tab) string {
	if len(tabs) == 0 {
		return "none"
	}
	ids := make([]string, len(tabs))
	for i, t := range tabs {
		ids[i] = fmt.Sprintf("%d", t.ID)
	}
	return strings.Join(ids, ", ")
}

func tabIDList(tabs []model.Tab) []int {
	ids := make([]int, len(tabs))
	for i, t := range tabs {
		ids[i] = t.ID
	}
	return ids
}

func dashcardIDList(dashcards []model.Dashcard) []int {
	ids := make([]int, len(dashcards))
	for i, dc := range dashcards {
		ids[i] = dc.ID
	}
	return ids
}
