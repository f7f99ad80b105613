// Package dashboard implements read-modify-write composition over whole
// dashboard representations. The platform offers no partial update for
// list-valued fields: whichever fields appear in a write payload replace
// the corresponding remote list entirely, so every operation here fetches
// the current representation, derives a complete replacement, and issues a
// single write. A failed write leaves the target untouched.
//
// Two concurrent operations on the same dashboard are a lost-update race at
// the remote replace-the-whole-list boundary; callers needing safety under
// concurrent modification must serialize per dashboard themselves.
package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mwadron/metabase-mcp/internal/observability"
	"github.com/mwadron/metabase-mcp/model"
)

// Engine performs dashboard composition through the gateway.
type Engine struct {
	gw     model.Gateway
	logger *zap.Logger
}

// NewEngine builds a composition Engine.
func NewEngine(gw model.Gateway, logger *zap.Logger) *Engine {
	return &Engine{gw: gw, logger: logger}
}

// Get fetches one dashboard's full representation.
func (e *Engine) Get(ctx context.Context, dashboardID int) (*model.Dashboard, error) {
	ctx, span := observability.StartSpan(ctx, "dashboard.get",
		observability.AttrDashboardID.Int(dashboardID))
	defer span.End()

	doc, err := e.gw.Get(ctx, fmt.Sprintf("/dashboard/%d", dashboardID))
	if err != nil {
		return nil, err
	}
	var d model.Dashboard
	if err := model.Decode(doc, &d); err != nil {
		return nil, fmt.Errorf("dashboard: decode dashboard %d: %w", dashboardID, err)
	}
	return &d, nil
}

// Placement describes where and how a card is placed by AddCard.
type Placement struct {
	CardID                int
	TabID                 *int
	Row                   int
	Col                   int
	SizeX                 int
	SizeY                 int
	VisualizationSettings map[string]any
}

// AddCard appends one new dashcard to the dashboard and writes the full
// dashcard list back. The new entity carries identifier −1, the sole new
// entity in the write. Existing placements of the same card are not
// deduplicated.
func (e *Engine) AddCard(ctx context.Context, dashboardID int, p Placement) (any, error) {
	current, err := e.Get(ctx, dashboardID)
	if err != nil {
		return nil, err
	}

	cardID := p.CardID
	dashcards := append(append([]model.Dashcard{}, current.Dashcards...), model.Dashcard{
		ID:                    -1,
		CardID:                &cardID,
		DashboardTabID:        p.TabID,
		Row:                   p.Row,
		Col:                   p.Col,
		SizeX:                 p.SizeX,
		SizeY:                 p.SizeY,
		VisualizationSettings: p.VisualizationSettings,
	})

	return e.write(ctx, dashboardID, map[string]any{"dashcards": dashcards})
}

// RemoveCard writes back the dashcard list without the given dashcard.
// Fails with NOT_FOUND, listing the identifiers present, when the filter
// removes nothing.
func (e *Engine) RemoveCard(ctx context.Context, dashboardID, dashcardID int) (any, error) {
	current, err := e.Get(ctx, dashboardID)
	if err != nil {
		return nil, err
	}

	kept := make([]model.Dashcard, 0, len(current.Dashcards))
	for _, dc := range current.Dashcards {
		if dc.ID != dashcardID {
			kept = append(kept, dc)
		}
	}
	if len(kept) == len(current.Dashcards) {
		return nil, model.NewNotFoundError(fmt.Sprintf(
			"dashcard %d not found on dashboard %d (available: %s)",
			dashcardID, dashboardID, dashcardIDs(current.Dashcards)))
	}

	return e.write(ctx, dashboardID, map[string]any{"dashcards": kept})
}

// ReplaceParameters writes the given list as the dashboard's entire
// parameters field, discarding whatever was present. Callers wanting
// additive behavior must read and merge first.
func (e *Engine) ReplaceParameters(ctx context.Context, dashboardID int, params []model.Parameter) (any, error) {
	if params == nil {
		params = []model.Parameter{}
	}
	return e.write(ctx, dashboardID, map[string]any{"parameters": params})
}

// ReplaceDashcards writes the given list as the dashboard's entire
// dashcards field. No validation that referenced card identifiers exist.
func (e *Engine) ReplaceDashcards(ctx context.Context, dashboardID int, dashcards []model.Dashcard) (any, error) {
	if dashcards == nil {
		dashcards = []model.Dashcard{}
	}
	return e.write(ctx, dashboardID, map[string]any{"dashcards": dashcards})
}

// write issues the single PUT that concludes every composition operation.
func (e *Engine) write(ctx context.Context, dashboardID int, fields map[string]any) (any, error) {
	ctx, span := observability.StartSpan(ctx, "dashboard.write",
		observability.AttrDashboardID.Int(dashboardID))

	result, err := e.gw.Send(ctx, http.MethodPut, fmt.Sprintf("/dashboard/%d", dashboardID), fields)
	observability.EndSpanWithError(span, err)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	observability.RequestLogger(ctx, e.logger).Info("dashboard updated",
		zap.Int("dashboard_id", dashboardID),
		zap.Strings("fields", keys),
	)
	return result, nil
}

func dashcardIDs(dashcards []model.Dashcard) string {
	if len(dashcards) == 0 {
		return "none"
	}
	ids := make([]string, len(dashcards))
	for i, dc := range dashcards {
		ids[i] = fmt.Sprintf("%d", dc.ID)
	}
	return strings.Join(ids, ", ")
}
