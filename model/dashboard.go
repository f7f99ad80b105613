package model

import "encoding/json"

// Dashboard is the whole-resource representation the platform exchanges.
// Tabs, dashcards, and parameters reference each other by identifier, not by
// nesting. List-valued fields replace the remote list wholesale on write.
type Dashboard struct {
	ID         int         `json:"id"`
	Name       string      `json:"name,omitempty"`
	Tabs       []Tab       `json:"tabs,omitempty"`
	Dashcards  []Dashcard  `json:"dashcards,omitempty"`
	Parameters []Parameter `json:"parameters,omitempty"`

	Extra map[string]any `json:"-"`
}

var dashboardKnownKeys = []string{"id", "name", "tabs", "dashcards", "parameters"}

func (d *Dashboard) UnmarshalJSON(data []byte) error {
	type alias Dashboard
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := captureExtra(data, dashboardKnownKeys)
	if err != nil {
		return err
	}
	a.Extra = extra
	*d = Dashboard(a)
	return nil
}

func (d Dashboard) MarshalJSON() ([]byte, error) {
	type alias Dashboard
	data, err := json.Marshal(alias(d))
	if err != nil {
		return nil, err
	}
	return mergeExtra(data, d.Extra)
}

// Tab is a named section of a dashboard.
type Tab struct {
	ID   int    `json:"id"`
	Name string `json:"name"`

	Extra map[string]any `json:"-"`
}

var tabKnownKeys = []string{"id", "name"}

func (t *Tab) UnmarshalJSON(data []byte) error {
	type alias Tab
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := captureExtra(data, tabKnownKeys)
	if err != nil {
		return err
	}
	a.Extra = extra
	*t = Tab(a)
	return nil
}

func (t Tab) MarshalJSON() ([]byte, error) {
	type alias Tab
	data, err := json.Marshal(alias(t))
	if err != nil {
		return nil, err
	}
	return mergeExtra(data, t.Extra)
}

// Dashcard places one saved card on one dashboard at a grid position.
// CardID is a pointer because virtual cards (text, headings) have none.
// DashboardTabID is nil on dashboards without tabs.
type Dashcard struct {
	ID                    int                `json:"id"`
	CardID                *int               `json:"card_id"`
	DashboardTabID        *int               `json:"dashboard_tab_id,omitempty"`
	Row                   int                `json:"row"`
	Col                   int                `json:"col"`
	SizeX                 int                `json:"size_x"`
	SizeY                 int                `json:"size_y"`
	VisualizationSettings map[string]any     `json:"visualization_settings,omitempty"`
	ParameterMappings     []ParameterMapping `json:"parameter_mappings,omitempty"`

	Extra map[string]any `json:"-"`
}

var dashcardKnownKeys = []string{
	"id", "card_id", "dashboard_tab_id", "row", "col", "size_x", "size_y",
	"visualization_settings", "parameter_mappings",
}

func (c *Dashcard) UnmarshalJSON(data []byte) error {
	type alias Dashcard
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := captureExtra(data, dashcardKnownKeys)
	if err != nil {
		return err
	}
	a.Extra = extra
	*c = Dashcard(a)
	return nil
}

func (c Dashcard) MarshalJSON() ([]byte, error) {
	type alias Dashcard
	data, err := json.Marshal(alias(c))
	if err != nil {
		return nil, err
	}
	return mergeExtra(data, c.Extra)
}

// Parameter is a dashboard-level filter definition. ID is a caller-chosen
// string, unique within one dashboard. Value-source configuration and other
// uninterpreted settings ride along in Extra.
type Parameter struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
	Type string `json:"type,omitempty"`

	Extra map[string]any `json:"-"`
}

var parameterKnownKeys = []string{"id", "name", "slug", "type"}

func (p *Parameter) UnmarshalJSON(data []byte) error {
	type alias Parameter
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := captureExtra(data, parameterKnownKeys)
	if err != nil {
		return err
	}
	a.Extra = extra
	*p = Parameter(a)
	return nil
}

func (p Parameter) MarshalJSON() ([]byte, error) {
	type alias Parameter
	data, err := json.Marshal(alias(p))
	if err != nil {
		return nil, err
	}
	return mergeExtra(data, p.Extra)
}

// ParameterMapping binds one dashboard parameter to one dashcard's card via
// a target clause. Target is opaque to the engine.
type ParameterMapping struct {
	ParameterID string `json:"parameter_id"`
	CardID      *int   `json:"card_id,omitempty"`
	Target      any    `json:"target,omitempty"`

	Extra map[string]any `json:"-"`
}

var parameterMappingKnownKeys = []string{"parameter_id", "card_id", "target"}

func (m *ParameterMapping) UnmarshalJSON(data []byte) error {
	type alias ParameterMapping
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := captureExtra(data, parameterMappingKnownKeys)
	if err != nil {
		return err
	}
	a.Extra = extra
	*m = ParameterMapping(a)
	return nil
}

func (m ParameterMapping) MarshalJSON() ([]byte, error) {
	type alias ParameterMapping
	data, err := json.Marshal(alias(m))
	if err != nil {
		return nil, err
	}
	return mergeExtra(data, m.Extra)
}
