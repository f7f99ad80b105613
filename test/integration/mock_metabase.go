package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

// MockMetabase is a stateful HTTP test server simulating the subset of the
// Metabase API the gateway talks to. It stores dashboards and cards in
// memory and, like the real platform, materializes negative identifiers in
// dashboard writes into fresh positive ones.
type MockMetabase struct {
	t      *testing.T
	server *httptest.Server

	mu         sync.Mutex
	dashboards map[int]map[string]any
	cards      map[int]map[string]any
	nextID     int

	// SessionLogins counts POST /api/session calls.
	SessionLogins int
	// RequestCount counts every API request received.
	RequestCount int
}

// NewMockMetabase starts the mock server. Callers seed state with SeedDashboard
// and SeedCard and must Close it when done (t.Cleanup is registered).
func NewMockMetabase(t *testing.T) *MockMetabase {
	t.Helper()

	m := &MockMetabase{
		t:          t,
		dashboards: make(map[int]map[string]any),
		cards:      make(map[int]map[string]any),
		nextID:     1000,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/session", m.handleSession)
	mux.HandleFunc("GET /api/dashboard/{id}", m.handleGetDashboard)
	mux.HandleFunc("PUT /api/dashboard/{id}", m.handlePutDashboard)
	mux.HandleFunc("GET /api/card", m.handleListCards)
	mux.HandleFunc("GET /api/card/{id}", m.handleGetCard)
	mux.HandleFunc("POST /api/card", m.handleCreateCard)
	mux.HandleFunc("PUT /api/card/{id}", m.handleUpdateCard)
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	counted := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.RequestCount++
		m.mu.Unlock()
		mux.ServeHTTP(w, r)
	})

	m.server = httptest.NewServer(counted)
	t.Cleanup(m.server.Close)
	return m
}

// URL returns the mock's base URL for gateway configuration.
func (m *MockMetabase) URL() string { return m.server.URL }

// SeedDashboard installs a dashboard document keyed by its "id" field.
func (m *MockMetabase) SeedDashboard(raw string) {
	m.t.Helper()
	doc := parseDoc(m.t, raw)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dashboards[docID(m.t, doc)] = doc
}

// SeedCard installs a card document keyed by its "id" field.
func (m *MockMetabase) SeedCard(raw string) {
	m.t.Helper()
	doc := parseDoc(m.t, raw)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards[docID(m.t, doc)] = doc
}

// Dashboard returns the stored dashboard document.
func (m *MockMetabase) Dashboard(id int) map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dashboards[id]
}

// Card returns the stored card document.
func (m *MockMetabase) Card(id int) map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cards[id]
}

func (m *MockMetabase) handleSession(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.SessionLogins++
	m.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"id": "test-session-token"})
}

func (m *MockMetabase) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	id := pathID(w, r)
	if id < 0 {
		return
	}
	m.mu.Lock()
	doc, ok := m.dashboards[id]
	m.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Dashboard not found"})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handlePutDashboard merges the written fields into the stored document and
// replaces negative tab and dashcard identifiers with fresh positive ones,
// remapping dashboard_tab_id references the way the platform does.
func (m *MockMetabase) handlePutDashboard(w http.ResponseWriter, r *http.Request) {
	id := pathID(w, r)
	if id < 0 {
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.dashboards[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Dashboard not found"})
		return
	}

	tabRemap := map[float64]float64{}
	if rawTabs, ok := fields["tabs"].([]any); ok {
		for _, rt := range rawTabs {
			tab, ok := rt.(map[string]any)
			if !ok {
				continue
			}
			if tid, ok := tab["id"].(float64); ok && tid < 0 {
				m.nextID++
				tabRemap[tid] = float64(m.nextID)
				tab["id"] = float64(m.nextID)
			}
		}
		doc["tabs"] = rawTabs
	}
	if rawCards, ok := fields["dashcards"].([]any); ok {
		for _, rc := range rawCards {
			dc, ok := rc.(map[string]any)
			if !ok {
				continue
			}
			if cid, ok := dc["id"].(float64); ok && cid < 0 {
				m.nextID++
				dc["id"] = float64(m.nextID)
			}
			if ref, ok := dc["dashboard_tab_id"].(float64); ok {
				if mapped, ok := tabRemap[ref]; ok {
					dc["dashboard_tab_id"] = mapped
				}
			}
		}
		doc["dashcards"] = rawCards
	}
	for k, v := range fields {
		if k == "tabs" || k == "dashcards" {
			continue
		}
		doc[k] = v
	}

	writeJSON(w, http.StatusOK, doc)
}

func (m *MockMetabase) handleListCards(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	list := make([]map[string]any, 0, len(m.cards))
	for _, c := range m.cards {
		list = append(list, c)
	}
	m.mu.Unlock()
	writeJSON(w, http.StatusOK, list)
}

func (m *MockMetabase) handleGetCard(w http.ResponseWriter, r *http.Request) {
	id := pathID(w, r)
	if id < 0 {
		return
	}
	m.mu.Lock()
	doc, ok := m.cards[id]
	m.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Card not found"})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (m *MockMetabase) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	m.mu.Lock()
	m.nextID++
	doc["id"] = float64(m.nextID)
	m.cards[m.nextID] = doc
	m.mu.Unlock()
	writeJSON(w, http.StatusOK, doc)
}

func (m *MockMetabase) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	id := pathID(w, r)
	if id < 0 {
		return
	}
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.cards[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Card not found"})
		return
	}
	for k, v := range fields {
		doc[k] = v
	}
	writeJSON(w, http.StatusOK, doc)
}

func pathID(w http.ResponseWriter, r *http.Request) int {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad id"})
		return -1
	}
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseDoc(t *testing.T, raw string) map[string]any {
	t.Helper()
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("bad seed document: %v", err)
	}
	return doc
}

func docID(t *testing.T, doc map[string]any) int {
	t.Helper()
	id, ok := doc["id"].(float64)
	if !ok {
		t.Fatalf("seed document has no numeric id: %v", doc)
	}
	return int(id)
}
