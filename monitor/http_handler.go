package monitor

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/tlstats/tlstats/registry"
)

// route defines an HTTP route and how it is handled.
type route struct {
	Name        string
	Method      string
	Path        string
	HandlerFunc http.HandlerFunc
}

// Handler serves the registry contents and process diagnostics for external
// monitoring systems.
type Handler struct {
	router   *mux.Router
	registry *registry.Registry
	logger   *zap.Logger
}

// NewHandler returns an HTTP handler exposing reg.
func NewHandler(reg *registry.Registry) *Handler {
	h := &Handler{
		router:   mux.NewRouter(),
		registry: reg,
		logger:   zap.NewNop(),
	}
	for _, r := range []route{
		{"stats", http.MethodGet, "/stats", h.serveStats},
		{"stat", http.MethodGet, "/stats/{key}", h.serveStat},
		{"diagnostics", http.MethodGet, "/diagnostics", h.serveDiagnostics},
	} {
		h.router.HandleFunc(r.Path, r.HandlerFunc).Methods(r.Method).Name(r.Name)
	}
	return h
}

// WithLogger sets the logger on the handler.
func (h *Handler) WithLogger(log *zap.Logger) {
	h.logger = log.With(zap.String("service", "monitor-http"))
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// serveStats writes every registry key and its cumulative value as one JSON
// object.
func (h *Handler) serveStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.registry.Snapshot())
}

// serveStat writes a single registry value; absent keys are 404.
func (h *Handler) serveStat(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	v, ok := h.registry.Lookup(key)
	if !ok {
		http.Error(w, "unknown stat key", http.StatusNotFound)
		return
	}
	h.writeJSON(w, map[string]int64{key: v})
}

// serveDiagnostics writes one row of process diagnostics per provider.
func (h *Handler) serveDiagnostics(w http.ResponseWriter, r *http.Request) {
	rows := make(map[string]map[string]interface{})
	for name, p := range diagnosticsProviders() {
		row, err := p.Diagnostics()
		if err != nil {
			h.logger.Warn("Failed to gather diagnostics",
				zap.String("provider", name), zap.Error(err))
			continue
		}
		rows[name] = row
	}
	h.writeJSON(w, rows)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("Failed to encode response", zap.Error(err))
	}
}
