package reflection

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BaSui01/flowreg/flowstate"
	"github.com/BaSui01/flowreg/registry"
	"github.com/BaSui01/flowreg/tracestore"
)

// Handler serves the reflection API over one registry.
type Handler struct {
	reg      *registry.Registry
	logger   *zap.Logger
	gatherer prometheus.Gatherer
	mux      *http.ServeMux
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithGatherer exposes g on GET /metrics.
func WithGatherer(g prometheus.Gatherer) HandlerOption {
	return func(h *Handler) { h.gatherer = g }
}

// NewHandler creates the reflection API for reg.
func NewHandler(reg *registry.Registry, logger *zap.Logger, opts ...HandlerOption) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		reg:    reg,
		logger: logger.With(zap.String("component", "reflection")),
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.mux.HandleFunc("GET /api/__health", h.HandleHealth)
	h.mux.HandleFunc("GET /api/actions", h.HandleListActions)
	h.mux.HandleFunc("GET /api/actions/{type}/{name...}", h.HandleGetAction)
	h.mux.HandleFunc("GET /api/envs/{env}/traces", h.HandleListTraces)
	h.mux.HandleFunc("GET /api/envs/{env}/traces/{id}", h.HandleGetTrace)
	h.mux.HandleFunc("GET /api/envs/{env}/flowStates", h.HandleListFlowStates)
	h.mux.HandleFunc("GET /api/envs/{env}/flowStates/{id}", h.HandleGetFlowState)
	if h.gatherer != nil {
		h.mux.Handle("GET /metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}
	return h
}

// ServeHTTP binds the request context to the handler's registry.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := registry.WithRegistry(r.Context(), h.reg)
	h.mux.ServeHTTP(w, r.WithContext(ctx))
}

// HandleHealth answers /api/__health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// HandleListActions returns every action keyed by action key. Listing
// initializes all plugins first, so plugin-provided actions are included.
func (h *Handler) HandleListActions(w http.ResponseWriter, r *http.Request) {
	actions, err := registry.ListActions(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, CodeInternal, err.Error(), h.logger)
		return
	}

	out := make(map[string]registry.ActionDesc, len(actions))
	for key, a := range actions {
		out[key] = registry.DescribeAction(key, a)
	}
	WriteJSON(w, http.StatusOK, out)
}

// HandleGetAction resolves /api/actions/{type}/{name...} to a single action.
func (h *Handler) HandleGetAction(w http.ResponseWriter, r *http.Request) {
	typ := registry.ActionType(r.PathValue("type"))
	if !typ.Valid() {
		WriteError(w, http.StatusBadRequest, CodeInvalidRequest, "unknown action type "+string(typ), h.logger)
		return
	}
	key := registry.ActionKey(typ, r.PathValue("name"))

	a, err := registry.LookupAction(r.Context(), key)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, CodeInternal, err.Error(), h.logger)
		return
	}
	if a == nil {
		WriteError(w, http.StatusNotFound, CodeNotFound, "action "+key+" not found", h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, registry.DescribeAction(key, a))
}

// HandleListTraces lists traces of the env's trace store.
func (h *Handler) HandleListTraces(w http.ResponseWriter, r *http.Request) {
	store, ok := h.traceStore(w, r)
	if !ok {
		return
	}
	limit, ok := parseLimit(w, r, h.logger)
	if !ok {
		return
	}

	res, err := store.List(r.Context(), tracestore.Query{
		Limit:             limit,
		ContinuationToken: r.URL.Query().Get("continuationToken"),
	})
	if errors.Is(err, tracestore.ErrInvalidToken) {
		WriteError(w, http.StatusBadRequest, CodeInvalidRequest, err.Error(), h.logger)
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, CodeInternal, err.Error(), h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// HandleGetTrace loads one trace.
func (h *Handler) HandleGetTrace(w http.ResponseWriter, r *http.Request) {
	store, ok := h.traceStore(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	t, err := store.Load(r.Context(), id)
	if errors.Is(err, tracestore.ErrNotFound) {
		WriteError(w, http.StatusNotFound, CodeNotFound, "trace "+id+" not found", h.logger)
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, CodeInternal, err.Error(), h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

// HandleListFlowStates lists flow states of the env's flow-state store.
func (h *Handler) HandleListFlowStates(w http.ResponseWriter, r *http.Request) {
	store, ok := h.flowStateStore(w, r)
	if !ok {
		return
	}
	limit, ok := parseLimit(w, r, h.logger)
	if !ok {
		return
	}

	res, err := store.List(r.Context(), flowstate.Query{
		Limit:             limit,
		ContinuationToken: r.URL.Query().Get("continuationToken"),
	})
	if errors.Is(err, flowstate.ErrInvalidToken) {
		WriteError(w, http.StatusBadRequest, CodeInvalidRequest, err.Error(), h.logger)
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, CodeInternal, err.Error(), h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// HandleGetFlowState loads one flow state.
func (h *Handler) HandleGetFlowState(w http.ResponseWriter, r *http.Request) {
	store, ok := h.flowStateStore(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	st, err := store.Load(r.Context(), id)
	if errors.Is(err, flowstate.ErrNotFound) {
		WriteError(w, http.StatusNotFound, CodeNotFound, "flow state "+id+" not found", h.logger)
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, CodeInternal, err.Error(), h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, st)
}

// traceStore resolves the env's trace store, writing the error response when
// there is none.
func (h *Handler) traceStore(w http.ResponseWriter, r *http.Request) (tracestore.Store, bool) {
	env := r.PathValue("env")
	store, err := registry.LookupTraceStore(r.Context(), env)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, CodeInternal, err.Error(), h.logger)
		return nil, false
	}
	if store == nil {
		WriteError(w, http.StatusNotFound, CodeNotFound, "no trace store for env "+env, h.logger)
		return nil, false
	}
	return store, true
}

func (h *Handler) flowStateStore(w http.ResponseWriter, r *http.Request) (flowstate.Store, bool) {
	env := r.PathValue("env")
	store, err := registry.LookupFlowStateStore(r.Context(), env)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, CodeInternal, err.Error(), h.logger)
		return nil, false
	}
	if store == nil {
		WriteError(w, http.StatusNotFound, CodeNotFound, "no flow state store for env "+env, h.logger)
		return nil, false
	}
	return store, true
}

func parseLimit(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		WriteError(w, http.StatusBadRequest, CodeInvalidRequest, "limit must be a non-negative integer", logger)
		return 0, false
	}
	return limit, true
}
