package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/chainaudit/internal/domain/scenario"
	"github.com/okian/chainaudit/internal/domain/types"
	"github.com/okian/chainaudit/pkg/logger"
)

// APIPrefix is where the JSON API is mounted.
const APIPrefix = "/api/v1"

// V1Handler serves the stateless JSON API.
type V1Handler struct {
	deps Dependencies
	log  logger.Logger
}

// NewV1Handler creates the JSON API handler.
func NewV1Handler(deps Dependencies, log logger.Logger) *V1Handler {
	return &V1Handler{deps: deps, log: log}
}

// Router returns the chi router for everything under APIPrefix.
func (h *V1Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Get("/dataset", MetricsMiddleware(h.HandleDataset, "api_dataset"))
		r.Get("/views/{page}", MetricsMiddleware(h.HandleView, "api_views"))
		r.Get("/deviation", MetricsMiddleware(h.HandleDeviation, "api_deviation"))
		r.Get("/risk", MetricsMiddleware(h.HandleRisk, "api_risk"))
		r.Get("/cases", MetricsMiddleware(h.HandleCases, "api_cases"))
		r.Post("/notices", MetricsMiddleware(h.HandlePostNotice, "api_notices"))
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
	return r
}

// HandleDataset handles GET /api/v1/dataset.
func (h *V1Handler) HandleDataset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Dataset(r.Context()))
}

// HandleView handles GET /api/v1/views/{page}. It does not touch any session.
func (h *V1Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_view"
	ctx := r.Context()

	page, ok := types.ParsePage(chi.URLParam(r, "page"))
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, NewKind(op, ErrNotFound))
		return
	}
	st := h.deps.DefaultState()
	st.Page = page
	q := r.URL.Query()
	q.Del(paramPage)
	if _, err := overlay(q, &st, true); err != nil {
		writeFailure(ctx, h.log, w, Wrap(op, err))
		return
	}

	v, err := h.deps.View(ctx, st, "api")
	if err != nil {
		writeFailure(ctx, h.log, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type deviationResponse struct {
	SupplierPrice float64 `json:"supplier_price"`
	BasePrice     float64 `json:"base_price"`
	CurrentPrice  float64 `json:"current_price"`
	Deviation     float64 `json:"deviation"`
	Tolerance     float64 `json:"tolerance"`
	Flag          string  `json:"flag"`
	Label         string  `json:"label"`
}

// HandleDeviation handles GET /api/v1/deviation.
func (h *V1Handler) HandleDeviation(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_deviation"
	ctx := r.Context()
	q := r.URL.Query()

	base := h.deps.DefaultState().Parameters.BasePrice
	if raw, ok := lookup(q, paramBasePrice); ok {
		v, err := parseNumber(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
			return
		}
		base = types.ClampBasePrice(v)
	}

	price := h.deps.Dataset(ctx).Supplier().Price
	if raw, ok := lookup(q, "supplier_price"); ok {
		v, err := parseNumber(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
			return
		}
		price = v
	}
	if price <= 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest,
			WrapKind(op, ErrBadRequest, errors.New("supplier_price must be positive")))
		return
	}

	dev := scenario.PriceDeviation(price, base)
	flag := scenario.FlagDeviation(dev)
	writeJSON(w, http.StatusOK, deviationResponse{
		SupplierPrice: price,
		BasePrice:     base,
		CurrentPrice:  scenario.CurrentPrice(price),
		Deviation:     dev,
		Tolerance:     scenario.DeviationTolerance,
		Flag:          string(flag),
		Label:         flag.Label(),
	})
}

type riskResponse struct {
	RiskThreshold int    `json:"risk_threshold"`
	Level         string `json:"level"`
	Label         string `json:"label"`
}

// HandleRisk handles GET /api/v1/risk.
func (h *V1Handler) HandleRisk(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_risk"

	threshold := h.deps.DefaultState().Parameters.RiskThreshold
	if raw, ok := lookup(r.URL.Query(), paramRiskThreshold); ok {
		v, err := parseNumber(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
			return
		}
		threshold = clampThreshold(v)
	}

	level := scenario.ClassifyRisk(threshold)
	writeJSON(w, http.StatusOK, riskResponse{
		RiskThreshold: threshold,
		Level:         string(level),
		Label:         level.Label(),
	})
}

// HandleCases handles GET /api/v1/cases?type=. An unmatched type yields an
// empty list.
func (h *V1Handler) HandleCases(w http.ResponseWriter, r *http.Request) {
	filter := types.FilterAll
	if raw, ok := lookup(r.URL.Query(), "type"); ok {
		filter = types.ParseCaseFilter(raw)
	}
	writeJSON(w, http.StatusOK, h.deps.Cases(r.Context(), filter))
}

type noticeRequest struct {
	SessionID string `json:"session_id"`
	Task      string `json:"task"`
}

func (n noticeRequest) validate() error {
	switch {
	case strings.TrimSpace(n.SessionID) == "":
		return errors.New("missing session_id")
	case strings.TrimSpace(n.Task) == "":
		return errors.New("missing task")
	}
	return nil
}

// HandlePostNotice handles POST /api/v1/notices.
func (h *V1Handler) HandlePostNotice(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_notice"
	ctx := r.Context()

	var req noticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
		return
	}

	ack, err := h.deps.Notice(ctx, req.SessionID, req.Task)
	if err != nil {
		writeFailure(ctx, h.log, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, ack)
}
