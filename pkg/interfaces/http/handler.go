package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/bomengine/pkg/application/services/orchestration"
	"github.com/vsinha/bomengine/pkg/domain/entities"
	"github.com/vsinha/bomengine/pkg/logger"
)

type BOMService interface {
	ListBOMs(ctx context.Context) ([]*entities.BOM, error)
	GetBOM(ctx context.Context, bomID uuid.UUID) (*entities.BOM, error)
	Explode(ctx context.Context, bomID uuid.UUID, maxDepth int) (*entities.ExplosionResult, error)
	Scale(ctx context.Context, bomID uuid.UUID, params entities.ScaleParams) (*entities.ScaleResult, error)
	ExpectedByProducts(ctx context.Context, bomID uuid.UUID, realized decimal.Decimal) ([]entities.ByProductExpectation, error)
	RecordByProductActual(ctx context.Context, bomID, itemID uuid.UUID, req orchestration.RecordActualRequest) (*orchestration.ByProductOutcome, error)
	ByProductHistory(ctx context.Context, bomID uuid.UUID) ([]entities.ByProductRecord, error)
	Yield(ctx context.Context, bomID uuid.UUID) (*entities.YieldAnalysis, error)
	UpdateExpectedYield(ctx context.Context, bomID uuid.UUID, pct decimal.Decimal) (*entities.YieldAnalysis, error)
	Compare(ctx context.Context, idA, idB uuid.UUID) (*entities.BOMComparison, error)
}

type handler struct {
	svc BOMService
}

func NewBOMHandler(service BOMService) *handler {
	return &handler{svc: service}
}

// NewRouter mounts the BOM API and the health check. requestTimeout bounds
// every engine call through the request context.
func NewRouter(service BOMService, requestTimeout time.Duration) chi.Router {
	h := NewBOMHandler(service)

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		requestLogger,
		middleware.Recoverer,
	)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}

	r.Get("/health", HealthCheck)
	r.Route("/api/v1/boms", func(r chi.Router) {
		r.Get("/", h.ListBOMs)
		r.Get("/compare", h.Compare)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetBOM)
			r.Get("/explosion", h.Explode)
			r.Post("/scale", h.Scale)
			r.Get("/by-products", h.ExpectedByProducts)
			r.Get("/by-products/history", h.ByProductHistory)
			r.Post("/by-products/{itemID}/actual", h.RecordByProductActual)
			r.Get("/yield", h.Yield)
			r.Put("/yield", h.UpdateExpectedYield)
		})
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.Debug(ctx, "http request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", ww.Status()),
			logger.Duration("elapsed", time.Since(start)),
		)
	})
}

func (h *handler) ListBOMs(w http.ResponseWriter, r *http.Request) {
	boms, err := h.svc.ListBOMs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, boms)
}

func (h *handler) GetBOM(w http.ResponseWriter, r *http.Request) {
	bomID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	bom, err := h.svc.GetBOM(r.Context(), bomID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, bom)
}

func (h *handler) Explode(w http.ResponseWriter, r *http.Request) {
	bomID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	maxDepth := 0
	if raw := r.URL.Query().Get("max_depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeBadRequest(w, r, "invalid max_depth")
			return
		}
		// zero means "default" only when the parameter is absent
		if parsed < 1 {
			writeError(w, r, fmt.Errorf("%w: max_depth must be at least 1, got %d", entities.ErrInvalidParameter, parsed))
			return
		}
		maxDepth = parsed
	}

	res, err := h.svc.Explode(r.Context(), bomID, maxDepth)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *handler) Scale(w http.ResponseWriter, r *http.Request) {
	bomID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var params entities.ScaleParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeBadRequest(w, r, "invalid scale request body")
		return
	}

	res, err := h.svc.Scale(r.Context(), bomID, params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *handler) ExpectedByProducts(w http.ResponseWriter, r *http.Request) {
	bomID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	realized, err := decimal.NewFromString(r.URL.Query().Get("realized_qty"))
	if err != nil {
		writeBadRequest(w, r, "invalid realized_qty")
		return
	}

	exps, err := h.svc.ExpectedByProducts(r.Context(), bomID, realized)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, exps)
}

func (h *handler) RecordByProductActual(w http.ResponseWriter, r *http.Request) {
	bomID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, r, "itemID")
	if !ok {
		return
	}

	var req orchestration.RecordActualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, r, "invalid by-product actual body")
		return
	}

	outcome, err := h.svc.RecordByProductActual(r.Context(), bomID, itemID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, outcome)
}

func (h *handler) ByProductHistory(w http.ResponseWriter, r *http.Request) {
	bomID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	records, err := h.svc.ByProductHistory(r.Context(), bomID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, records)
}

func (h *handler) Yield(w http.ResponseWriter, r *http.Request) {
	bomID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	res, err := h.svc.Yield(r.Context(), bomID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

type updateYieldRequest struct {
	ExpectedYieldPercent *decimal.Decimal `json:"expected_yield_percent"`
}

func (h *handler) UpdateExpectedYield(w http.ResponseWriter, r *http.Request) {
	bomID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req updateYieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ExpectedYieldPercent == nil {
		writeBadRequest(w, r, "expected_yield_percent is required")
		return
	}

	res, err := h.svc.UpdateExpectedYield(r.Context(), bomID, *req.ExpectedYieldPercent)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *handler) Compare(w http.ResponseWriter, r *http.Request) {
	idA, err := uuid.Parse(r.URL.Query().Get("a"))
	if err != nil {
		writeBadRequest(w, r, "invalid bom id a")
		return
	}
	idB, err := uuid.Parse(r.URL.Query().Get("b"))
	if err != nil {
		writeBadRequest(w, r, "invalid bom id b")
		return
	}

	res, err := h.svc.Compare(r.Context(), idA, idB)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeBadRequest(w, r, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
