package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vsinha/bomengine/pkg/domain/entities"
	"github.com/vsinha/bomengine/pkg/logger"
)

type errorResponse struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Path    []entities.ComponentID `json:"path,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entities.ErrBOMNotFound),
		errors.Is(err, entities.ErrNoActiveBOM),
		errors.Is(err, entities.ErrItemNotFound),
		errors.Is(err, entities.ErrComponentNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, entities.ErrConcurrentModification):
		return http.StatusConflict // 409
	case errors.Is(err, entities.ErrInvalidYield),
		errors.Is(err, entities.ErrInvalidQuantity),
		errors.Is(err, entities.ErrCircularReference),
		errors.Is(err, entities.ErrDifferentProducts):
		return http.StatusUnprocessableEntity // 422
	case errors.Is(err, entities.ErrValidation),
		errors.Is(err, entities.ErrInvalidParameter),
		errors.Is(err, entities.ErrMissingScaleParam),
		errors.Is(err, entities.ErrInvalidScale),
		errors.Is(err, entities.ErrSameVersion):
		return http.StatusBadRequest // 400
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout // 504
	default:
		return http.StatusInternalServerError // 500
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Code: statusFor(err), Message: err.Error()}

	var cycle *entities.CircularReferenceError
	if errors.As(err, &cycle) {
		resp.Path = cycle.Path
	}

	if resp.Code >= http.StatusInternalServerError {
		logger.Error(r.Context(), "request failed", logger.ErrorF(err))
	}
	writeJSON(w, r, resp.Code, resp)
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	writeJSON(w, r, http.StatusBadRequest, errorResponse{Code: http.StatusBadRequest, Message: msg})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error(r.Context(), "encode response", logger.ErrorF(err))
	}
}
