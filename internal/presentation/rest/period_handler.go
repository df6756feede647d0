package rest

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/finbooks/finbooks/internal/application/dto"
	"github.com/finbooks/finbooks/internal/application/usecase"
	"github.com/finbooks/finbooks/pkg/auth"
	"github.com/finbooks/finbooks/pkg/fault"
)

// PeriodHandler exposes the period close API. The tenant and actor come from
// the validated bearer token, never from the request body.
type PeriodHandler struct {
	validateClose  *usecase.ValidateClose
	closePeriod    *usecase.ClosePeriod
	getCloseStatus *usecase.GetCloseStatus
	logger         *slog.Logger
}

func NewPeriodHandler(
	validateClose *usecase.ValidateClose,
	closePeriod *usecase.ClosePeriod,
	getCloseStatus *usecase.GetCloseStatus,
	logger *slog.Logger,
) *PeriodHandler {
	return &PeriodHandler{
		validateClose:  validateClose,
		closePeriod:    closePeriod,
		getCloseStatus: getCloseStatus,
		logger:         logger,
	}
}

// RegisterRoutes registers the period close routes on the given mux.
func (h *PeriodHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /periods/{id}/validate-close", h.handleValidateClose)
	mux.HandleFunc("POST /periods/{id}/close", h.handleClose)
	mux.HandleFunc("GET /periods/{id}/close-status", h.handleCloseStatus)
}

func (h *PeriodHandler) handleValidateClose(w http.ResponseWriter, r *http.Request) {
	claims, periodID, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	resp, err := h.validateClose.Execute(r.Context(), dto.ValidateCloseRequest{
		TenantID: claims.TenantID,
		PeriodID: periodID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *PeriodHandler) handleClose(w http.ResponseWriter, r *http.Request) {
	claims, periodID, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	var body dto.ClosePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, fault.Wrapf(fault.KindValidation, fault.CodeValidationFailed, err, "request body"))
		return
	}
	body.TenantID = claims.TenantID
	body.PeriodID = periodID
	body.ClosedBy = claims.Subject
	if body.ClosedBy == "" {
		body.ClosedBy = claims.ActorID.String()
	}

	resp, err := h.closePeriod.Execute(r.Context(), body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *PeriodHandler) handleCloseStatus(w http.ResponseWriter, r *http.Request) {
	claims, periodID, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	resp, err := h.getCloseStatus.Execute(r.Context(), claims.TenantID, periodID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// requestScope extracts the authenticated claims and the period id from the
// request. A false return means the response has been written.
func (h *PeriodHandler) requestScope(w http.ResponseWriter, r *http.Request) (*auth.Claims, uuid.UUID, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || claims.TenantID == uuid.Nil {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return nil, uuid.Nil, false
	}

	periodID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, fault.Wrapf(fault.KindValidation, fault.CodeValidationFailed, err, "period id"))
		return nil, uuid.Nil, false
	}
	return claims, periodID, true
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *PeriodHandler) writeError(w http.ResponseWriter, err error) {
	writeFault(w, err, h.logger)
}

func (h *PeriodHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	writeJSONBody(w, status, body, h.logger)
}

// writeFault maps a classified error to an HTTP status. Internal failures are
// logged and redacted; everything else carries its code and message through.
func writeFault(w http.ResponseWriter, err error, logger *slog.Logger) {
	status := http.StatusInternalServerError
	switch fault.KindOf(err) {
	case fault.KindValidation, fault.KindGovernance:
		status = http.StatusBadRequest
	case fault.KindNotFound:
		status = http.StatusNotFound
	case fault.KindConflict, fault.KindDuplicate:
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	}

	code := fault.CodeOf(err)
	if code == "" {
		code = "INTERNAL"
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSONBody(w, status, errorBody{Code: code, Message: msg}, logger)
}

func writeJSONBody(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to write response", "error", err)
	}
}
