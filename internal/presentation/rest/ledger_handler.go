package rest

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/finbooks/finbooks/internal/application/usecase"
	"github.com/finbooks/finbooks/pkg/auth"
	"github.com/finbooks/finbooks/pkg/fault"
)

// LedgerHandler exposes the read side of the ledger: accounts, entries and
// the balance roll-up. All routes are tenant-scoped by the bearer token.
type LedgerHandler struct {
	getAccount      *usecase.GetAccount
	getJournalEntry *usecase.GetJournalEntry
	listBalances    *usecase.ListBalances
	logger          *slog.Logger
}

func NewLedgerHandler(
	getAccount *usecase.GetAccount,
	getJournalEntry *usecase.GetJournalEntry,
	listBalances *usecase.ListBalances,
	logger *slog.Logger,
) *LedgerHandler {
	return &LedgerHandler{
		getAccount:      getAccount,
		getJournalEntry: getJournalEntry,
		listBalances:    listBalances,
		logger:          logger,
	}
}

// RegisterRoutes registers the ledger read routes on the given mux.
func (h *LedgerHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /accounts/{code}", h.handleGetAccount)
	mux.HandleFunc("GET /entries/{id}", h.handleGetEntry)
	mux.HandleFunc("GET /periods/{id}/balances", h.handleListBalances)
}

func (h *LedgerHandler) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || claims.TenantID == uuid.Nil {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	resp, err := h.getAccount.Execute(r.Context(), claims.TenantID, r.PathValue("code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *LedgerHandler) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	claims, id, ok := h.scope(w, r)
	if !ok {
		return
	}

	resp, err := h.getJournalEntry.Execute(r.Context(), claims.TenantID, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *LedgerHandler) handleListBalances(w http.ResponseWriter, r *http.Request) {
	claims, periodID, ok := h.scope(w, r)
	if !ok {
		return
	}

	resp, err := h.listBalances.Execute(r.Context(), claims.TenantID, periodID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *LedgerHandler) scope(w http.ResponseWriter, r *http.Request) (*auth.Claims, uuid.UUID, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || claims.TenantID == uuid.Nil {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return nil, uuid.Nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, fault.Wrapf(fault.KindValidation, fault.CodeValidationFailed, err, "resource id"))
		return nil, uuid.Nil, false
	}
	return claims, id, true
}

func (h *LedgerHandler) writeError(w http.ResponseWriter, err error) {
	writeFault(w, err, h.logger)
}

func (h *LedgerHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	writeJSONBody(w, status, body, h.logger)
}
