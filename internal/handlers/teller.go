package handlers

import (
	"encoding/json"
	"net/http"

	"bureau/internal/middleware"
	"bureau/internal/money"
	"bureau/internal/services"

	"github.com/shopspring/decimal"
)

func (h *Handler) CallNext(w http.ResponseWriter, r *http.Request) {
	tellerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	entry, err := h.queue.ClaimNext(r.Context(), tellerID)
	if err != nil {
		if err == services.ErrEmptyQueue {
			// The empty queue is a normal state for the teller UI,
			// not a fault.
			respondJSON(w, http.StatusOK, map[string]string{
				"status":  "empty",
				"message": "No customers in waiting queue",
			})
			return
		}
		respondError(w, http.StatusInternalServerError, "call_next_failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Customer called",
		"ticket":  entry,
	})
}

type transactionRequest struct {
	QueueID string `json:"queue_id"`
	Amount  string `json:"amount"`
	Rate    string `json:"rate"`
}

func (h *Handler) ExecuteTransaction(w http.ResponseWriter, r *http.Request) {
	tellerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.QueueID == "" {
		respondError(w, http.StatusBadRequest, "queue_id is required")
		return
	}
	var overrideAmount *decimal.Decimal
	if req.Amount != "" {
		amount, err := money.ParseAmount(req.Amount)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_amount")
			return
		}
		overrideAmount = &amount
	}
	var overrideRate *decimal.Decimal
	if req.Rate != "" {
		rate, err := money.ParseRate(req.Rate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_rate")
			return
		}
		overrideRate = &rate
	}

	transaction, err := h.settlement.Settle(r.Context(), services.SettleRequest{
		QueueID:        req.QueueID,
		TellerID:       tellerID,
		OverrideAmount: overrideAmount,
		OverrideRate:   overrideRate,
	})
	if err != nil {
		switch err {
		case services.ErrEntryNotFound:
			respondError(w, http.StatusNotFound, "queue_entry_not_found")
		case services.ErrAlreadySettled:
			respondError(w, http.StatusConflict, "already_settled")
		case services.ErrInsufficientStock:
			respondError(w, http.StatusUnprocessableEntity, "insufficient_stock")
		case services.ErrInvalidAmount:
			respondError(w, http.StatusBadRequest, "invalid_amount")
		case services.ErrInvalidRate:
			respondError(w, http.StatusBadRequest, "invalid_rate")
		default:
			respondError(w, http.StatusInternalServerError, "transaction_failed")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message":     "Transaction successful",
		"transaction": transaction,
	})
}

type cancelRequest struct {
	QueueID string `json:"queue_id"`
}

func (h *Handler) CancelEntry(w http.ResponseWriter, r *http.Request) {
	tellerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QueueID == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.queue.Cancel(r.Context(), req.QueueID, tellerID); err != nil {
		switch err {
		case services.ErrEntryNotFound:
			respondError(w, http.StatusNotFound, "queue_entry_not_found")
		case services.ErrEntryClosed:
			respondError(w, http.StatusConflict, "queue_entry_closed")
		default:
			respondError(w, http.StatusInternalServerError, "cancel_failed")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Entry cancelled"})
}

func (h *Handler) TellerHistory(w http.ResponseWriter, r *http.Request) {
	tellerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	history, err := h.settlement.History(r.Context(), tellerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load history")
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func (h *Handler) TellerDashboard(w http.ResponseWriter, r *http.Request) {
	tellerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	stats, err := h.settlement.DashboardStats(r.Context(), tellerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load dashboard")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
