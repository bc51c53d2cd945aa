package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"bureau/internal/money"
	"bureau/internal/services"
	"bureau/internal/validator"
)

type joinQueueRequest struct {
	FullName     string `json:"full_name"`
	PhoneNumber  string `json:"phone_number"`
	IDType       string `json:"id_type"`
	IDNumber     string `json:"id_number"`
	ServiceType  string `json:"service_type"`
	CurrencyCode string `json:"currency_code"`
	Amount       string `json:"amount"`
}

func (h *Handler) JoinQueue(w http.ResponseWriter, r *http.Request) {
	var req joinQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	req.CurrencyCode = strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	for _, check := range []error{
		validator.ValidateFullName(req.FullName),
		validator.ValidatePhoneNumber(req.PhoneNumber),
		validator.ValidateIDType(req.IDType),
		validator.ValidateIDNumber(req.IDNumber),
		validator.ValidateServiceType(req.ServiceType),
		validator.ValidateCurrencyCode(req.CurrencyCode),
	} {
		if check != nil {
			respondError(w, http.StatusBadRequest, check.Error())
			return
		}
	}
	amount, err := money.ParseAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}

	result, err := h.queue.Admit(r.Context(), services.AdmitRequest{
		FullName:        req.FullName,
		PhoneNumber:     req.PhoneNumber,
		IDType:          req.IDType,
		IDNumber:        req.IDNumber,
		ServiceType:     req.ServiceType,
		CurrencyCode:    req.CurrencyCode,
		RequestedAmount: amount,
	})
	if err != nil {
		switch err {
		case services.ErrCurrencyNotFound:
			respondError(w, http.StatusNotFound, "currency_not_found")
		case services.ErrCurrencyUnavailable:
			respondError(w, http.StatusBadRequest, "currency_unavailable")
		case services.ErrInvalidAmount:
			respondError(w, http.StatusBadRequest, "invalid_amount")
		default:
			respondError(w, http.StatusInternalServerError, "join_failed")
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"message":        "Joined queue successfully",
		"queue_id":       result.Entry.ID,
		"ticket":         result.Entry.TicketNumber,
		"estimated_wait": result.EstimatedWaitMinutes,
	})
}

func (h *Handler) ListQueue(w http.ResponseWriter, r *http.Request) {
	entries, err := h.queue.ListActive(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load queue")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// Rates is the public display-board feed: rates only, no stock levels.
func (h *Handler) Rates(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.currencies.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load rates")
		return
	}
	rates := make([]map[string]any, 0, len(currencies))
	for _, currency := range currencies {
		rates = append(rates, map[string]any{
			"code":         currency.Code,
			"name":         currency.Name,
			"flag_emoji":   currency.FlagEmoji,
			"buy_rate":     currency.BuyRate,
			"sell_rate":    currency.SellRate,
			"is_available": currency.IsAvailable,
		})
	}
	respondJSON(w, http.StatusOK, rates)
}
