package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"bureau/internal/auth"
	"bureau/internal/middleware"
	"bureau/internal/models"
	"bureau/internal/money"
	"bureau/internal/store"
	"bureau/internal/validator"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

func (h *Handler) Inventory(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.currencies.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load inventory")
		return
	}
	respondJSON(w, http.StatusOK, currencies)
}

type upsertCurrencyRequest struct {
	Name              string `json:"name"`
	FlagEmoji         string `json:"flag_emoji"`
	BuyRate           string `json:"buy_rate"`
	SellRate          string `json:"sell_rate"`
	StockAmount       string `json:"stock_amount"`
	LowStockThreshold string `json:"low_stock_threshold"`
	IsAvailable       *bool  `json:"is_available"`
}

func (h *Handler) UpsertCurrency(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	code := strings.ToUpper(chi.URLParam(r, "code"))
	if err := validator.ValidateCurrencyCode(code); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req upsertCurrencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	buyRate, err := money.ParseRate(req.BuyRate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_buy_rate")
		return
	}
	sellRate, err := money.ParseRate(req.SellRate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_sell_rate")
		return
	}
	stock, err := money.ParseStock(req.StockAmount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_stock_amount")
		return
	}
	threshold, err := money.ParseStock(req.LowStockThreshold)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_low_stock_threshold")
		return
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	currency := models.Currency{
		Code:              code,
		Name:              req.Name,
		FlagEmoji:         req.FlagEmoji,
		BuyRate:           buyRate,
		SellRate:          sellRate,
		StockAmount:       stock,
		LowStockThreshold: threshold,
		IsAvailable:       available,
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.currencies.Upsert(r.Context(), tx, currency)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "currency_update_failed")
		return
	}

	data, _ := json.Marshal(map[string]string{
		"buy_rate":  money.FormatRate(buyRate),
		"sell_rate": money.FormatRate(sellRate),
		"stock":     money.FormatAmount(stock),
	})
	if err := h.audit.Log(r.Context(), &actorID, "CURRENCY_UPSERT", "currency", code, string(data)); err != nil {
		h.logger.Warn("audit log failed", zap.Error(err))
	}
	respondJSON(w, http.StatusOK, currency)
}

func (h *Handler) AdminNotifications(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 50)
	notifications, err := h.notifications.ListByRole(r.Context(), "admin", limit, (page-1)*limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load notifications")
		return
	}
	respondJSON(w, http.StatusOK, notifications)
}

func (h *Handler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 50)
	logs, err := h.audit.List(r.Context(), limit, (page-1)*limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load audit logs")
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

type createUserRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	FullName      string `json:"full_name"`
	Role          string `json:"role"`
	StationNumber *int   `json:"station_number"`
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateUsername(req.Username); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidatePassword(req.Password); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Role != "teller" && req.Role != "admin" {
		respondError(w, http.StatusBadRequest, "role must be teller or admin")
		return
	}
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to secure password")
		return
	}

	userID := uuid.NewString()
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.users.Create(r.Context(), tx, store.UserInput{
			ID:            userID,
			Username:      req.Username,
			PasswordHash:  passwordHash,
			FullName:      req.FullName,
			Role:          req.Role,
			StationNumber: req.StationNumber,
		})
	})
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			respondError(w, http.StatusConflict, "username already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "user_creation_failed")
		return
	}

	data, _ := json.Marshal(map[string]string{"username": req.Username, "role": req.Role})
	if err := h.audit.Log(r.Context(), &actorID, "USER_CREATE", "user", userID, string(data)); err != nil {
		h.logger.Warn("audit log failed", zap.Error(err))
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": userID, "username": req.Username, "role": req.Role})
}
