package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"finvoiceBack/internal/models"
	"finvoiceBack/internal/services"
)

type InvestmentHandler struct {
	Service *services.InvestmentService
}

func (h *InvestmentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	investments, err := h.Service.ListMine(r.Context(), userID, status)
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(struct {
		Investments []models.Investment `json:"investments"`
	}{Investments: investments})
}

func (h *InvestmentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	investmentID := intParam(r, "id")
	if investmentID == 0 {
		http.Error(w, "Invalid investment id", http.StatusBadRequest)
		return
	}

	investment, payments, err := h.Service.GetWithPayments(r.Context(), investmentID)
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(struct {
		Investment models.Investment `json:"investment"`
		Payments   []models.Payment  `json:"payments"`
	}{Investment: investment, Payments: payments})
}

func (h *InvestmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	investmentID := intParam(r, "id")
	if investmentID == 0 {
		http.Error(w, "Invalid investment id", http.StatusBadRequest)
		return
	}

	var req struct {
		ActualReturn float64 `json:"actual_return"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	investment, err := h.Service.Complete(r.Context(), userID, investmentID, req.ActualReturn)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(investment)
}

func (h *InvestmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	investmentID := intParam(r, "id")
	if investmentID == 0 {
		http.Error(w, "Invalid investment id", http.StatusBadRequest)
		return
	}

	investment, err := h.Service.Cancel(r.Context(), userID, investmentID)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(investment)
}
