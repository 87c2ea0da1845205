package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"finvoiceBack/internal/models"
	"finvoiceBack/internal/services"
)

type ProposalHandler struct {
	Service *services.ProposalService
}

func (h *ProposalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.CreateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.InvoiceID == 0 {
		http.Error(w, "invoice_id is required", http.StatusBadRequest)
		return
	}

	proposal, err := h.Service.Create(r.Context(), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(proposal)
}

func (h *ProposalHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	proposalID := intParam(r, "id")
	if proposalID == 0 {
		http.Error(w, "Invalid proposal id", http.StatusBadRequest)
		return
	}

	proposal, err := h.Service.Send(r.Context(), userID, proposalID)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(proposal)
}

func (h *ProposalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	proposalID := intParam(r, "id")
	if proposalID == 0 {
		http.Error(w, "Invalid proposal id", http.StatusBadRequest)
		return
	}

	var req models.RespondRequest
	if err := decodeOptional(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	proposal, investment, err := h.Service.Approve(r.Context(), userID, proposalID, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(struct {
		Proposal   models.InvestmentProposal `json:"proposal"`
		Investment models.Investment         `json:"investment"`
	}{Proposal: proposal, Investment: investment})
}

func (h *ProposalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	proposalID := intParam(r, "id")
	if proposalID == 0 {
		http.Error(w, "Invalid proposal id", http.StatusBadRequest)
		return
	}

	var req models.RespondRequest
	if err := decodeOptional(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	proposal, err := h.Service.Reject(r.Context(), userID, proposalID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(proposal)
}

func (h *ProposalHandler) CounterOffer(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	proposalID := intParam(r, "id")
	if proposalID == 0 {
		http.Error(w, "Invalid proposal id", http.StatusBadRequest)
		return
	}

	var req models.CounterOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	parent, child, err := h.Service.CounterOffer(r.Context(), userID, proposalID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(struct {
		Proposal     models.InvestmentProposal `json:"proposal"`
		CounterOffer models.InvestmentProposal `json:"counter_offer"`
	}{Proposal: parent, CounterOffer: child})
}

func (h *ProposalHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	proposalID := intParam(r, "id")
	if proposalID == 0 {
		http.Error(w, "Invalid proposal id", http.StatusBadRequest)
		return
	}

	proposal, err := h.Service.Withdraw(r.Context(), userID, proposalID)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(proposal)
}

func (h *ProposalHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	proposalID := intParam(r, "id")
	if proposalID == 0 {
		http.Error(w, "Invalid proposal id", http.StatusBadRequest)
		return
	}

	detail, err := h.Service.Detail(r.Context(), proposalID)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(detail)
}

func (h *ProposalHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	proposals, err := h.Service.ListMine(r.Context(), userID, status)
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(struct {
		Proposals []models.InvestmentProposal `json:"proposals"`
	}{Proposals: proposals})
}

func (h *ProposalHandler) ListByInvoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	invoiceID := intParam(r, "invoice_id")
	if invoiceID == 0 {
		http.Error(w, "Invalid invoice id", http.StatusBadRequest)
		return
	}

	proposals, err := h.Service.ListForInvoice(r.Context(), userID, invoiceID)
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(struct {
		Proposals []models.InvestmentProposal `json:"proposals"`
	}{Proposals: proposals})
}
