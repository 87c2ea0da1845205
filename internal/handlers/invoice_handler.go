package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"finvoiceBack/internal/models"
	"finvoiceBack/internal/services"
)

type InvoiceHandler struct {
	Service *services.InvoiceService
}

func (h *InvoiceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	invoiceID := intParam(r, "id")
	if invoiceID == 0 {
		http.Error(w, "Invalid invoice id", http.StatusBadRequest)
		return
	}

	invoice, err := h.Service.GetByID(r.Context(), invoiceID)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(invoice)
}

func (h *InvoiceHandler) ListByCompany(w http.ResponseWriter, r *http.Request) {
	companyID := intParam(r, "company_id")
	if companyID == 0 {
		http.Error(w, "Invalid company id", http.StatusBadRequest)
		return
	}
	status := strings.TrimSpace(r.URL.Query().Get("status"))

	invoices, err := h.Service.ListByCompany(r.Context(), companyID, status)
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(struct {
		Invoices []models.Invoice `json:"invoices"`
	}{Invoices: invoices})
}

// AttachDocument accepts a multipart upload under the "document" field and
// stores it in S3.
func (h *InvoiceHandler) AttachDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	invoiceID := intParam(r, "id")
	if invoiceID == 0 {
		http.Error(w, "Invalid invoice id", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("document")
	if err != nil {
		http.Error(w, "document file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read file", http.StatusBadRequest)
		return
	}

	url, err := h.Service.AttachDocument(r.Context(), userID, invoiceID, content, header.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(struct {
		DocumentURL string `json:"document_url"`
	}{DocumentURL: url})
}
