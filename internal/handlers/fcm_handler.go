package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
)

// FCMHandler manages the device tokens push notifications are sent to.
type FCMHandler struct {
	DB *sql.DB
}

func (h *FCMHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}

	query := `
        INSERT INTO fcm_tokens (user_id, token)
        VALUES (?, ?)
        ON DUPLICATE KEY UPDATE user_id = VALUES(user_id)`
	if _, err := h.DB.ExecContext(r.Context(), query, userID, req.Token); err != nil {
		http.Error(w, "Failed to save token", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *FCMHandler) DeleteToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token := getParam(r, "token")
	if token == "" {
		http.Error(w, "Invalid token", http.StatusBadRequest)
		return
	}

	query := `DELETE FROM fcm_tokens WHERE token = ? AND user_id = ?`
	if _, err := h.DB.ExecContext(r.Context(), query, token, userID); err != nil {
		http.Error(w, "Failed to delete token", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
