package api

import (
	"encoding/json"
	"net/http"

	"garagerent/internal/auth"
	"garagerent/internal/entities"
	"garagerent/internal/service"
)

type WalletHandler struct {
	Settlement *service.SettlementService
}

func NewWalletHandler(settlement *service.SettlementService) *WalletHandler {
	return &WalletHandler{Settlement: settlement}
}

func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	balance, err := h.Settlement.WalletBalance(r.Context(), userID)
	if err != nil {
		respondError(w, err, "GET", "/wallet")
		return
	}
	respondOK(w, http.StatusOK, entities.BalanceResponse{UserID: userID, Balance: balance}, "GET", "/wallet")
}

func (h *WalletHandler) AddFunds(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req entities.AddFundsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	balance, err := h.Settlement.AddFunds(r.Context(), userID, req.Amount)
	if err != nil {
		respondError(w, err, "POST", "/wallet/deposits")
		return
	}
	respondOK(w, http.StatusOK, entities.BalanceResponse{UserID: userID, Balance: balance}, "POST", "/wallet/deposits")
}

// Transfer moves money out of the caller's own wallet.
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req entities.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Settlement.Transfer(r.Context(), userID, req.ToUserID, req.Amount, req.BookingID); err != nil {
		respondError(w, err, "POST", "/wallet/transfers")
		return
	}
	respondOK(w, http.StatusOK, map[string]string{"status": "transferred"}, "POST", "/wallet/transfers")
}

func (h *WalletHandler) WalletHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	entries, err := h.Settlement.WalletHistory(r.Context(), userID)
	if err != nil {
		respondError(w, err, "GET", "/wallet/transactions")
		return
	}
	resp := make([]entities.LedgerEntryResponse, 0, len(entries))
	for i := range entries {
		resp = append(resp, entities.LedgerEntryToResponse(&entries[i]))
	}
	respondOK(w, http.StatusOK, resp, "GET", "/wallet/transactions")
}

func (h *WalletHandler) GetCredits(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	credits, err := h.Settlement.CreditBalance(r.Context(), userID)
	if err != nil {
		respondError(w, err, "GET", "/credits")
		return
	}
	respondOK(w, http.StatusOK, entities.CreditsResponse{UserID: userID, Credits: credits}, "GET", "/credits")
}

func (h *WalletHandler) AddCredits(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req entities.AddCreditsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	credits, err := h.Settlement.AddCredits(r.Context(), userID, req.Amount)
	if err != nil {
		respondError(w, err, "POST", "/credits")
		return
	}
	respondOK(w, http.StatusOK, entities.CreditsResponse{UserID: userID, Credits: credits}, "POST", "/credits")
}

func (h *WalletHandler) CreditHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	records, err := h.Settlement.CreditHistory(r.Context(), userID)
	if err != nil {
		respondError(w, err, "GET", "/credits/transactions")
		return
	}
	resp := make([]entities.CreditTransactionResponse, 0, len(records))
	for i := range records {
		resp = append(resp, entities.CreditTransactionToResponse(&records[i]))
	}
	respondOK(w, http.StatusOK, resp, "GET", "/credits/transactions")
}
