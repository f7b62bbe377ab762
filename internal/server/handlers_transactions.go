package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/daniele21/portfolio-pilot/internal/models"
)

// transactionsRequest is the body of the transaction ingestion endpoints.
// Either a structured transaction list or freeform raw text is accepted; raw
// text goes through the LLM standardizer first.
type transactionsRequest struct {
	Raw          string                `json:"raw,omitempty"`
	Transactions []*models.Transaction `json:"transactions,omitempty"`
	Portfolio    string                `json:"portfolio_name,omitempty"`
}

// handleAddTransactions handles POST /api/transactions/{portfolio}.
func (s *Server) handleAddTransactions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	portfolio := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if portfolio == "" || strings.Contains(portfolio, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	var req transactionsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	s.saveTransactions(w, r, portfolio, &req)
}

// handleStandardizeAndSave handles POST /api/transactions/standardize-and-save.
// The body names the portfolio and carries raw text for the LLM to structure.
func (s *Server) handleStandardizeAndSave(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req transactionsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Portfolio == "" {
		WriteError(w, http.StatusBadRequest, "portfolio_name is required")
		return
	}
	if req.Raw == "" {
		WriteError(w, http.StatusBadRequest, "raw text is required")
		return
	}
	req.Transactions = nil
	s.saveTransactions(w, r, req.Portfolio, &req)
}

func (s *Server) saveTransactions(w http.ResponseWriter, r *http.Request, portfolio string, req *transactionsRequest) {
	ctx := r.Context()
	txs := req.Transactions

	if req.Raw != "" {
		if s.app.LLMClient == nil {
			WriteError(w, http.StatusServiceUnavailable, "Transaction standardization requires a configured LLM client")
			return
		}
		parsed, _, err := s.app.LLMClient.ParseTransactions(ctx, req.Raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		txs = parsed
	}

	if len(txs) == 0 {
		WriteError(w, http.StatusBadRequest, "No transactions provided")
		return
	}

	saved, err := s.app.Storage.Transactions().SaveTransactions(ctx, portfolio, txs)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "saved",
		"count":        len(saved),
		"transactions": saved,
	})
}

// handlePortfolioTransactions handles GET /api/portfolio/{name}/transactions.
func (s *Server) handlePortfolioTransactions(w http.ResponseWriter, r *http.Request, portfolio string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	txs, err := s.app.Storage.Transactions().GetTransactions(r.Context(), portfolio)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"transactions": txs})
}

// handleTransactionDelete handles DELETE /api/portfolio/{name}/transaction/{id}.
func (s *Server) handleTransactionDelete(w http.ResponseWriter, r *http.Request, portfolio, rawID string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := s.app.Storage.Transactions().DeleteTransaction(r.Context(), portfolio, id); err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "deleted",
		"transaction_id": id,
	})
}
