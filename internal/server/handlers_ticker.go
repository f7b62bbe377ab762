package server

import (
	"net/http"
	"strings"

	"github.com/daniele21/portfolio-pilot/internal/models"
)

// handleTickerGet handles GET /api/ticker/{symbol}. Stored data is refreshed
// from the external source first unless update=false is passed; stale data is
// always refreshed.
func (s *Server) handleTickerGet(w http.ResponseWriter, r *http.Request, symbol string) {
	ctx := r.Context()
	symbol = strings.ToUpper(symbol)

	update := true
	if v := r.URL.Query().Get("update"); v != "" {
		update = strings.ToLower(v) == "true"
	}

	if err := s.app.PortfolioService.RefreshTicker(ctx, symbol, update); err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	data, err := s.app.Storage.MarketData().GetTickerData(ctx, symbol)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if data == nil {
		WriteError(w, http.StatusNotFound, "Could not retrieve data for ticker "+symbol)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"source": "db",
		"ticker": symbol,
		"data": map[string]interface{}{
			"info":    data.Info,
			"history": data.History,
		},
	})
}

// tickerSaveRequest is the body of POST /api/ticker/{symbol}.
type tickerSaveRequest struct {
	Info    *models.TickerInfo  `json:"info"`
	History []models.PricePoint `json:"history"`
}

// handleTickerSave handles POST /api/ticker/{symbol}: stores externally
// sourced quote metadata and history directly.
func (s *Server) handleTickerSave(w http.ResponseWriter, r *http.Request, symbol string) {
	symbol = strings.ToUpper(symbol)

	var req tickerSaveRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Info == nil || len(req.History) == 0 {
		WriteError(w, http.StatusBadRequest, "Both info and history fields are required")
		return
	}

	data := &models.TickerData{
		Ticker:  symbol,
		Info:    *req.Info,
		History: req.History,
	}
	data.Info.Ticker = symbol
	data.SortHistory()

	if err := s.app.Storage.MarketData().SaveTickerData(r.Context(), data); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "saved",
		"ticker": symbol,
	})
}

// handleTickerPerformance handles GET /api/portfolio/{name}/ticker/{ticker}/performance.
func (s *Server) handleTickerPerformance(w http.ResponseWriter, r *http.Request, portfolio, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	perf, err := s.app.PortfolioService.TickerPerformance(r.Context(), portfolio, ticker, r.URL.Query().Get("start_date"))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, perf)
}

// handleMultiTickerPerformance handles GET /api/portfolio/{name}/tickers/performance?tickers=A,B.
func (s *Server) handleMultiTickerPerformance(w http.ResponseWriter, r *http.Request, portfolio string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	tickers := splitList(r.URL.Query().Get("tickers"))
	if len(tickers) == 0 {
		WriteError(w, http.StatusBadRequest, "tickers query parameter is required")
		return
	}

	perf, err := s.app.PortfolioService.MultiTickerPerformance(r.Context(), portfolio, tickers, r.URL.Query().Get("start_date"))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, perf)
}

// handleBenchmarkPerformance handles GET /api/benchmark/{ticker}/performance.
func (s *Server) handleBenchmarkPerformance(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	perf, err := s.app.PortfolioService.BenchmarkPerformance(r.Context(), ticker)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, perf)
}
