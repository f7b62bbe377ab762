package server

import (
	"net/http"
)

// reportRequest is the optional body of the report endpoints.
type reportRequest struct {
	Force   bool     `json:"force,omitempty"`
	Tickers []string `json:"tickers,omitempty"`
}

// decodeReportRequest reads the optional JSON body and force query parameter.
func decodeReportRequest(w http.ResponseWriter, r *http.Request) (*reportRequest, bool) {
	req := &reportRequest{}
	if r.Method == http.MethodPost && r.Body != nil && r.ContentLength > 0 {
		if !DecodeJSON(w, r, req) {
			return nil, false
		}
	}
	if boolParam(r, "force") {
		req.Force = true
	}
	return req, true
}

// handlePortfolioReport handles GET/POST /api/portfolio/{name}/report.
func (s *Server) handlePortfolioReport(w http.ResponseWriter, r *http.Request, portfolio string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	req, ok := decodeReportRequest(w, r)
	if !ok {
		return
	}

	report, err := s.app.ReportService.PortfolioReport(r.Context(), portfolio, req.Force)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"portfolio": portfolio,
		"report":    report.Sections,
		"cost":      report.Cost,
	})
}

// handleTickerReport handles GET/POST /api/portfolio/{name}/ticker/{ticker}/report.
func (s *Server) handleTickerReport(w http.ResponseWriter, r *http.Request, portfolio, ticker string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	req, ok := decodeReportRequest(w, r)
	if !ok {
		return
	}

	report, err := s.app.ReportService.TickerReport(r.Context(), portfolio, ticker, req.Force)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ticker": report.Ticker,
		"report": report.Sections,
		"cost":   report.Cost,
	})
}

// handleMultiTickerReport handles POST /api/portfolio/{name}/tickers/report.
func (s *Server) handleMultiTickerReport(w http.ResponseWriter, r *http.Request, portfolio string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req reportRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if len(req.Tickers) < 2 {
		WriteError(w, http.StatusBadRequest, "At least two tickers must be provided")
		return
	}

	report, err := s.app.ReportService.MultiTickerReport(r.Context(), portfolio, req.Tickers)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"portfolio": portfolio,
		"tickers":   req.Tickers,
		"report":    report.Sections,
		"cost":      report.Cost,
	})
}
