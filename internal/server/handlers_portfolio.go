package server

import (
	"net/http"
	"time"

	"github.com/daniele21/portfolio-pilot/internal/models"
)

// handlePortfolioList handles GET /api/portfolios.
func (s *Server) handlePortfolioList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	names, err := s.app.Storage.Transactions().ListPortfolios(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"portfolios": names})
}

// handlePortfolioDelete handles DELETE /api/portfolio/{name}.
func (s *Server) handlePortfolioDelete(w http.ResponseWriter, r *http.Request, portfolio string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	if err := s.app.Storage.Transactions().DeletePortfolio(r.Context(), portfolio); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "deleted",
		"portfolio": portfolio,
	})
}

// handlePortfolioPerformance handles GET /api/portfolio/{name}/performance.
func (s *Server) handlePortfolioPerformance(w http.ResponseWriter, r *http.Request, portfolio string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	perf, err := s.app.PortfolioService.PortfolioPerformance(r.Context(), portfolio)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, perf)
}

// handlePerformanceChart handles GET /api/portfolio/{name}/performance/chart.
func (s *Server) handlePerformanceChart(w http.ResponseWriter, r *http.Request, portfolio string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	png, err := s.app.PortfolioService.PerformanceChart(r.Context(), portfolio)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleStatus handles GET /api/portfolio/{name}/status: the saved status,
// computed live when nothing is stored.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, portfolio string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	status, err := s.app.PortfolioService.Status(r.Context(), portfolio)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, status)
}

// handleStatusView handles GET /api/portfolio/{name}/status/view: the saved
// status only, 404 when none was stored.
func (s *Server) handleStatusView(w http.ResponseWriter, r *http.Request, portfolio string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	status, err := s.app.Storage.Transactions().GetPortfolioStatus(r.Context(), portfolio)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if status == nil {
		WriteError(w, http.StatusNotFound, "No saved status for this portfolio")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"portfolio":    portfolio,
		"status":       status,
		"last_updated": status.LastUpdated,
	})
}

// handleStatusLive handles GET /api/portfolio/{name}/status/live: computes the
// current status from live quotes and persists it.
func (s *Server) handleStatusLive(w http.ResponseWriter, r *http.Request, portfolio string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	s.computeAndSaveStatus(w, r, portfolio)
}

// handleStatusSave handles POST /api/portfolio/{name}/status/save.
func (s *Server) handleStatusSave(w http.ResponseWriter, r *http.Request, portfolio string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	s.computeAndSaveStatus(w, r, portfolio)
}

func (s *Server) computeAndSaveStatus(w http.ResponseWriter, r *http.Request, portfolio string) {
	ctx := r.Context()

	status, err := s.app.PortfolioService.LiveStatus(ctx, portfolio)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(status.Holdings) == 0 {
		WriteError(w, http.StatusNotFound, "No transactions found for this portfolio")
		return
	}

	if err := s.app.Storage.Transactions().SavePortfolioStatus(ctx, status); err != nil {
		s.logger.Warn().Err(err).Str("portfolio", portfolio).Msg("Could not persist portfolio status")
	}
	WriteJSON(w, http.StatusOK, status)
}

// handleKPIs handles GET /api/portfolio/{name}/kpis.
func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request, portfolio string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	kpis, err := s.app.PortfolioService.KPIs(r.Context(), portfolio)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, kpis)
}

// handleReturns handles GET /api/portfolio/{name}/returns. With a since=DATE
// query parameter a single summary from that date is returned instead of the
// named-period set.
func (s *Server) handleReturns(w http.ResponseWriter, r *http.Request, portfolio string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ctx := r.Context()

	if since := r.URL.Query().Get("since"); since != "" {
		date, err := time.Parse(models.DateFormat, since)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "since must be YYYY-MM-DD")
			return
		}
		summary, err := s.app.PortfolioService.ReturnsSince(ctx, portfolio, date)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, summary)
		return
	}

	set, err := s.app.PortfolioService.PeriodReturns(ctx, portfolio)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, set)
}

// handleReturnKPIs handles GET /api/portfolio/{name}/kpis/returns: the
// per-period portfolio percentages flattened for dashboard cards.
func (s *Server) handleReturnKPIs(w http.ResponseWriter, r *http.Request, portfolio string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	set, err := s.app.PortfolioService.PeriodReturns(r.Context(), portfolio)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]interface{}{}
	addPeriod := func(name string, summary *models.ReturnsSummary) {
		var pct *float64
		if summary != nil && summary.Portfolio != nil {
			v := summary.Portfolio.ReturnPct
			pct = &v
		}
		resp[name+"_return"] = pct
		if summary != nil {
			resp[name+"_ticker_returns"] = summary.Tickers
		} else {
			resp[name+"_ticker_returns"] = nil
		}
	}
	addPeriod("yesterday", set.Yesterday)
	addPeriod("three_days", set.ThreeDays)
	addPeriod("weekly", set.Weekly)
	addPeriod("monthly", set.Monthly)
	addPeriod("three_month", set.ThreeMonth)
	addPeriod("ytd", set.YTD)
	addPeriod("one_year", set.OneYear)

	WriteJSON(w, http.StatusOK, resp)
}

// handleAllocation handles GET /api/portfolio/{name}/allocation?grouping=...
func (s *Server) handleAllocation(w http.ResponseWriter, r *http.Request, portfolio string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ctx := r.Context()

	grouping := r.URL.Query().Get("grouping")
	if grouping == "" {
		grouping = "overall"
	}

	var data interface{}
	var err error
	switch grouping {
	case "quoteType":
		data, err = s.app.PortfolioService.AllocationByQuoteType(ctx, portfolio)
	case "overall":
		data, err = s.app.PortfolioService.OverallAllocation(ctx, portfolio)
	default:
		WriteError(w, http.StatusBadRequest, "grouping must be 'overall' or 'quoteType'")
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"grouping":   grouping,
		"allocation": data,
	})
}

// handleVolatility handles GET /api/portfolio/{name}/volatility.
func (s *Server) handleVolatility(w http.ResponseWriter, r *http.Request, portfolio string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	vol, err := s.app.PortfolioService.PortfolioVolatility(r.Context(), portfolio)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"volatility": vol})
}

// handleVolatility1D handles GET /api/portfolio/{name}/volatility/1d.
func (s *Server) handleVolatility1D(w http.ResponseWriter, r *http.Request, portfolio string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	series, err := s.app.PortfolioService.PortfolioVolatility1D(r.Context(), portfolio)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if series == nil {
		series = []float64{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"volatility_1d": series})
}

// handleTickerVolatility handles GET /api/portfolio/{name}/tickers/volatility.
func (s *Server) handleTickerVolatility(w http.ResponseWriter, r *http.Request, portfolio string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	result, err := s.app.PortfolioService.TickerVolatility(r.Context(), portfolio)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"tickers_volatility": result})
}

// handleTickerVolatility1D handles GET /api/portfolio/{name}/tickers/volatility/1d.
func (s *Server) handleTickerVolatility1D(w http.ResponseWriter, r *http.Request, portfolio string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	result, err := s.app.PortfolioService.TickerVolatility1D(r.Context(), portfolio)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"tickers_volatility_1d": result})
}
