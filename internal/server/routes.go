package server

import (
	"net/http"
	"strings"

	"github.com/daniele21/portfolio-pilot/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Transactions
	mux.HandleFunc("/api/transactions/standardize-and-save", s.handleStandardizeAndSave)
	mux.HandleFunc("/api/transactions/", s.handleAddTransactions)

	// Tickers (not tied to a portfolio)
	mux.HandleFunc("/api/ticker/", s.routeTicker)
	mux.HandleFunc("/api/benchmark/", s.routeBenchmark)

	// Portfolios
	mux.HandleFunc("/api/portfolios", s.handlePortfolioList)
	mux.HandleFunc("/api/portfolio/", s.routePortfolio)
}

// routePortfolio dispatches /api/portfolio/{name}/* to the appropriate handler.
func (s *Server) routePortfolio(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/portfolio/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "portfolio name is required in path")
		return
	}

	parts := strings.SplitN(path, "/", 2)
	name := parts[0]
	subpath := ""
	if len(parts) > 1 {
		subpath = parts[1]
	}

	switch subpath {
	case "":
		s.handlePortfolioDelete(w, r, name)
	case "performance":
		s.handlePortfolioPerformance(w, r, name)
	case "performance/chart":
		s.handlePerformanceChart(w, r, name)
	case "transactions":
		s.handlePortfolioTransactions(w, r, name)
	case "status":
		s.handleStatus(w, r, name)
	case "status/view":
		s.handleStatusView(w, r, name)
	case "status/live":
		s.handleStatusLive(w, r, name)
	case "status/save":
		s.handleStatusSave(w, r, name)
	case "kpis":
		s.handleKPIs(w, r, name)
	case "kpis/returns":
		s.handleReturnKPIs(w, r, name)
	case "returns":
		s.handleReturns(w, r, name)
	case "allocation":
		s.handleAllocation(w, r, name)
	case "volatility":
		s.handleVolatility(w, r, name)
	case "volatility/1d":
		s.handleVolatility1D(w, r, name)
	case "tickers/volatility":
		s.handleTickerVolatility(w, r, name)
	case "tickers/volatility/1d":
		s.handleTickerVolatility1D(w, r, name)
	case "tickers/performance":
		s.handleMultiTickerPerformance(w, r, name)
	case "tickers/report":
		s.handleMultiTickerReport(w, r, name)
	case "report":
		s.handlePortfolioReport(w, r, name)
	default:
		switch {
		case strings.HasPrefix(subpath, "transaction/"):
			s.handleTransactionDelete(w, r, name, strings.TrimPrefix(subpath, "transaction/"))
		case strings.HasPrefix(subpath, "ticker/") && strings.HasSuffix(subpath, "/performance"):
			ticker := strings.TrimSuffix(strings.TrimPrefix(subpath, "ticker/"), "/performance")
			s.handleTickerPerformance(w, r, name, ticker)
		case strings.HasPrefix(subpath, "ticker/") && strings.HasSuffix(subpath, "/report"):
			ticker := strings.TrimSuffix(strings.TrimPrefix(subpath, "ticker/"), "/report")
			s.handleTickerReport(w, r, name, ticker)
		default:
			WriteError(w, http.StatusNotFound, "Not found")
		}
	}
}

// routeTicker dispatches /api/ticker/{symbol}.
func (s *Server) routeTicker(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimPrefix(r.URL.Path, "/api/ticker/")
	if symbol == "" || strings.Contains(symbol, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleTickerGet(w, r, symbol)
	case http.MethodPost:
		s.handleTickerSave(w, r, symbol)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// routeBenchmark dispatches /api/benchmark/{ticker}/performance.
func (s *Server) routeBenchmark(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/benchmark/")
	ticker := strings.TrimSuffix(path, "/performance")
	if ticker == "" || ticker == path {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	s.handleBenchmarkPerformance(w, r, ticker)
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}
