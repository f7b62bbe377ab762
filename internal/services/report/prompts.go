package report

import (
	"encoding/json"
	"fmt"
	"strings"
)

const portfolioPromptTemplate = `You are a financial analyst assistant. Given the following data for the portfolio '%s':

Portfolio status: %s
Recent portfolio returns: %s

First, provide a rapid overview for each ticker in the portfolio:
- Ticker
- Momentum/News: the timeliest news items whose directional sentiment and trading-volume response suggest a potential price momentum
- Momentum Sentiment: positive, negative, neutral
- What to Evaluate: bullets of the potential trade-through impact

Then provide a weight check grouped by macro-class (ETF, Bond, Equity, Crypto, etc.) with value, percent of portfolio, suggested actions, rationale, and sentiment.

Then generate a detailed report for the entire portfolio.

Format your response as a valid JSON object as follows:
{
  "overview": [
    {"ticker": string, "momentum_news": string, "momentum_sentiment": string, "what_to_evaluate": string}
  ],
  "weight_check": [
    {"macro_class": string, "value": float, "percent_on_portfolio": float, "suggested_actions": string, "rationale": string, "sentiment": string}
  ],
  "portfolio_report": {
    "portfolio_overview": string,
    "key_strengths": [{"strength": string, "description": string}],
    "diversification_analysis": [{"diversification": string, "description": string, "attention": string}],
    "main_risks": [{"risk": string, "description": string, "attention": string}],
    "notable_events": [{"event": string, "description": string, "date": string}],
    "final_evaluation": {
      "score": float,
      "evaluation_label": "Excellent[85-100]/Acceptable[70-84]/Caution[55-69]/Critical[0-54]",
      "evaluation_description": string,
      "alert": string,
      "recommendations": [{"recommendation": string, "rationale": string, "timing": string, "priority": string}]
    }
  }
}

IMPORTANT: Use Markdown bold (**text**) and italic (*text*) to highlight key numbers and terms where appropriate. Generate just the JSON object without any additional text.`

const tickerPromptTemplate = `You are a financial analyst assistant. Given the following data for the ticker %s:

Holding: %s
Weight in portfolio: %.2f%%
Recent %s returns: %s
Portfolio status: %s
Ticker info: %s

Generate a detailed report for %s as a valid JSON object with these sections:
{
  "fundamental_analysis": {
    "revenue_and_ebitda": string,
    "profitability_and_margins": string,
    "balance_sheet_strength": string,
    "cash_flow_analysis": string,
    "valuation_metrics": string,
    "growth_drivers": string,
    "capital_allocation": string,
    "risk_profile": string
  },
  "analysts_opinion": {"consensus_rating": string, "target_price": float, "analyst_sentiment": string},
  "potential_benefits": [{"benefit": string, "description": string}],
  "potential_risks": [{"risk": string, "description": string, "attention": "high/medium/low"}],
  "sentiment_analysis": {"overall_sentiment": "positive/negative/neutral", "recent_news": string},
  "key_events": [{"event": string, "description": string, "date": string}],
  "valuation_summary": {
    "score": float,
    "trend": "Bullish/Bearish/Neutral",
    "explanation": string,
    "top3_pros": [{"pro": string, "description": string}],
    "top3_cons": [{"con": string, "description": string}]
  },
  "recommendations": [
    {"action": "buy/sell/hold", "trading_strategy": string, "trade_quantity": float, "rationale": string, "timing": string, "priority": "high/medium/low"}
  ]
}

IMPORTANT: Use Markdown bold (**text**) for all key numbers, ticker symbols, and section headers. Generate just the JSON object without any additional text or explanation.`

const multiTickerPromptTemplate = `You are a financial analyst assistant. Given the following data for multiple tickers in a portfolio:

Portfolio status: %s

Tickers data:
%s

For each ticker, generate a detailed report with the following sections:
1. Fundamental analysis
2. Potential benefits and risks
3. Valuation summary
4. Analysts rating
5. Key events that can affect its performance
6. Final summary

Format your response as a JSON object mapping each ticker symbol to its report, e.g.:
{
  "AAPL": {
    "fundamental_analysis": "...",
    "benefits": "...",
    "risks": "...",
    "valuation_summary": "...",
    "analysts_rating": "...",
    "key_events": "...",
    "final_summary": "..."
  }
}

IMPORTANT: Use Markdown bold (**text**) for all key numbers, ticker symbols, and section headers. Generate just the JSON object.`

// promptJSON renders a prompt input as compact JSON. Values that cannot be
// marshalled degrade to "null" rather than failing the report.
func promptJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

// decodeReportSections extracts the JSON object from model output, tolerating
// markdown fences and surrounding prose.
func decodeReportSections(raw string) (map[string]any, error) {
	cleaned := strings.Trim(raw, "` \n")
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object found in model output")
	}

	var sections map[string]any
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &sections); err != nil {
		return nil, fmt.Errorf("could not decode report from model output: %w", err)
	}
	return sections, nil
}
