package gemini

import "fmt"

// Gemini model name constants.
const (
	Gemini25Pro              = "gemini-2.5-pro"
	Gemini25FlashLitePreview = "gemini-2.5-flash-lite-preview-06-17"
	Gemini25Flash            = "gemini-2.5-flash"
	Gemini20Flash            = "gemini-2.0-flash"
	Gemini15Pro              = "gemini-1.5-pro"
	Gemini15Flash            = "gemini-1.5-flash"
	Gemini10Pro              = "gemini-1.0-pro"
)

// modelPricing holds USD rates per one million tokens. A tierLimit of 0 means
// flat pricing; otherwise calls whose input token count exceeds the limit are
// billed at the high-tier rates.
type modelPricing struct {
	tierLimit  int32
	input      float64
	output     float64
	inputHigh  float64
	outputHigh float64
}

var pricingTable = map[string]modelPricing{
	Gemini25Pro:              {tierLimit: 200_000, input: 1.25, inputHigh: 2.50, output: 10.00, outputHigh: 15.00},
	Gemini25FlashLitePreview: {input: 0.10, output: 0.40},
	Gemini25Flash:            {input: 0.30, output: 2.50},
	Gemini20Flash:            {input: 0.10, output: 0.40},
	Gemini15Pro:              {tierLimit: 128_000, input: 1.25, inputHigh: 2.50, output: 5.00, outputHigh: 10.00},
	Gemini15Flash:            {input: 0.35, output: 1.05},
	Gemini10Pro:              {input: 0.125, output: 0.375},
}

// CallCost returns the USD cost of one API call for the given model and token
// counts. Unknown models yield an error so callers can decide how to account
// for them.
func CallCost(model string, inputTokens, outputTokens int32) (float64, error) {
	p, ok := pricingTable[model]
	if !ok {
		return 0, fmt.Errorf("model %q not found in pricing data", model)
	}

	inputPrice, outputPrice := p.input, p.output
	if p.tierLimit > 0 && inputTokens > p.tierLimit {
		inputPrice, outputPrice = p.inputHigh, p.outputHigh
	}

	const perMillion = 1_000_000
	return float64(inputTokens)/perMillion*inputPrice + float64(outputTokens)/perMillion*outputPrice, nil
}
