package model

import (
	"encoding/json"
	"strings"
)

// SelectionRequest is a partial update of the Selection. Absent fields keep
// their current value; an explicit "" clears the ticker.
type SelectionRequest struct {
	Ticker    *string `json:"ticker"`
	Exchange  *string `json:"exchange"`
	Screener  *string `json:"screener"`
	IntervalA *string `json:"intervalA"`
	IntervalB *string `json:"intervalB"`
	Analyze   bool    `json:"analyze"`
}

// Apply merges the request into sel.
func (r *SelectionRequest) Apply(sel Selection) Selection {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&sel.Ticker, r.Ticker)
	set(&sel.Exchange, r.Exchange)
	set(&sel.Screener, r.Screener)
	set(&sel.IntervalA, r.IntervalA)
	set(&sel.IntervalB, r.IntervalB)
	return sel
}

type UniverseRequest struct {
	UniverseID string `json:"universeId"`
}

type ChatRequest struct {
	Message string         `json:"message"`
	Context map[string]any `json:"context"`
}

type ChatReply struct {
	Response string `json:"response"`
}

type ChatInput struct {
	Body struct {
		Message string `json:"message" doc:"User message" minLength:"1"`
	}
}

type MarketBoard struct {
	FearAndGreed  json.RawMessage `json:"fearAndGreed,omitempty"`
	NasdaqStatus  json.RawMessage `json:"nasdaqStatus,omitempty"`
	SpyVolatility *Volatility     `json:"spyVolatility,omitempty"`
	MarketAI      json.RawMessage `json:"marketAI,omitempty"`
	UpdatedAt     int64           `json:"updatedAt"`
	Errors        []string        `json:"errors,omitempty"`
}

type RotatorQuote struct {
	Ticker            string `json:"ticker"`
	Price             string `json:"price"`
	Change            string `json:"change"`
	ChangesPercentage string `json:"changesPercentage"`
	PreviousClose     string `json:"previousClose"`
}
