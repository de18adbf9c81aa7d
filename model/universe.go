package model

import (
	"encoding/json"
	"fmt"
)

type UniverseTicker struct {
	Ticker   string `json:"ticker"`
	Exchange string `json:"exchange"`
}

// Universe as stored by the backend. Tickers is a JSON document encoded as a
// string: {"tickers":[{"ticker":"AAPL","exchange":"NASDAQ"}]}.
type Universe struct {
	ID      json.Number `json:"id"`
	Name    string      `json:"name"`
	Tickers string      `json:"tickers"`
}

// ParseTickers decodes the embedded tickers document.
func (u *Universe) ParseTickers() ([]UniverseTicker, error) {
	if u.Tickers == "" {
		return []UniverseTicker{}, nil
	}
	var doc struct {
		Tickers []UniverseTicker `json:"tickers"`
	}
	if err := json.Unmarshal([]byte(u.Tickers), &doc); err != nil {
		return nil, fmt.Errorf("universe %s tickers decode error: %w", u.ID, err)
	}
	if doc.Tickers == nil {
		return []UniverseTicker{}, nil
	}
	return doc.Tickers, nil
}
