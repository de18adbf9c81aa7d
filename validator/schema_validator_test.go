package validator

import (
	"errors"
	"testing"

	"yanalysis/customerrors"
	"yanalysis/model"
)

func TestValidateSelection(t *testing.T) {
	tests := []struct {
		ticker  string
		wantErr bool
		want    string
	}{
		{"SPY", false, "SPY"},
		{"  qqq  ", false, "qqq"},
		{"", true, ""},
		{"   ", true, ""},
	}
	for _, tt := range tests {
		sel := model.Selection{Ticker: tt.ticker}
		err := ValidateSelection(&sel)
		if tt.wantErr {
			if !errors.Is(err, customerrors.ErrTickerRequired) {
				t.Errorf("ValidateSelection(%q) error = %v, want ErrTickerRequired", tt.ticker, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ValidateSelection(%q) unexpected error: %v", tt.ticker, err)
		}
		if sel.Ticker != tt.want {
			t.Errorf("ticker = %q, want %q", sel.Ticker, tt.want)
		}
	}
}

func TestValidateCriteria(t *testing.T) {
	c := model.DefaultScreenCriteria("3")
	if err := ValidateCriteria(&c); err != nil {
		t.Fatalf("default criteria rejected: %v", err)
	}

	noUniverse := model.DefaultScreenCriteria("")
	if err := ValidateCriteria(&noUniverse); !errors.Is(err, customerrors.ErrUniverseRequired) {
		t.Errorf("error = %v, want ErrUniverseRequired", err)
	}

	badRsi := model.DefaultScreenCriteria("3")
	badRsi.Rsi1Below = 150
	if err := ValidateCriteria(&badRsi); !errors.Is(err, customerrors.ErrInvalidCriteria) {
		t.Errorf("error = %v, want ErrInvalidCriteria", err)
	}

	badInterval := model.DefaultScreenCriteria("3")
	badInterval.PortfolioInterval2 = "7m"
	if err := ValidateCriteria(&badInterval); !errors.Is(err, customerrors.ErrInvalidCriteria) {
		t.Errorf("error = %v, want ErrInvalidCriteria", err)
	}
}

func TestValidateChat(t *testing.T) {
	req := model.ChatRequest{Message: "   "}
	if err := ValidateChat(&req); !errors.Is(err, customerrors.ErrEmptyMessage) {
		t.Errorf("error = %v, want ErrEmptyMessage", err)
	}
	req.Message = " how is SPY? "
	if err := ValidateChat(&req); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if req.Message != "how is SPY?" {
		t.Errorf("message not trimmed: %q", req.Message)
	}
}

func TestValidatePeriod(t *testing.T) {
	for _, p := range []model.Period{model.Period1d, model.Period10y, model.PeriodMax} {
		if err := ValidatePeriod(p); err != nil {
			t.Errorf("ValidatePeriod(%q) = %v", p, err)
		}
	}
	if err := ValidatePeriod("7d"); !errors.Is(err, customerrors.ErrInvalidPeriod) {
		t.Errorf("ValidatePeriod(7d) = %v, want ErrInvalidPeriod", err)
	}
}
