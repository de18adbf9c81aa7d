package validator

import (
	"fmt"
	"sort"
	"strings"

	"yanalysis/customerrors"
	"yanalysis/model"

	"github.com/Oudwins/zog"
)

var SelectionShape = zog.Shape{
	"Ticker": zog.String().Required(),
}

var CriteriaShape = zog.Shape{
	"SelectedUniverse":   zog.String().Required(),
	"PortfolioInterval1": zog.String().Required().OneOf(model.Intervals),
	"PortfolioInterval2": zog.String().Required().OneOf(model.Intervals),
	"Rsi1Below":          zog.Float64().GTE(0).LTE(100),
	"Rsi2Below":          zog.Float64().GTE(0).LTE(100),
}

var ChatShape = zog.Shape{
	"Message": zog.String().Required(),
}

var selectionSchema = zog.Struct(SelectionShape)
var criteriaSchema = zog.Struct(CriteriaShape)
var chatSchema = zog.Struct(ChatShape)

// ValidateSelection trims the ticker in place and rejects a blank one.
func ValidateSelection(sel *model.Selection) error {
	sel.Ticker = strings.TrimSpace(sel.Ticker)
	if issues := selectionSchema.Validate(sel); len(issues) > 0 {
		return customerrors.ErrTickerRequired
	}
	return nil
}

func ValidateCriteria(c *model.ScreenCriteria) error {
	c.SelectedUniverse = strings.TrimSpace(c.SelectedUniverse)
	if c.SelectedUniverse == "" {
		return customerrors.ErrUniverseRequired
	}
	issues := criteriaSchema.Validate(c)
	if len(issues) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(issues))
	for field, list := range issues {
		if strings.HasPrefix(field, "$") {
			continue
		}
		for _, issue := range list {
			msgs = append(msgs, field+": "+issue.Message)
		}
	}
	sort.Strings(msgs)
	return fmt.Errorf("%w: %s", customerrors.ErrInvalidCriteria, strings.Join(msgs, "; "))
}

func ValidateChat(req *model.ChatRequest) error {
	req.Message = strings.TrimSpace(req.Message)
	if issues := chatSchema.Validate(req); len(issues) > 0 {
		return customerrors.ErrEmptyMessage
	}
	return nil
}

// ValidatePeriod accepts the chart periods the backend understands.
func ValidatePeriod(p model.Period) error {
	for _, known := range model.ChartPeriods {
		if p == known {
			return nil
		}
	}
	switch p {
	case model.Period3mo, model.Period2y, model.PeriodYtd, model.PeriodMax:
		return nil
	}
	return fmt.Errorf("%w: %q", customerrors.ErrInvalidPeriod, p)
}
