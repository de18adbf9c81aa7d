package util

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"yanalysis/customerrors"
	"yanalysis/model"

	"github.com/xuri/excelize/v2"
)

var portfolioHeader = []string{
	"Ticker", "Exchange",
	"Ind1", "MA1", "Osc1", "RSI1",
	"Ind2", "MA2", "Osc2", "RSI2",
	"Analyst",
}

func portfolioMetadata(p *model.Portfolio) []string {
	return []string{
		"Interval1", p.Interval1,
		"Interval2", p.Interval2,
		"Stocks", strconv.Itoa(len(p.Tickers)),
	}
}

func portfolioRow(t model.PortfolioTicker) []string {
	return []string{
		t.Ticker, t.Exchange,
		t.TaInd1Recommendation, t.TaMa1Recommendation, t.TaOsc1Recommendation, formatFloat(t.TaRsi1),
		t.TaInd2Recommendation, t.TaMa2Recommendation, t.TaOsc2Recommendation, formatFloat(t.TaRsi2),
		t.AnalystRecommendation,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WritePortfolioCSV writes one metadata line, the header, then one line per
// ticker. Fields holding a comma, quote or line break are quoted with inner
// quotes doubled.
func WritePortfolioCSV(w io.Writer, p *model.Portfolio) error {
	if p == nil {
		return customerrors.ErrNoPortfolio
	}
	writer := csv.NewWriter(w)

	if err := writer.Write(portfolioMetadata(p)); err != nil {
		return fmt.Errorf("failed to write CSV metadata: %w", err)
	}
	if err := writer.Write(portfolioHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, t := range p.Tickers {
		if err := writer.Write(portfolioRow(t)); err != nil {
			return fmt.Errorf("error writing csv record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteIndicatorsCSV exports indicators_list with the bar timestamp as the
// first column. Rows and indicator columns are sorted.
func WriteIndicatorsCSV(w io.Writer, ta *model.TechnicalAnalysis) error {
	if ta == nil || len(ta.IndicatorsList) == 0 {
		return customerrors.ErrEmptyIndicators
	}

	timestamps := make([]string, 0, len(ta.IndicatorsList))
	keySet := make(map[string]struct{})
	for ts, indicators := range ta.IndicatorsList {
		timestamps = append(timestamps, ts)
		for k := range indicators {
			keySet[k] = struct{}{}
		}
	}
	sort.Strings(timestamps)

	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	writer := csv.NewWriter(w)
	if err := writer.Write(append([]string{"timestamp"}, keys...)); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, ts := range timestamps {
		record := make([]string, 0, len(keys)+1)
		record = append(record, ts)
		for _, k := range keys {
			record = append(record, formatCell(ta.IndicatorsList[ts][k]))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("error writing csv record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatCell(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case float64:
		return formatFloat(n)
	case string:
		return n
	default:
		return fmt.Sprint(n)
	}
}

// WritePortfolioXLSX writes the same table as WritePortfolioCSV into a
// single-sheet workbook.
func WritePortfolioXLSX(w io.Writer, p *model.Portfolio) error {
	if p == nil {
		return customerrors.ErrNoPortfolio
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Portfolio"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := [][]string{portfolioMetadata(p), portfolioHeader}
	for _, t := range p.Tickers {
		rows = append(rows, portfolioRow(t))
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
