package util

import (
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"yanalysis/model"
)

var easternLocation = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// Layouts tried in order when parsing a series timestamp. Zone-less values are
// read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
}

// GetChartData turns a historical series into labels plus a close and a
// volume dataset sharing the label axis. It returns nil for a nil series.
func GetChartData(historicalPrices *model.HistoricalPrices, ticker string) *model.ChartData {
	if historicalPrices == nil {
		return nil
	}

	period := historicalPrices.Period
	labels := make([]string, 0, len(historicalPrices.Data))
	closeData := make([]float64, 0, len(historicalPrices.Data))
	volumeData := make([]float64, 0, len(historicalPrices.Data))

	for _, price := range historicalPrices.Data {
		switch {
		case price.Date != "":
			labels = append(labels, FormatChartLabel(string(price.Date), period))
		case price.Datetime != "":
			labels = append(labels, FormatChartLabel(string(price.Datetime), period))
		default:
			labels = append(labels, "")
		}
		closeData = append(closeData, price.Close)
		volumeData = append(volumeData, price.Volume)
	}

	symbol := strings.ToUpper(ticker)
	return &model.ChartData{
		Labels: labels,
		Datasets: []model.Dataset{
			{
				Label:       symbol + " Close Prices",
				Data:        closeData,
				Fill:        false,
				BorderColor: "rgba(153,102,255,1)",
				Tension:     0.1,
				YAxisID:     "y",
			},
			{
				Label:       symbol + " Volume",
				Data:        volumeData,
				Fill:        false,
				BorderColor: "rgba(255,206,86,1)",
				Tension:     0.1,
				YAxisID:     "y1",
			},
		},
		Period: period,
	}
}

// FormatChartLabel renders a timestamp in US/Eastern with the en-GB style
// granularity of the period. Unparseable input yields "".
func FormatChartLabel(value string, period model.Period) string {
	t, ok := ParseTimestamp(value)
	if !ok {
		return ""
	}
	t = t.In(easternLocation)

	var label string
	switch period {
	case model.Period1d:
		label = t.Format("15:04")
	case model.Period5d:
		label = t.Format("02, 15:04")
	case model.Period1mo:
		label = t.Format("02 Jan")
	case model.Period1y:
		label = t.Format("02 Jan 2006")
	default:
		label = t.Format("Jan 2006")
	}
	// en-GB abbreviates September as "Sept".
	return strings.Replace(label, "Sep", "Sept", 1)
}

// ParseTimestamp accepts the string layouts the backend emits and epoch
// milliseconds.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
