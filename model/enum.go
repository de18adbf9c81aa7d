package model

type Period string

// Simple constants with direct string values
const (
	Period1d  Period = "1d"
	Period5d  Period = "5d"
	Period1mo Period = "1mo"
	Period3mo Period = "3mo"
	Period6mo Period = "6mo"
	Period1y  Period = "1y"
	Period2y  Period = "2y"
	Period5y  Period = "5y"
	Period10y Period = "10y"
	PeriodYtd Period = "ytd"
	PeriodMax Period = "max"
)

// ChartPeriods are the frames offered by the historical chart.
var ChartPeriods = []Period{Period1d, Period5d, Period1mo, Period6mo, Period1y, Period5y, Period10y}

// Intervals accepted by the technical analysis endpoints.
var Intervals = []string{"1m", "5m", "15m", "30m", "1h", "2h", "4h", "1d", "1W", "1M"}

type InsiderType string

const (
	InsiderAll  InsiderType = "all"
	InsiderBuy  InsiderType = "buy"
	InsiderSell InsiderType = "sell"
)
