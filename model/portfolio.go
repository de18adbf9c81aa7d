package model

type RequiredRecommendations struct {
	Ind1    bool `json:"ind1" mapstructure:"ind1"`
	Ma1     bool `json:"ma1" mapstructure:"ma1"`
	Osc1    bool `json:"osc1" mapstructure:"osc1"`
	Ind2    bool `json:"ind2" mapstructure:"ind2"`
	Ma2     bool `json:"ma2" mapstructure:"ma2"`
	Osc2    bool `json:"osc2" mapstructure:"osc2"`
	Analyst bool `json:"analyst" mapstructure:"analyst"`
}

// ScreenCriteria is the body of a build_portfolio request.
type ScreenCriteria struct {
	SelectedUniverse        string                  `json:"selectedUniverse" mapstructure:"selectedUniverse"`
	PortfolioInterval1      string                  `json:"portfolioInterval1" mapstructure:"portfolioInterval1"`
	PortfolioInterval2      string                  `json:"portfolioInterval2" mapstructure:"portfolioInterval2"`
	RequiredRecommendations RequiredRecommendations `json:"requiredRecommendations" mapstructure:"requiredRecommendations"`
	SelectedSectors         []string                `json:"selectedSectors" mapstructure:"selectedSectors"`
	SelectedMarketCaps      []string                `json:"selectedMarketCaps" mapstructure:"selectedMarketCaps"`
	Rsi1Below               float64                 `json:"rsi1Below" mapstructure:"rsi1Below"`
	Rsi2Below               float64                 `json:"rsi2Below" mapstructure:"rsi2Below"`
}

var SectorOptions = []string{
	"Technology", "Healthcare", "Financial Services", "Consumer Cyclical", "Consumer Defensive",
	"Industrials", "Utilities", "Basic Materials", "Real Estate", "Communication Services", "Energy",
}

var MarketCapOptions = []string{"Micro", "Small", "Mid", "Big", "Mega"}

// DefaultScreenCriteria mirrors the initial state of the portfolio form.
func DefaultScreenCriteria(universe string) ScreenCriteria {
	return ScreenCriteria{
		SelectedUniverse:   universe,
		PortfolioInterval1: "15m",
		PortfolioInterval2: "1d",
		RequiredRecommendations: RequiredRecommendations{
			Ind1: true, Ma1: true, Osc1: true,
			Ind2: true, Ma2: true, Osc2: true,
		},
		SelectedSectors:    append([]string(nil), SectorOptions...),
		SelectedMarketCaps: append([]string(nil), MarketCapOptions...),
		Rsi1Below:          100,
		Rsi2Below:          100,
	}
}

type PortfolioTicker struct {
	Ticker                string  `json:"ticker"`
	Exchange              string  `json:"exchange"`
	TaInd1Recommendation  string  `json:"ta_ind1_recommendation"`
	TaMa1Recommendation   string  `json:"ta_ma1_recommendation"`
	TaOsc1Recommendation  string  `json:"ta_osc1_recommendation"`
	TaRsi1                float64 `json:"ta_rsi1"`
	TaInd2Recommendation  string  `json:"ta_ind2_recommendation"`
	TaMa2Recommendation   string  `json:"ta_ma2_recommendation"`
	TaOsc2Recommendation  string  `json:"ta_osc2_recommendation"`
	TaRsi2                float64 `json:"ta_rsi2"`
	AnalystRecommendation string  `json:"analyst_recommendation"`
}

// Portfolio is the result of a server-side screen.
type Portfolio struct {
	Interval1 string            `json:"interval1"`
	Interval2 string            `json:"interval2"`
	Tickers   []PortfolioTicker `json:"tickers"`
}
