package model

// EnvConfig holds the dashboard settings. Values come from an optional YAML
// file, then the JSON `config` environment variable, then defaults.
type EnvConfig struct {
	Port        string `json:"port" yaml:"port"`
	Environment string `json:"environment" yaml:"environment"`
	LogLevel    string `json:"logLevel" yaml:"log_level"`

	ApiBaseUrl string `json:"apiBaseUrl" yaml:"api_base_url"`

	DefaultTicker    string `json:"defaultTicker" yaml:"default_ticker"`
	DefaultExchange  string `json:"defaultExchange" yaml:"default_exchange"`
	DefaultScreener  string `json:"defaultScreener" yaml:"default_screener"`
	ShortInterval    string `json:"shortInterval" yaml:"short_interval"`
	LongInterval     string `json:"longInterval" yaml:"long_interval"`
	HistoricalPeriod string `json:"historicalPeriod" yaml:"historical_period"`

	PollIntervalSeconds int `json:"pollIntervalSeconds" yaml:"poll_interval_seconds"`
	SessionTTLMinutes   int `json:"sessionTTLMinutes" yaml:"session_ttl_minutes"`

	AiEnabled      bool     `json:"aiEnabled" yaml:"ai_enabled"`
	EnableRotator  bool     `json:"enableRotator" yaml:"enable_rotator"`
	EnableMarketAI bool     `json:"enableMarketAI" yaml:"enable_market_ai"`
	RotatorTickers []string `json:"rotatorTickers" yaml:"rotator_tickers"`
	MarketCron     string   `json:"marketCron" yaml:"market_cron"`
	RotatorCron    string   `json:"rotatorCron" yaml:"rotator_cron"`

	FrontendUrls []string `json:"frontendUrls" yaml:"frontend_urls"`
	RateLimiter  bool     `json:"rateLimiter" yaml:"rate_limiter"`
}

// ClientConfig is the subset of EnvConfig the browser needs to render its forms.
type ClientConfig struct {
	DefaultTicker   string   `json:"defaultTicker"`
	DefaultExchange string   `json:"defaultExchange"`
	DefaultScreener string   `json:"defaultScreener"`
	ShortInterval   string   `json:"shortInterval"`
	LongInterval    string   `json:"longInterval"`
	AiEnabled       bool     `json:"aiEnabled"`
	EnableRotator   bool     `json:"enableRotator"`
	EnableMarketAI  bool     `json:"enableMarketAI"`
	Periods         []Period `json:"periods"`
	Intervals       []string `json:"intervals"`
}

func (c *EnvConfig) ClientConfig() ClientConfig {
	return ClientConfig{
		DefaultTicker:   c.DefaultTicker,
		DefaultExchange: c.DefaultExchange,
		DefaultScreener: c.DefaultScreener,
		ShortInterval:   c.ShortInterval,
		LongInterval:    c.LongInterval,
		AiEnabled:       c.AiEnabled,
		EnableRotator:   c.EnableRotator,
		EnableMarketAI:  c.EnableMarketAI,
		Periods:         ChartPeriods,
		Intervals:       Intervals,
	}
}
