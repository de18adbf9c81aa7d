package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"yanalysis/model"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "config.yaml"

type SystemConfigs struct {
	Config *model.EnvConfig
}

// LoadConfigs reads the optional YAML file, lets the JSON `config` env var
// override it, then fills defaults.
func LoadConfigs() (*SystemConfigs, error) {
	godotenv.Load()

	var envCfg model.EnvConfig

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &envCfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if rawJson := os.Getenv("config"); rawJson != "" {
		if err := json.Unmarshal([]byte(rawJson), &envCfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	if v := os.Getenv("API_BASE_URL"); v != "" {
		envCfg.ApiBaseUrl = v
	}
	if v := os.Getenv("PORT"); v != "" {
		envCfg.Port = v
	}

	applyDefaults(&envCfg)
	if err := Validate(&envCfg); err != nil {
		return nil, err
	}

	return &SystemConfigs{
		Config: &envCfg,
	}, nil
}

func applyDefaults(c *model.EnvConfig) {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ApiBaseUrl == "" {
		c.ApiBaseUrl = "http://localhost:8000/api/v1"
	}
	if c.DefaultTicker == "" {
		c.DefaultTicker = "SPY"
	}
	if c.DefaultExchange == "" {
		c.DefaultExchange = "AMEX"
	}
	if c.DefaultScreener == "" {
		c.DefaultScreener = "America"
	}
	if c.ShortInterval == "" {
		c.ShortInterval = "15m"
	}
	if c.LongInterval == "" {
		c.LongInterval = "1d"
	}
	if c.HistoricalPeriod == "" {
		c.HistoricalPeriod = string(model.Period10y)
	}
	if c.PollIntervalSeconds <= 0 {
		c.PollIntervalSeconds = 60
	}
	if c.SessionTTLMinutes <= 0 {
		c.SessionTTLMinutes = 30
	}
	if len(c.RotatorTickers) == 0 {
		c.RotatorTickers = []string{"SPY", "QQQ", "MSFT", "AMZN", "TSLA", "NVDA", "GBTC", "ETHE", "BTC-USD", "ETH-USD"}
	}
	if c.MarketCron == "" {
		c.MarketCron = "@every 5m"
	}
	if c.RotatorCron == "" {
		c.RotatorCron = "@every 1m"
	}
	if len(c.FrontendUrls) == 0 {
		c.FrontendUrls = []string{"http://localhost:3000"}
	}
}

// Validate checks the settings that have no sensible default.
func Validate(c *model.EnvConfig) error {
	if !strings.HasPrefix(c.ApiBaseUrl, "http://") && !strings.HasPrefix(c.ApiBaseUrl, "https://") {
		return fmt.Errorf("apiBaseUrl must be an http(s) URL, got %q", c.ApiBaseUrl)
	}
	if strings.TrimSpace(c.DefaultTicker) == "" {
		return fmt.Errorf("defaultTicker must not be blank")
	}
	return nil
}

// PollInterval is the real-time price refresh period.
func (s *SystemConfigs) PollInterval() time.Duration {
	return time.Duration(s.Config.PollIntervalSeconds) * time.Second
}

func (s *SystemConfigs) SessionTTL() time.Duration {
	return time.Duration(s.Config.SessionTTLMinutes) * time.Minute
}

type ConfigManager struct {
	value atomic.Value
}

func NewConfigManager(initial *model.EnvConfig) *ConfigManager {
	cm := &ConfigManager{}
	cm.value.Store(initial)
	return cm
}

func (cm *ConfigManager) GetConfig() *model.EnvConfig {
	return cm.value.Load().(*model.EnvConfig)
}

func (cm *ConfigManager) UpdateConfig(newCfg *model.EnvConfig) {
	cm.value.Store(newCfg)
}
