package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	hConfig "github.com/michaelyusak/go-helper/config"
	"github.com/michaelyusak/go-helper/entity"
)

const (
	DefaultPath    = "./config/config.json"
	DefaultEnvFile = ".env"

	DefaultBaseUrl = "https://api.cryptophyl.com"
	DefaultPort    = ":8080"
	DefaultTimeout = 10 * time.Second
)

type CryptophylConfig struct {
	BaseUrl   string `json:"base_url"`
	ApiKey    string `json:"api_key"`
	SecretKey string `json:"secret_key"`

	// nil means the exchange default (true).
	CreateMarketBuyOrderRequiresPrice *bool `json:"create_market_buy_order_requires_price"`

	Timeout entity.Duration `json:"timeout"`
}

// MarketBuyRequiresPrice resolves the createMarketBuyOrderRequiresPrice option.
func (c CryptophylConfig) MarketBuyRequiresPrice() bool {
	if c.CreateMarketBuyOrderRequiresPrice == nil {
		return true
	}
	return *c.CreateMarketBuyOrderRequiresPrice
}

type ExchangeConfig struct {
	Cryptophyl CryptophylConfig `json:"cryptophyl"`
}

type GatewayConfig struct {
	Port string `json:"port"`
}

type AppConfig struct {
	Identity string         `json:"identity"`
	LogLevel string         `json:"log_level"`
	Exchange ExchangeConfig `json:"exchange"`
	Gateway  GatewayConfig  `json:"gateway"`
}

func Init(conf *AppConfig) error {
	c, err := Load(DefaultPath, DefaultEnvFile)
	if err != nil {
		return fmt.Errorf("[config][Init][Load] Error: %w", err)
	}

	*conf = c

	return nil
}

// Load reads the JSON config at path, then overlays values from the
// environment. Env files are loaded first when they exist; variables already
// set in the process environment win.
func Load(path string, envFiles ...string) (AppConfig, error) {
	var conf AppConfig

	_, err := os.Stat(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return AppConfig{}, fmt.Errorf("[config][Load][os.Stat] Error: %w [path: %s]", err, path)
	}
	if err == nil {
		conf, err = hConfig.InitFromJson[AppConfig](path)
		if err != nil {
			return AppConfig{}, fmt.Errorf("[config][Load][hConfig.InitFromJson] Error: %w [path: %s]", err, path)
		}
	}

	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return AppConfig{}, fmt.Errorf("[config][Load][godotenv.Load] Error: %w [file: %s]", err, f)
		}
	}

	if err := conf.applyEnv(); err != nil {
		return AppConfig{}, err
	}

	conf.applyDefaults()

	return conf, nil
}

func (c *AppConfig) applyEnv() error {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	setString(&c.Exchange.Cryptophyl.BaseUrl, "CRYPTOPHYL_BASE_URL")
	setString(&c.Exchange.Cryptophyl.ApiKey, "CRYPTOPHYL_API_KEY")
	setString(&c.Exchange.Cryptophyl.SecretKey, "CRYPTOPHYL_SECRET_KEY")
	setString(&c.Gateway.Port, "GATEWAY_PORT")
	setString(&c.LogLevel, "LOG_LEVEL")

	if v, ok := os.LookupEnv("CRYPTOPHYL_MARKET_BUY_REQUIRES_PRICE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("[config][applyEnv][strconv.ParseBool] Error: %w [CRYPTOPHYL_MARKET_BUY_REQUIRES_PRICE: %s]", err, v)
		}
		c.Exchange.Cryptophyl.CreateMarketBuyOrderRequiresPrice = &b
	}

	if v, ok := os.LookupEnv("CRYPTOPHYL_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("[config][applyEnv][time.ParseDuration] Error: %w [CRYPTOPHYL_TIMEOUT: %s]", err, v)
		}
		c.Exchange.Cryptophyl.Timeout = entity.Duration(d)
	}

	return nil
}

func (c *AppConfig) applyDefaults() {
	if c.Exchange.Cryptophyl.BaseUrl == "" {
		c.Exchange.Cryptophyl.BaseUrl = DefaultBaseUrl
	}
	if c.Exchange.Cryptophyl.Timeout <= 0 {
		c.Exchange.Cryptophyl.Timeout = entity.Duration(DefaultTimeout)
	}
	if c.Gateway.Port == "" {
		c.Gateway.Port = DefaultPort
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
