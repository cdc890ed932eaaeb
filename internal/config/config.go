package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/daniel4e393653-cmd/cetus-rebalance-bot/internal/clmm"
)

// Cetus mainnet deployment. Other networks must override these.
const (
	cetusPackageID       = "0x1eabed72c53feb3805120a081dc15963c204dc8d091542592abaf7a35689b2fb"
	cetusScriptPackageID = "0x996c4d9480708fb8b92aa7acf819fb0497b5ec8e65ba06601cae2fb6db3312c3"
	cetusGlobalConfigID  = "0xdaa46292632c3c4d8f31f23ea0f9b36a28ff3677e9684980e4438403a67a3d8f"
)

// signerKeyEnv is the only place the signing key is read from. It never
// passes through flags or config files.
const signerKeyEnv = "REBALANCER_SIGNER_KEY"

var networkEndpoints = map[string][]string{
	"mainnet": {"https://fullnode.mainnet.sui.io:443"},
	"testnet": {"https://fullnode.testnet.sui.io:443"},
	"devnet":  {"https://fullnode.devnet.sui.io:443"},
}

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Network         string
	Endpoints       []string
	Owner           string
	Pools           []string
	PackageID       string
	ScriptPackageID string
	GlobalConfigID  string
	SignerKey       string
	Execute         bool
	CheckInterval   time.Duration
	SlippageBps     uint64
	MaxAttempts     int
	AttemptTimeout  time.Duration
	RetryBackoff    time.Duration
	PoolTTL         time.Duration
	ConfirmInterval time.Duration
	ConfirmAttempts int
	GasBudget       uint64
	HistoryOut      string
	PostgresDSN     string
	TelegramToken   string
	TelegramChatID  int64
	LogLevel        string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REBALANCER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("network", "mainnet")
	v.SetDefault("package-id", cetusPackageID)
	v.SetDefault("script-package-id", cetusScriptPackageID)
	v.SetDefault("global-config-id", cetusGlobalConfigID)
	v.SetDefault("check-interval", 60*time.Second)
	v.SetDefault("slippage-bps", uint64(50))
	v.SetDefault("max-attempts", 3)
	v.SetDefault("attempt-timeout", 15*time.Second)
	v.SetDefault("retry-backoff", time.Second)
	v.SetDefault("pool-ttl", 5*time.Second)
	v.SetDefault("confirm-interval", time.Second)
	v.SetDefault("confirm-attempts", 30)
	v.SetDefault("gas-budget", uint64(100_000_000))
	v.SetDefault("history-out", "./data/rebalances.jsonl")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		Network:         v.GetString("network"),
		Endpoints:       getStringSlice(v, "endpoint"),
		Owner:           v.GetString("owner"),
		Pools:           getStringSlice(v, "pool"),
		PackageID:       v.GetString("package-id"),
		ScriptPackageID: v.GetString("script-package-id"),
		GlobalConfigID:  v.GetString("global-config-id"),
		SignerKey:       os.Getenv(signerKeyEnv),
		Execute:         v.GetBool("execute"),
		CheckInterval:   v.GetDuration("check-interval"),
		SlippageBps:     v.GetUint64("slippage-bps"),
		MaxAttempts:     v.GetInt("max-attempts"),
		AttemptTimeout:  v.GetDuration("attempt-timeout"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
		PoolTTL:         v.GetDuration("pool-ttl"),
		ConfirmInterval: v.GetDuration("confirm-interval"),
		ConfirmAttempts: v.GetInt("confirm-attempts"),
		GasBudget:       v.GetUint64("gas-budget"),
		HistoryOut:      v.GetString("history-out"),
		PostgresDSN:     v.GetString("pg-dsn"),
		TelegramToken:   v.GetString("telegram-token"),
		TelegramChatID:  v.GetInt64("telegram-chat-id"),
		LogLevel:        v.GetString("log-level"),
	}

	if len(cfg.Endpoints) == 0 {
		cfg.Endpoints = networkEndpoints[cfg.Network]
	}

	return cfg, nil
}

// Validate rejects configurations the bot cannot safely run with.
func (c Config) Validate() error {
	if c.Owner == "" {
		return fmt.Errorf("owner address is required")
	}
	if !strings.HasPrefix(c.Owner, "0x") {
		return fmt.Errorf("owner address must be 0x-prefixed, got %q", c.Owner)
	}
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("no RPC endpoints configured and no defaults for network %q", c.Network)
	}
	for _, ep := range c.Endpoints {
		u, err := url.Parse(ep)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("invalid RPC endpoint %q", ep)
		}
	}
	if c.PackageID == "" {
		return fmt.Errorf("package id is required")
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("check interval must be positive")
	}
	if c.SlippageBps > clmm.SlippageDenominator {
		return fmt.Errorf("slippage %d bps exceeds 100%%", c.SlippageBps)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1")
	}
	if c.ConfirmAttempts < 1 {
		return fmt.Errorf("confirm attempts must be at least 1")
	}
	if c.Execute {
		if c.SignerKey == "" {
			return fmt.Errorf("%s must be set when execution is enabled", signerKeyEnv)
		}
		if c.ScriptPackageID == "" || c.GlobalConfigID == "" {
			return fmt.Errorf("script package and global config ids are required when execution is enabled")
		}
		if c.GasBudget == 0 {
			return fmt.Errorf("gas budget must be positive when execution is enabled")
		}
	}
	return nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
