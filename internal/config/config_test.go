package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Network != "mainnet" {
		t.Fatalf("network = %q", cfg.Network)
	}
	if len(cfg.Endpoints) != 1 || !strings.Contains(cfg.Endpoints[0], "fullnode.mainnet.sui.io") {
		t.Fatalf("endpoints = %v", cfg.Endpoints)
	}
	if cfg.CheckInterval != 60*time.Second {
		t.Fatalf("check interval = %s", cfg.CheckInterval)
	}
	if cfg.SlippageBps != 50 {
		t.Fatalf("slippage = %d", cfg.SlippageBps)
	}
	if cfg.MaxAttempts != 3 || cfg.AttemptTimeout != 15*time.Second || cfg.RetryBackoff != time.Second {
		t.Fatalf("retry policy = %d/%s/%s", cfg.MaxAttempts, cfg.AttemptTimeout, cfg.RetryBackoff)
	}
	if cfg.PoolTTL != 5*time.Second {
		t.Fatalf("pool ttl = %s", cfg.PoolTTL)
	}
	if cfg.ConfirmInterval != time.Second || cfg.ConfirmAttempts != 30 {
		t.Fatalf("confirmation = %s x %d", cfg.ConfirmInterval, cfg.ConfirmAttempts)
	}
	if cfg.Execute {
		t.Fatal("execution must be off by default")
	}
	if cfg.PackageID == "" || cfg.ScriptPackageID == "" || cfg.GlobalConfigID == "" {
		t.Fatal("contract ids must default to the mainnet deployment")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("REBALANCER_OWNER", "0xowner")
	t.Setenv("REBALANCER_ENDPOINT", "https://a.example:443, https://b.example:443")
	t.Setenv("REBALANCER_NETWORK", "testnet")
	t.Setenv("REBALANCER_EXECUTE", "true")
	t.Setenv("REBALANCER_SLIPPAGE_BPS", "25")
	t.Setenv("REBALANCER_SIGNER_KEY", "c2VlZA==")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Owner != "0xowner" {
		t.Fatalf("owner = %q", cfg.Owner)
	}
	if len(cfg.Endpoints) != 2 || cfg.Endpoints[1] != "https://b.example:443" {
		t.Fatalf("endpoints = %v", cfg.Endpoints)
	}
	if cfg.Network != "testnet" {
		t.Fatalf("network = %q", cfg.Network)
	}
	if !cfg.Execute || cfg.SlippageBps != 25 {
		t.Fatalf("execute = %v slippage = %d", cfg.Execute, cfg.SlippageBps)
	}
	if cfg.SignerKey != "c2VlZA==" {
		t.Fatal("signer key must come from the environment")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Network:         "mainnet",
			Endpoints:       []string{"https://fullnode.mainnet.sui.io:443"},
			Owner:           "0xowner",
			PackageID:       "0xpkg",
			ScriptPackageID: "0xscript",
			GlobalConfigID:  "0xcfg",
			CheckInterval:   time.Minute,
			SlippageBps:     50,
			MaxAttempts:     3,
			AttemptTimeout:  15 * time.Second,
			RetryBackoff:    time.Second,
			PoolTTL:         5 * time.Second,
			ConfirmInterval: time.Second,
			ConfirmAttempts: 30,
			GasBudget:       100_000_000,
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing owner", func(c *Config) { c.Owner = "" }},
		{"owner without prefix", func(c *Config) { c.Owner = "owner" }},
		{"no endpoints", func(c *Config) { c.Endpoints = nil }},
		{"malformed endpoint", func(c *Config) { c.Endpoints = []string{"not a url"} }},
		{"wrong scheme", func(c *Config) { c.Endpoints = []string{"ftp://node.example"} }},
		{"missing package", func(c *Config) { c.PackageID = "" }},
		{"zero interval", func(c *Config) { c.CheckInterval = 0 }},
		{"slippage above 100%", func(c *Config) { c.SlippageBps = 10_001 }},
		{"no attempts", func(c *Config) { c.MaxAttempts = 0 }},
		{"no confirmation attempts", func(c *Config) { c.ConfirmAttempts = 0 }},
		{"execute without key", func(c *Config) { c.Execute = true }},
		{"execute without gas", func(c *Config) { c.Execute = true; c.SignerKey = "k"; c.GasBudget = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestValidateExecuteWithKey(t *testing.T) {
	cfg := Config{
		Network:         "mainnet",
		Endpoints:       []string{"https://fullnode.mainnet.sui.io:443"},
		Owner:           "0xowner",
		PackageID:       "0xpkg",
		ScriptPackageID: "0xscript",
		GlobalConfigID:  "0xcfg",
		SignerKey:       "c2VlZA==",
		Execute:         true,
		CheckInterval:   time.Minute,
		SlippageBps:     50,
		MaxAttempts:     3,
		ConfirmAttempts: 30,
		GasBudget:       100_000_000,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("execute config rejected: %v", err)
	}
}
