// Package config loads and validates the engine configuration.
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type Config struct {
	RPCList     []string `mapstructure:"rpc_list"`
	WalletsFile string   `mapstructure:"wallets_file"`
	FeePayer    string   `mapstructure:"fee_payer"`

	// Executor
	MaxParallel          int  `mapstructure:"max_parallel"`
	DelayBetweenMs       int  `mapstructure:"delay_between_ms"`
	FailFast             bool `mapstructure:"fail_fast"`
	DisableFallbackRetry bool `mapstructure:"disable_fallback_retry"`
	ConfirmTimeoutSec    int  `mapstructure:"confirm_timeout_sec"`

	// Packing
	ProbeLimit int `mapstructure:"probe_limit"`

	// Trading
	SlippageBps uint64 `mapstructure:"slippage_bps"`

	// Compute budget
	ComputeUnits     uint32 `mapstructure:"compute_units"`
	ComputeUnitPrice uint64 `mapstructure:"compute_unit_price"`

	DebugLogging bool   `mapstructure:"debug_logging"`
	LogFile      string `mapstructure:"log_file"`
	MetricsAddr  string `mapstructure:"metrics_addr"`

	// Results export; empty dir disables it.
	ExportDir    string `mapstructure:"export_dir"`
	ExportFormat string `mapstructure:"export_format"`
}

const (
	DefaultMaxParallel       = 5
	DefaultDelayBetweenMs    = 100
	DefaultConfirmTimeoutSec = 30
	DefaultProbeLimit        = 20
	DefaultSlippageBps       = 500
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"max_parallel":        DefaultMaxParallel,
		"delay_between_ms":    DefaultDelayBetweenMs,
		"confirm_timeout_sec": DefaultConfirmTimeoutSec,
		"probe_limit":         DefaultProbeLimit,
		"slippage_bps":        DefaultSlippageBps,
		"log_file":            "batcher.log",
		"export_format":       "csv",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	if cfg.WalletsFile == "" {
		return errors.New("missing wallets_file in configuration")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.MaxParallel <= 0 {
		return errors.New("invalid max_parallel")
	}
	if cfg.DelayBetweenMs < 0 {
		return errors.New("invalid delay_between_ms")
	}
	if cfg.ConfirmTimeoutSec <= 0 {
		return errors.New("invalid confirm_timeout_sec")
	}
	if cfg.ProbeLimit <= 0 {
		return errors.New("invalid probe_limit")
	}
	if cfg.SlippageBps > 10_000 {
		return errors.New("slippage_bps exceeds 10000")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("PUMPBATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envFeePayer := v.GetString("FEE_PAYER")
	if envFeePayer != "" {
		cfg.FeePayer = envFeePayer
	}

	envRPCList := v.GetString("RPC_LIST")
	if envRPCList != "" {
		rpcs := strings.Split(envRPCList, ",")
		var cleanRPCs []string
		for _, rpc := range rpcs {
			clean := strings.TrimSpace(rpc)
			if clean != "" {
				cleanRPCs = append(cleanRPCs, clean)
			}
		}
		if len(cleanRPCs) > 0 {
			cfg.RPCList = cleanRPCs
		}
	}
	return nil
}
