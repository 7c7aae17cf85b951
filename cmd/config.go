package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/TEENet-io/liquid-wallet/lqman/netcfg"
)

// Environment variables / config file keys.
const (
	ENV_CONFIG_FILE_PATH = "LIQUID_WALLET_CONFIG"

	KEY_NETWORK              = "LIQUID_NETWORK"
	KEY_EXPLORER_URL         = "EXPLORER_URL"
	KEY_WALLET_WIF           = "WALLET_WIF"
	KEY_WALLET_ADDRESS       = "WALLET_ADDRESS"
	KEY_WALLET_KEYSTORE      = "WALLET_KEYSTORE"
	KEY_WALLET_PASSWORD      = "WALLET_PASSWORD"
	KEY_VAULT_DB_PATH        = "VAULT_DB_PATH"
	KEY_LOCK_TIMEOUT_SECONDS = "LOCK_TIMEOUT_SECONDS"
	KEY_SERVER_IP            = "SERVER_IP"
	KEY_SERVER_PORT          = "SERVER_PORT"
	KEY_LOG_LEVEL            = "LOG_LEVEL"
)

type WalletUserConfig struct {
	Network     netcfg.Name // liquid, testnet, regtest
	ExplorerURL string      // esplora base url, eg. https://blockstream.info/liquid/api

	// One of them identifies the wallet, first non-empty wins.
	WIF              string // signing wallet
	KeystorePath     string // signing wallet, encrypted WIF
	KeystorePassword string
	Address          string // watch-only wallet

	VaultDBPath string        // sqlite file, empty disables the vault
	LockTimeout time.Duration // how long chosen utxos stay locked

	ServerIP   string // reporter listen ip
	ServerPort string // reporter listen port

	LogLevel string
}

// InitViper reads environment variables, plus the config file
// named by LIQUID_WALLET_CONFIG when that is set.
func InitViper(v *viper.Viper) error {
	// Tool to read environment variables
	v.AutomaticEnv()

	_config_file := v.GetString(ENV_CONFIG_FILE_PATH)
	if _config_file == "" {
		return nil
	}
	// See if file exists
	if !FileExists(_config_file) {
		return fmt.Errorf("configuration file not found: %s", _config_file)
	}
	v.SetConfigFile(_config_file)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading configuration file: %w", err)
	}
	return nil
}

// LoadWalletUserConfig turns viper values into a checked WalletUserConfig.
func LoadWalletUserConfig(v *viper.Viper) (*WalletUserConfig, error) {
	v.SetDefault(KEY_NETWORK, string(netcfg.Default))
	v.SetDefault(KEY_LOCK_TIMEOUT_SECONDS, 1800) // half an hour
	v.SetDefault(KEY_SERVER_IP, "127.0.0.1")
	v.SetDefault(KEY_SERVER_PORT, "8080")
	v.SetDefault(KEY_LOG_LEVEL, "info")

	network := netcfg.Name(v.GetString(KEY_NETWORK))
	if _, err := netcfg.Get(network); err != nil {
		return nil, err
	}

	cfg := &WalletUserConfig{
		Network:          network,
		ExplorerURL:      v.GetString(KEY_EXPLORER_URL),
		WIF:              v.GetString(KEY_WALLET_WIF),
		KeystorePath:     v.GetString(KEY_WALLET_KEYSTORE),
		KeystorePassword: v.GetString(KEY_WALLET_PASSWORD),
		Address:          v.GetString(KEY_WALLET_ADDRESS),
		VaultDBPath:      v.GetString(KEY_VAULT_DB_PATH),
		LockTimeout:      time.Duration(v.GetInt64(KEY_LOCK_TIMEOUT_SECONDS)) * time.Second,
		ServerIP:         v.GetString(KEY_SERVER_IP),
		ServerPort:       v.GetString(KEY_SERVER_PORT),
		LogLevel:         v.GetString(KEY_LOG_LEVEL),
	}

	if cfg.ExplorerURL == "" {
		return nil, fmt.Errorf("%s is required", KEY_EXPLORER_URL)
	}
	if cfg.WIF == "" && cfg.KeystorePath == "" && cfg.Address == "" {
		return nil, fmt.Errorf("one of %s, %s, %s is required", KEY_WALLET_WIF, KEY_WALLET_KEYSTORE, KEY_WALLET_ADDRESS)
	}
	if cfg.LockTimeout <= 0 {
		return nil, fmt.Errorf("%s must be positive", KEY_LOCK_TIMEOUT_SECONDS)
	}
	return cfg, nil
}
