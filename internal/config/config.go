package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL             string
	PrivateKey         string
	AccessGate         string
	FeeToken           string
	PoolSigner         string
	PoolEventSignature string
	Payload            string
	Out                string
	PGDSN              string
	ReceiptTimeout     time.Duration
	LogLevel           string
}

// secretKeys maps config keys to the names used in a "secrets" section.
var secretKeys = map[string]string{
	"access-gate": "secrets.strongBlockContractAddress",
	"fee-token":   "secrets.strongerContractAddress",
	"pool-signer": "secrets.streamContractAddress",
	"private-key": "secrets.privateKey",
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Config{}, err
	}
	return fromViper(v), nil
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("NODEACCESS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("pool-event-signature", "PoolReady(uint32,address)")
	v.SetDefault("receipt-timeout", 5*time.Minute)
	v.SetDefault("log-level", "info")
	v.SetDefault("listen", ":8080")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

func fromViper(v *viper.Viper) Config {
	return Config{
		RPCURL:             v.GetString("rpc"),
		PrivateKey:         getSecret(v, "private-key"),
		AccessGate:         getSecret(v, "access-gate"),
		FeeToken:           getSecret(v, "fee-token"),
		PoolSigner:         getSecret(v, "pool-signer"),
		PoolEventSignature: v.GetString("pool-event-signature"),
		Payload:            v.GetString("payload"),
		Out:                v.GetString("out"),
		PGDSN:              v.GetString("pg-dsn"),
		ReceiptTimeout:     v.GetDuration("receipt-timeout"),
		LogLevel:           v.GetString("log-level"),
	}
}

// getSecret reads key, falling back to its name inside a secrets section.
func getSecret(v *viper.Viper, key string) string {
	if val := strings.TrimSpace(v.GetString(key)); val != "" {
		return val
	}
	if alias, ok := secretKeys[key]; ok {
		return strings.TrimSpace(v.GetString(alias))
	}
	return ""
}

// Validate checks the settings every chain command needs.
func (c Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if c.AccessGate == "" || c.FeeToken == "" || c.PoolSigner == "" {
		return fmt.Errorf("access-gate, fee-token and pool-signer addresses are required")
	}
	return nil
}
