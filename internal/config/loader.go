package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// New returns a viper instance wired to TASKSYNC_* environment variables.
// Flags are bound by the caller with BindPFlag before Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadClient reads the client configuration. file may be empty.
func LoadClient(v *viper.Viper, file string) (*ClientConfig, error) {
	setClientDefaults(v)
	if err := readFile(v, file); err != nil {
		return nil, err
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode client config: %w", err)
	}
	return &cfg, nil
}

// LoadServer reads and validates the server configuration. file may be empty.
func LoadServer(v *viper.Viper, file string) (*ServerConfig, error) {
	setServerDefaults(v)
	if err := readFile(v, file); err != nil {
		return nil, err
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode server config: %w", err)
	}
	return &cfg, nil
}

func readFile(v *viper.Viper, file string) error {
	if file == "" {
		return nil
	}
	v.SetConfigFile(file)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", file, err)
	}
	return nil
}
