// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Pool configuration loading from YAML files and HIOPOOL_* environment
// variables.

package control

import (
	"fmt"
	"strings"

	"github.com/momentics/hioload-pool/pool"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to configuration keys looked up in the environment.
const EnvPrefix = "HIOPOOL"

// NewViper returns a viper instance preloaded with pool defaults and env
// bindings.
func NewViper() *viper.Viper {
	v := viper.New()
	def := pool.DefaultConfig()
	v.SetDefault("max_chunks", def.MaxChunks)
	v.SetDefault("slots_per_chunk", def.SlotsPerChunk)
	v.SetDefault("debug", def.Debug)
	v.SetDefault("quarantine", def.Quarantine)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads path (if non-empty) on top of defaults and environment.
func LoadConfig(path string) (pool.Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return pool.Config{}, fmt.Errorf("control: read config %s: %w", path, err)
		}
	}
	return DecodeConfig(v)
}

// DecodeConfig extracts and validates a pool.Config from v.
func DecodeConfig(v *viper.Viper) (pool.Config, error) {
	var cfg pool.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return pool.Config{}, fmt.Errorf("control: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return pool.Config{}, err
	}
	return cfg, nil
}
