// File: cmd/poolctl/main.go
// Author: momentics <momentics@gmail.com>
//
// poolctl exercises a TaggedPool from the command line: a concurrent
// stress run with optional Prometheus export, and a small capacity walk.

package main

import (
	"fmt"
	"os"

	"github.com/momentics/hioload-pool/control"
	"github.com/momentics/hioload-pool/internal/logging"
	"github.com/momentics/hioload-pool/pool"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "poolctl",
	Short: "Drive and inspect lock-free tagged object pools",
	Long: `poolctl builds a tagged object pool from a config file, HIOPOOL_*
environment variables and flags, then either hammers it from many goroutines
or walks it through a small capacity scenario.`,
	SilenceUsage: true,
	Version:      "0.1.0",
}

func init() {
	addPoolFlags(rootCmd.PersistentFlags())
}

func addPoolFlags(pf *pflag.FlagSet) {
	pf.String("config", "", "Pool config file (yaml, json, toml)")
	pf.Bool("dev", false, "Human-readable debug logging")
	pf.Int("max-chunks", pool.DefaultMaxChunks, "Maximum number of chunks (1..256)")
	pf.Int("slots-per-chunk", pool.DefaultSlotsPerChunk, "Slots per chunk (1..256)")
	pf.Bool("debug", false, "Enable ownership checks and poison fill")
	pf.Int("quarantine", 0, "Releases held back before reuse (debug only)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// poolConfig resolves the pool sizing: flags override environment, which
// overrides the config file, which overrides defaults.
func poolConfig(cmd *cobra.Command) (pool.Config, error) {
	v := control.NewViper()
	if err := bindPoolFlags(v, cmd); err != nil {
		return pool.Config{}, err
	}
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return pool.Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return control.DecodeConfig(v)
}

func bindPoolFlags(v *viper.Viper, cmd *cobra.Command) error {
	keys := map[string]string{
		"max_chunks":      "max-chunks",
		"slots_per_chunk": "slots-per-chunk",
		"debug":           "debug",
		"quarantine":      "quarantine",
	}
	for key, flag := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind --%s: %w", flag, err)
		}
	}
	return nil
}

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	dev, _ := cmd.Flags().GetBool("dev")
	return logging.New(dev)
}
