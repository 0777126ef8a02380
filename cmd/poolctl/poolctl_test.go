package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/momentics/hioload-pool/api"
	"github.com/momentics/hioload-pool/pool"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestScenario(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runScenario(&buf))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 11)
	assert.Contains(t, lines[0], "tag(c=0 s=0")
	assert.Contains(t, lines[3], "chunks=1")
	assert.Contains(t, lines[4], "tag(c=1 s=0")
	assert.Contains(t, lines[7], "chunks=2")
	assert.Equal(t, "acquire #9 -> capacity_exhausted", lines[8])
	assert.True(t, strings.HasPrefix(lines[9], "release"))
	assert.True(t, strings.HasPrefix(lines[10], "reacquire"))
}

func TestStressSmallPoolNoAliasing(t *testing.T) {
	cfg := pool.Config{MaxChunks: 2, SlotsPerChunk: 8}
	opts := stressOptions{Workers: 8, Iterations: 2000, Hold: 4}

	rep, err := runStress(context.Background(), cfg, opts, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.EqualValues(t, 0, rep.Stats.Live)
	assert.Equal(t, rep.Stats.Acquires, rep.Stats.Releases)
	assert.LessOrEqual(t, rep.Stats.HighWater, int64(cfg.Capacity()))
	assert.GreaterOrEqual(t, rep.Stats.Chunks, 1)
	assert.LessOrEqual(t, rep.Stats.Chunks, cfg.MaxChunks)
	assert.Equal(t, rep.Stats.Acquires, rep.Snapshot["stress.acquires"])
	assert.Equal(t, uint64(opts.Workers*opts.Iterations), rep.Stats.Acquires+rep.Exhausted)
}

func TestStressDebugQuarantine(t *testing.T) {
	cfg := pool.Config{MaxChunks: 4, SlotsPerChunk: 16, Debug: true, Quarantine: 8}
	opts := stressOptions{Workers: 4, Iterations: 500, Hold: 8}

	rep, err := runStress(context.Background(), cfg, opts, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.EqualValues(t, 0, rep.Stats.Live)
}

func TestStressCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := pool.Config{MaxChunks: 1, SlotsPerChunk: 4}
	_, err := runStress(ctx, cfg, stressOptions{Workers: 2, Iterations: 10, Hold: 2}, zaptest.NewLogger(t))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStressRejectsBadOptions(t *testing.T) {
	_, err := runStress(context.Background(), pool.DefaultConfig(), stressOptions{Workers: 0, Iterations: 1, Hold: 1}, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

func newConfigCmd(t *testing.T) *cobra.Command {
	t.Helper()
	root := &cobra.Command{Use: "poolctl"}
	addPoolFlags(root.PersistentFlags())
	cmd := &cobra.Command{Use: "probe", RunE: func(*cobra.Command, []string) error { return nil }}
	root.AddCommand(cmd)
	return cmd
}

func TestPoolConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_chunks: 8\nslots_per_chunk: 32\ndebug: true\nquarantine: 4\n"), 0o600))

	t.Setenv("HIOPOOL_SLOTS_PER_CHUNK", "64")

	cmd := newConfigCmd(t)
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--quarantine", "2"}))

	cfg, err := poolConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MaxChunks)
	assert.Equal(t, 64, cfg.SlotsPerChunk)
	assert.Equal(t, 2, cfg.Quarantine)
	assert.True(t, cfg.Debug)
}

func TestPoolConfigRejectsOutOfRange(t *testing.T) {
	cmd := newConfigCmd(t)
	require.NoError(t, cmd.ParseFlags([]string{"--max-chunks", "300"}))

	_, err := poolConfig(cmd)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}
