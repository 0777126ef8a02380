package control

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/momentics/hioload-pool/api"
	"github.com/momentics/hioload-pool/pool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedStats api.PoolStats

func (f fixedStats) Stats() api.PoolStats { return api.PoolStats(f) }

var sampleStats = fixedStats{
	Acquires:   10,
	Releases:   8,
	Grows:      1,
	CASRetries: 3,
	Live:       2,
	HighWater:  5,
	Chunks:     1,
	Capacity:   16,
}

func TestPublishStats(t *testing.T) {
	mr := NewMetricsRegistry()
	mr.PublishStats("items", sampleStats.Stats())

	snap := mr.GetSnapshot()
	assert.Equal(t, uint64(10), snap["items.acquires"])
	assert.Equal(t, int64(2), snap["items.live"])
	assert.Equal(t, 16, snap["items.capacity"])
	assert.False(t, mr.Updated().IsZero())

	mr.Set("custom", "x")
	assert.Equal(t, "x", mr.GetSnapshot()["custom"])
}

func TestDebugProbes(t *testing.T) {
	dp := NewDebugProbes()
	RegisterPoolProbe(dp, "items", sampleStats)
	RegisterPlatformProbes(dp)

	state := dp.DumpState()
	assert.Equal(t, sampleStats.Stats(), state["pool.items"])
	assert.Greater(t, state["platform.cpus"], 0)
	assert.Greater(t, state["platform.cache_line_pad"], 0)

	dp.UnregisterProbe("pool.items")
	assert.NotContains(t, dp.DumpState(), "pool.items")
}

func TestPoolCollector(t *testing.T) {
	c := NewPoolCollector("items", sampleStats)

	expected := `
# HELP hioload_pool_acquires_total Objects handed out by the pool.
# TYPE hioload_pool_acquires_total counter
hioload_pool_acquires_total{pool="items"} 10
# HELP hioload_pool_live_objects Objects currently acquired.
# TYPE hioload_pool_live_objects gauge
hioload_pool_live_objects{pool="items"} 2
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected),
		"hioload_pool_acquires_total", "hioload_pool_live_objects"))
	assert.Equal(t, 8, testutil.CollectAndCount(c))

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))
}

func TestPoolCollectorTracksLivePool(t *testing.T) {
	p := pool.MustNew(pool.WithSlotsPerChunk[int](4), pool.WithMaxChunks[int](2))
	c := NewPoolCollector("ints", p)

	o, err := p.Acquire()
	require.NoError(t, err)

	expected := `
# HELP hioload_pool_chunks Chunks currently allocated.
# TYPE hioload_pool_chunks gauge
hioload_pool_chunks{pool="ints"} 1
# HELP hioload_pool_capacity_objects Hard ceiling of objects the pool can hold.
# TYPE hioload_pool_capacity_objects gauge
hioload_pool_capacity_objects{pool="ints"} 8
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected),
		"hioload_pool_chunks", "hioload_pool_capacity_objects"))
	p.Release(o)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, pool.DefaultConfig(), cfg)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yaml")
	body := "max_chunks: 2\nslots_per_chunk: 4\ndebug: true\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, pool.Config{MaxChunks: 2, SlotsPerChunk: 4, Debug: true}, cfg)

	t.Setenv("HIOPOOL_QUARANTINE", "3")
	t.Setenv("HIOPOOL_MAX_CHUNKS", "8")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MaxChunks)
	assert.Equal(t, 3, cfg.Quarantine)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("slots_per_chunk: 1024\n"), 0o600))

	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
