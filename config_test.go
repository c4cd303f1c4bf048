package replaycache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
name: train
capacity: 256
concat_size: 4
seed: 42
poll_interval: 25ms
join_timeout: 2s
fetch_rate: 100
fetch_burst: 8
`))
	require.NoError(t, err)
	want := Config{
		Name:         "train",
		Capacity:     256,
		ConcatSize:   4,
		Seed:         42,
		PollInterval: 25 * time.Millisecond,
		JoinTimeout:  2 * time.Second,
		FetchRate:    100,
		FetchBurst:   8,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseConfigEmptyAndInvalid(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)

	_, err = ParseConfig([]byte("capacity: -1\n"))
	require.Error(t, err)

	_, err = ParseConfig([]byte("capacty: 10\n"))
	require.Error(t, err, "unknown keys are rejected")

	_, err = ParseConfig([]byte("fetch_rate: -3\n"))
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.yaml")
	require.NoError(t, os.WriteFile(path, []byte("capacity: 9\n"), 0o600))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Capacity)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestApplyConfig(t *testing.T) {
	opts := Options[int]{Name: "keep", Capacity: 10, JoinTimeout: time.Second}
	require.NoError(t, ApplyConfig(&opts, Config{Capacity: 64, Seed: 3, FetchRate: 50}))

	assert.Equal(t, "keep", opts.Name)
	assert.Equal(t, 64, opts.Capacity)
	assert.Equal(t, time.Second, opts.JoinTimeout)
	assert.Equal(t, uint64(3), opts.Seed)
	require.NotNil(t, opts.FetchLimiter)
	assert.Equal(t, rate.Limit(50), opts.FetchLimiter.Limit())
	assert.Equal(t, 1, opts.FetchLimiter.Burst())

	require.Error(t, ApplyConfig(&opts, Config{Capacity: -2}))
}

func TestFetchLimiterThrottlesProducer(t *testing.T) {
	opts := Options[int]{Source: &counter{}, Capacity: 1000}
	require.NoError(t, ApplyConfig(&opts, Config{FetchRate: 20, FetchBurst: 1}))
	c := startInts(t, opts)

	time.Sleep(200 * time.Millisecond)
	closeOK(t, c)
	// ~20/s for 0.2s plus the initial burst; far below an unthrottled producer
	assert.Less(t, c.Stats().Fetched, uint64(50))
	assert.Positive(t, c.Stats().Fetched)
}
