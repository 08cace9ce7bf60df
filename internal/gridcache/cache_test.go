package gridcache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"talentmetrics/domain/core"
	"talentmetrics/domain/grid"
	"talentmetrics/internal"
	"talentmetrics/ports"
)

// fakeLoader serves in-memory contents and counts parses
type fakeLoader struct {
	mu       sync.Mutex
	contents map[string]string
	loads    int
}

func (f *fakeLoader) Fingerprint(_ context.Context, src ports.Source) (core.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.contents[src.Path]
	if !ok {
		return "", fmt.Errorf("%w: %s", core.ErrSourceNotFound, src.Path)
	}
	return core.NewHash([]byte(content + "#" + src.Sheet)), nil
}

func (f *fakeLoader) Load(_ context.Context, src ports.Source) (*grid.Grid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return grid.FromStrings([][]string{{f.contents[src.Path]}}), nil
}

func (f *fakeLoader) set(path, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contents[path] = content
}

type countingObserver struct{ hits, misses int }

func (o *countingObserver) ObserveCache(hit bool) {
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

func TestCacheReusesUnchangedGrid(t *testing.T) {
	ctx := context.Background()
	loader := &fakeLoader{contents: map[string]string{"exits.csv": "v1"}}
	cache := New(loader, internal.NewNopLogger())
	obs := &countingObserver{}
	cache.SetObserver(obs)
	src := ports.Source{Path: "exits.csv"}

	a, err := cache.Load(ctx, src)
	require.NoError(t, err)
	b, err := cache.Load(ctx, src)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, loader.loads)
	assert.Equal(t, Stats{Hits: 1, Misses: 1, Entries: 1}, cache.Stats())
	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 1, obs.misses)
}

func TestCacheReloadsChangedContent(t *testing.T) {
	ctx := context.Background()
	loader := &fakeLoader{contents: map[string]string{"exits.csv": "v1"}}
	cache := New(loader, internal.NewNopLogger())
	src := ports.Source{Path: "exits.csv"}

	_, err := cache.Load(ctx, src)
	require.NoError(t, err)
	loader.set("exits.csv", "v2")

	g, err := cache.Load(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, "v2", g.Cell(0, 0).String())
	assert.Equal(t, 2, loader.loads)
	assert.Equal(t, 1, cache.Stats().Entries)
}

func TestCacheKeysBySheet(t *testing.T) {
	ctx := context.Background()
	loader := &fakeLoader{contents: map[string]string{"2025.xlsx": "book"}}
	cache := New(loader, internal.NewNopLogger())

	_, err := cache.Load(ctx, ports.Source{Path: "2025.xlsx", Sheet: "Internal exits"})
	require.NoError(t, err)
	_, err = cache.Load(ctx, ports.Source{Path: "2025.xlsx", Sheet: "Training investment"})
	require.NoError(t, err)

	keys := cache.Keys()
	require.Len(t, keys, 2)
	assert.Equal(t, "2025.xlsx#Internal exits", keys[0].Identity)
	assert.False(t, keys[0].Hash.Equals(keys[1].Hash))

	assert.Equal(t, 2, cache.InvalidatePath("2025.xlsx"))
	assert.Zero(t, cache.Stats().Entries)
}

func TestCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	loader := &fakeLoader{contents: map[string]string{"a.csv": "a", "b.csv": "b"}}
	cache := New(loader, internal.NewNopLogger())

	for _, p := range []string{"a.csv", "b.csv"} {
		_, err := cache.Load(ctx, ports.Source{Path: p})
		require.NoError(t, err)
	}

	assert.True(t, cache.Invalidate(ports.Source{Path: "a.csv"}))
	assert.False(t, cache.Invalidate(ports.Source{Path: "a.csv"}))
	_, err := cache.Load(ctx, ports.Source{Path: "a.csv"})
	require.NoError(t, err)
	assert.Equal(t, 3, loader.loads)

	assert.Equal(t, 2, cache.InvalidateAll())
	assert.Zero(t, cache.Stats().Entries)
}

func TestCacheDropsEntryWhenSourceDisappears(t *testing.T) {
	ctx := context.Background()
	loader := &fakeLoader{contents: map[string]string{"a.csv": "a"}}
	cache := New(loader, internal.NewNopLogger())

	_, err := cache.Load(ctx, ports.Source{Path: "a.csv"})
	require.NoError(t, err)

	loader.mu.Lock()
	delete(loader.contents, "a.csv")
	loader.mu.Unlock()

	_, err = cache.Load(ctx, ports.Source{Path: "a.csv"})
	assert.ErrorIs(t, err, core.ErrSourceNotFound)
	assert.Zero(t, cache.Stats().Entries)
}

func TestWatchInvalidatesOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "headcount.csv")
	require.NoError(t, os.WriteFile(path, []byte("Fecha\n"), 0o644))

	loader := &fakeLoader{contents: map[string]string{path: "v1"}}
	cache := New(loader, internal.NewNopLogger())
	_, err := cache.Load(context.Background(), ports.Source{Path: path})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan string, 16)
	done := make(chan error, 1)
	go func() {
		done <- cache.Watch(ctx, []string{path, ""}, func(p string) { changed <- p })
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	var got string
wait:
	for {
		select {
		case got = <-changed:
			break wait
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, []byte("Fecha\n2025-01-01\n"), 0o644))
		case <-deadline:
			cancel()
			t.Fatal("no change notification")
		}
	}

	assert.Equal(t, path, got)
	assert.Zero(t, cache.Stats().Entries)

	cancel()
	require.NoError(t, <-done)
}
