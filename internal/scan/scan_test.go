package scan

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/stencilgrid/internal/ctxlog"
	"github.com/vk/stencilgrid/internal/idx"
	"github.com/vk/stencilgrid/internal/tuple"
)

func sizes(kv ...any) tuple.IntTuple {
	var t tuple.IntTuple
	for i := 0; i < len(kv); i += 2 {
		t.AddDimBack(kv[i].(string), kv[i+1].(int))
	}
	return t
}

type tile struct {
	Start, Stop, Index [2]idx.Idx
}

func record(n int, sc *idx.ScanIndices) tile {
	var t tile
	copy(t.Start[:], sc.Start[:n])
	copy(t.Stop[:], sc.Stop[:n])
	copy(t.Index[:], sc.Index[:n])
	return t
}

func TestNewPlan_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		domain  tuple.IntTuple
		tiles   []tuple.IntTuple
		groups  []tuple.IntTuple
		wantErr string
	}{
		{"empty domain", tuple.IntTuple{}, nil, nil, "no dimensions"},
		{"negative size", sizes("x", -1), nil, nil, `domain size for "x" must not be negative`},
		{"unknown tile dim", sizes("x", 8), []tuple.IntTuple{sizes("z", 2)}, nil, `tile size for unknown dimension "z"`},
		{"zero tile", sizes("x", 8), []tuple.IntTuple{sizes("x", 0)}, nil, "must be at least 1"},
		{"too many groups", sizes("x", 8), nil, []tuple.IntTuple{sizes("x", 2)}, "1 group sizes given for 0 tiling levels"},
		{"group not multiple", sizes("x", 8), []tuple.IntTuple{sizes("x", 3)}, []tuple.IntTuple{sizes("x", 4)}, "not a multiple of the tile size 3"},
		{
			"too many dims",
			sizes("a", 1, "b", 1, "c", 1, "d", 1, "e", 1, "f", 1, "g", 1, "h", 1, "i", 1),
			nil, nil, "at most 8 are supported",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPlan(tc.domain, tc.tiles, tc.groups)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestWalk_SingleLevelOrder(t *testing.T) {
	p, err := NewPlan(sizes("x", 4, "y", 6), []tuple.IntTuple{sizes("x", 2, "y", 4)}, nil)
	require.NoError(t, err)

	var got []tile
	stats, err := p.Walk(ctxlog.Background(), func(sc *idx.ScanIndices) error {
		got = append(got, record(2, sc))
		return nil
	})
	require.NoError(t, err)

	want := []tile{
		{Start: [2]idx.Idx{0, 0}, Stop: [2]idx.Idx{2, 4}, Index: [2]idx.Idx{0, 0}},
		{Start: [2]idx.Idx{0, 4}, Stop: [2]idx.Idx{2, 6}, Index: [2]idx.Idx{0, 1}},
		{Start: [2]idx.Idx{2, 0}, Stop: [2]idx.Idx{4, 4}, Index: [2]idx.Idx{1, 0}},
		{Start: [2]idx.Idx{2, 4}, Stop: [2]idx.Idx{4, 6}, Index: [2]idx.Idx{1, 1}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tiles mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int64{4}, stats.Tiles)
	assert.Equal(t, int64(24), stats.Points)
}

func TestWalk_GroupsComeFirst(t *testing.T) {
	p, err := NewPlan(sizes("x", 4, "y", 4),
		[]tuple.IntTuple{sizes("x", 1, "y", 1)},
		[]tuple.IntTuple{sizes("x", 2, "y", 2)})
	require.NoError(t, err)

	var starts [][2]idx.Idx
	_, err = p.Walk(ctxlog.Background(), func(sc *idx.ScanIndices) error {
		starts = append(starts, record(2, sc).Start)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, starts, 16)
	assert.Equal(t, [][2]idx.Idx{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {0, 2}}, starts[:5])
}

func TestWalk_InnerLevelNarrowsToOuterTile(t *testing.T) {
	p, err := NewPlan(sizes("x", 10), []tuple.IntTuple{sizes("x", 4), sizes("x", 3)}, nil)
	require.NoError(t, err)

	var got [][2]idx.Idx
	stats, err := p.Walk(ctxlog.Background(), func(sc *idx.ScanIndices) error {
		assert.LessOrEqual(t, sc.Begin[0], sc.Start[0])
		assert.GreaterOrEqual(t, sc.End[0], sc.Stop[0])
		got = append(got, [2]idx.Idx{sc.Start[0], sc.Stop[0]})
		return nil
	})
	require.NoError(t, err)

	// Outer tiles [0,4) [4,8) [8,10), each split in steps of 3.
	want := [][2]idx.Idx{{0, 3}, {3, 4}, {4, 7}, {7, 8}, {8, 10}}
	assert.Equal(t, want, got)
	assert.Equal(t, []int64{3, 5}, stats.Tiles)
	assert.Equal(t, int64(10), stats.Points)
}

func TestWalk_EmptyRange(t *testing.T) {
	p, err := NewPlan(sizes("x", 0, "y", 4), nil, nil)
	require.NoError(t, err)

	calls := 0
	stats, err := p.Walk(ctxlog.Background(), func(*idx.ScanIndices) error { calls++; return nil })
	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.Zero(t, stats.Points)
}

func TestWalk_StopsOnError(t *testing.T) {
	p, err := NewPlan(sizes("x", 8), []tuple.IntTuple{sizes("x", 1)}, nil)
	require.NoError(t, err)

	boom := errors.New("boom")
	calls := 0
	_, err = p.Walk(ctxlog.Background(), func(*idx.ScanIndices) error {
		calls++
		if calls == 3 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestWalk_Canceled(t *testing.T) {
	p, err := NewPlan(sizes("x", 8), []tuple.IntTuple{sizes("x", 1)}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(ctxlog.Background())
	cancel()
	_, err = p.Walk(ctx, func(*idx.ScanIndices) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtend(t *testing.T) {
	p, err := NewPlan(sizes("x", 8, "y", 4), nil, nil)
	require.NoError(t, err)

	e := p.Extend(sizes("x", 1, "t", 5), sizes("x", 2, "y", 3))
	assert.Equal(t, "x=[-1, 10), y=[0, 7)", e.String())
	assert.Equal(t, int64(77), e.Volume())
	assert.Equal(t, "x=[0, 8), y=[0, 4)", p.String(), "original is unchanged")
}

func TestCoverage(t *testing.T) {
	p, err := NewPlan(sizes("x", 7, "y", 5),
		[]tuple.IntTuple{sizes("x", 4, "y", 4), sizes("x", 3, "y", 1)},
		[]tuple.IntTuple{sizes("x", 4, "y", 4)})
	require.NoError(t, err)
	p = p.Extend(sizes("x", 1, "y", 2), sizes("x", 1))

	stats, err := Coverage(ctxlog.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p.Volume(), stats.Points)
	assert.Len(t, stats.Tiles, 2)
}

func TestWalkParallel_MatchesSerial(t *testing.T) {
	p, err := NewPlan(sizes("x", 33, "y", 17),
		[]tuple.IntTuple{sizes("x", 8, "y", 8), sizes("x", 2, "y", 4)},
		[]tuple.IntTuple{sizes("x", 16, "y", 8)})
	require.NoError(t, err)

	var serial []tile
	want, err := p.Walk(ctxlog.Background(), func(sc *idx.ScanIndices) error {
		serial = append(serial, record(2, sc))
		return nil
	})
	require.NoError(t, err)

	var mu sync.Mutex
	var parallel []tile
	got, err := p.WalkParallel(ctxlog.Background(), 4, func(sc *idx.ScanIndices) error {
		r := record(2, sc)
		mu.Lock()
		parallel = append(parallel, r)
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stats mismatch (-serial +parallel):\n%s", diff)
	}
	less := func(a, b tile) int {
		for d := range a.Start {
			if a.Start[d] != b.Start[d] {
				return int(a.Start[d] - b.Start[d])
			}
		}
		return 0
	}
	slices.SortFunc(serial, less)
	slices.SortFunc(parallel, less)
	assert.Equal(t, serial, parallel)
}

func TestWalkParallel_PropagatesError(t *testing.T) {
	p, err := NewPlan(sizes("x", 64), []tuple.IntTuple{sizes("x", 1)}, nil)
	require.NoError(t, err)

	boom := errors.New("boom")
	var calls atomic.Int64
	_, err = p.WalkParallel(ctxlog.Background(), 2, func(sc *idx.ScanIndices) error {
		calls.Add(1)
		if sc.Start[0] == 5 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Less(t, calls.Load(), int64(64))
}
