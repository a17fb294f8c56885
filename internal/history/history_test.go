package history

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/wxcore/internal/errcode"
	"github.com/chrissnell/wxcore/internal/types"
)

var t0 = time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

func reading(min int, temp float32) types.Reading {
	return types.Reading{Timestamp: t0.Add(time.Duration(min) * time.Minute), OutTemp: temp}
}

func temps(h *History) []float32 {
	var out []float32
	for _, r := range h.All() {
		out = append(out, r.OutTemp)
	}
	return out
}

func TestNewRejectsBadCapacity(t *testing.T) {
	for _, c := range []int{0, -1} {
		_, err := New(c)
		assert.ErrorIs(t, err, errcode.InvalidArgument)
	}

	h := NewDefault()
	assert.Equal(t, DefaultCapacity, h.Capacity())
	assert.Equal(t, 0, h.Len())
}

func TestAppendKeepsNewestWithinCapacity(t *testing.T) {
	h, err := New(3)
	require.NoError(t, err)

	var evicted []int
	for i := 1; i <= 5; i++ {
		evicted = append(evicted, h.Append(reading(i, float32(i))))
		if i >= 3 {
			assert.Equal(t, 3, h.Len())
		}
	}

	assert.Equal(t, []int{0, 0, 0, 1, 1}, evicted)
	assert.Equal(t, []float32{3, 4, 5}, temps(h))

	first, ok := h.At(0)
	require.True(t, ok)
	assert.Equal(t, float32(3), first.OutTemp)

	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, float32(5), latest.OutTemp)

	_, ok = h.At(3)
	assert.False(t, ok)
	_, ok = h.At(-1)
	assert.False(t, ok)
}

func TestEvictOlderThan(t *testing.T) {
	tests := []struct {
		name    string
		minutes []int
		cutoff  int
		removed int
		want    []float32
	}{
		{"empty", nil, 10, 0, nil},
		{"none old", []int{10, 11, 12}, 5, 0, []float32{10, 11, 12}},
		{"prefix", []int{1, 2, 3, 4}, 3, 2, []float32{3, 4}},
		{"all", []int{1, 2}, 60, 2, nil},
		{"out of order", []int{5, 1, 7, 2, 9}, 5, 2, []float32{5, 7, 9}},
		{"exact cutoff kept", []int{4, 5}, 5, 1, []float32{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := New(10)
			require.NoError(t, err)
			for _, m := range tt.minutes {
				h.Append(reading(m, float32(m)))
			}

			removed := h.EvictOlderThan(t0.Add(time.Duration(tt.cutoff) * time.Minute))
			assert.Equal(t, tt.removed, removed)
			assert.Equal(t, tt.want, temps(h))
			assert.Equal(t, 10, h.Capacity())
		})
	}
}

func TestEvictOlderThanAgeUsesClock(t *testing.T) {
	clock := clockwork.NewFakeClockAt(t0.Add(30 * time.Minute))
	h, err := New(5, WithClock(clock))
	require.NoError(t, err)

	h.Append(reading(0, 0))
	h.Append(reading(20, 20))
	h.Append(reading(25, 25))

	assert.Equal(t, 1, h.EvictOlderThanAge(15*time.Minute))
	assert.Equal(t, []float32{20, 25}, temps(h))

	clock.Advance(time.Hour)
	assert.Equal(t, 2, h.EvictOlderThanAge(15*time.Minute))
	assert.Equal(t, 0, h.Len())
}

func TestReadingsIsACopy(t *testing.T) {
	h := NewDefault()
	h.Append(reading(1, 1))

	rs := h.Readings()
	rs[0].OutTemp = 99

	r, _ := h.At(0)
	assert.Equal(t, float32(1), r.OutTemp)
}

func TestAllAllowsReentry(t *testing.T) {
	h := NewDefault()
	h.Append(reading(1, 1))
	h.Append(reading(2, 2))

	for i := range h.All() {
		if i == 0 {
			h.Append(reading(3, 3))
		}
	}
	assert.Equal(t, 3, h.Len())

	var seen int
	for range h.All() {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestConcurrentAppend(t *testing.T) {
	h, err := New(50)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				h.Append(reading(i, float32(i)))
				h.Readings()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, h.Len())
}
