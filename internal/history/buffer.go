package history

import "github.com/chrissnell/wxcore/internal/types"

// buffer is the ordered storage underneath History. It knows nothing about
// capacity or age; History applies those policies.
type buffer struct {
	items []types.Reading
}

func (b *buffer) len() int { return len(b.items) }

func (b *buffer) pushBack(r types.Reading) {
	b.items = append(b.items, r)
}

// dropFront removes the n oldest items
func (b *buffer) dropFront(n int) {
	if n <= 0 {
		return
	}
	if n >= len(b.items) {
		clear(b.items)
		b.items = b.items[:0]
		return
	}
	// shift down so the backing array doesn't grow without bound
	m := copy(b.items, b.items[n:])
	clear(b.items[m:])
	b.items = b.items[:m]
}

// retain keeps, in order, the items for which keep returns true and reports
// how many were removed
func (b *buffer) retain(keep func(types.Reading) bool) int {
	j := 0
	for _, r := range b.items {
		if keep(r) {
			b.items[j] = r
			j++
		}
	}
	removed := len(b.items) - j
	clear(b.items[j:])
	b.items = b.items[:j]
	return removed
}

func (b *buffer) at(i int) types.Reading { return b.items[i] }

func (b *buffer) snapshot() []types.Reading {
	out := make([]types.Reading, len(b.items))
	copy(out, b.items)
	return out
}
