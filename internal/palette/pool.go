// Package palette manages the bounded set of indicator colors that mark
// active sharing relationships between widgets.
//
// A [Pool] hands out the lowest-index free color of a fixed, ordered palette
// and takes colors back when a relationship ends. Sort-order sharing and
// value-scale sharing draw from two independent pools over the same palette
// (see [Pools]).
package palette

import (
	"fmt"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a normalized "#rrggbb" palette entry.
type Color string

// None is the zero Color, meaning no indicator color is held.
const None Color = ""

// DefaultColors is the indicator palette used when none is configured.
var DefaultColors = []string{
	"#AA8F66", "#ED9B40", "#2E5E61", "#BA3B46", "#823021", "#B58D17", "#125d98",
}

// ParseColor validates a hex color and returns its normalized form.
func ParseColor(s string) (Color, error) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return None, fmt.Errorf("invalid palette color %q: %w", s, err)
	}
	return Color(c.Hex()), nil
}

// Pool allocates colors from a fixed palette. A color is in use iff some
// relationship currently holds it. It is safe for concurrent use.
type Pool struct {
	mu     sync.Mutex
	colors []Color
	used   []bool
}

// NewPool builds a pool over the given hex colors. The palette must be
// non-empty and free of duplicates.
func NewPool(colors []string) (*Pool, error) {
	if len(colors) == 0 {
		return nil, fmt.Errorf("palette must contain at least one color")
	}
	seen := make(map[Color]bool, len(colors))
	parsed := make([]Color, 0, len(colors))
	for _, s := range colors {
		c, err := ParseColor(s)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			return nil, fmt.Errorf("duplicate palette color %q", s)
		}
		seen[c] = true
		parsed = append(parsed, c)
	}
	return &Pool{colors: parsed, used: make([]bool, len(parsed))}, nil
}

// Allocate marks the lowest-index free color as used and returns it.
// ok is false when every color is taken.
func (p *Pool) Allocate() (Color, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, inUse := range p.used {
		if !inUse {
			p.used[i] = true
			return p.colors[i], true
		}
	}
	return None, false
}

// Release returns c to the pool. Releasing a free or unknown color is a no-op.
func (p *Pool) Release(c Color) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i := p.indexOf(c); i >= 0 {
		p.used[i] = false
	}
}

// InUse reports whether c is currently allocated.
func (p *Pool) InUse(c Color) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.indexOf(c)
	return i >= 0 && p.used[i]
}

// UsedCount returns the number of allocated colors.
func (p *Pool) UsedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, inUse := range p.used {
		if inUse {
			n++
		}
	}
	return n
}

// Size returns the palette length.
func (p *Pool) Size() int {
	return len(p.colors)
}

// Colors returns a copy of the palette in allocation order.
func (p *Pool) Colors() []Color {
	out := make([]Color, len(p.colors))
	copy(out, p.colors)
	return out
}

// Reset releases every color.
func (p *Pool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.used {
		p.used[i] = false
	}
}

func (p *Pool) indexOf(c Color) int {
	if c == None {
		return -1
	}
	norm, err := ParseColor(string(c))
	if err != nil {
		return -1
	}
	for i, pc := range p.colors {
		if pc == norm {
			return i
		}
	}
	return -1
}

// Pools holds the two independent indicator pools.
type Pools struct {
	SortOrder  *Pool
	ValueScale *Pool
}

// NewPools builds both pools over the same palette.
func NewPools(colors []string) (*Pools, error) {
	sortOrder, err := NewPool(colors)
	if err != nil {
		return nil, err
	}
	valueScale, err := NewPool(colors)
	if err != nil {
		return nil, err
	}
	return &Pools{SortOrder: sortOrder, ValueScale: valueScale}, nil
}

// Reset releases every color in both pools.
func (p *Pools) Reset() {
	p.SortOrder.Reset()
	p.ValueScale.Reset()
}
