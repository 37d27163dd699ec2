package recycler

import (
	"math"
	"sort"
)

// SizeFunc reports the extent of the item at index along the scroll axis.
type SizeFunc func(index int) float64

// Table holds the extent and start of every item. Starts are distances from
// the content origin and already include the near padding.
type Table struct {
	axis     Axis
	sizes    []float64
	starts   []float64
	spacing  float64
	nearPad  float64
	farPad   float64
	mean     float64
	extent   float64
	variable bool
}

// buildTable computes sizes, starts and the aggregate extent for count items.
// This is O(n) and only runs when the item count or configuration changes.
func buildTable(count int, size SizeFunc, o *options, viewport float64) (*Table, error) {
	if count <= 0 {
		return nil, ErrEmptyTable
	}
	t := &Table{
		axis:    o.axis,
		sizes:   make([]float64, count),
		starts:  make([]float64, count),
		spacing: o.spacing,
	}
	query := o.dynamicSize && size != nil
	for i := range t.sizes {
		if query {
			t.sizes[i] = size(i)
		} else {
			t.sizes[i] = o.fixedSize
		}
	}

	if o.snap {
		t.nearPad, t.farPad = snapPadding(o, viewport, t.sizes[0], t.sizes[count-1])
	} else {
		t.nearPad, t.farPad = o.padNear, o.padFar
	}

	var sum float64
	if o.dynamicSize {
		for i, s := range t.sizes {
			t.starts[i] = t.nearPad + float64(i)*t.spacing + sum
			sum += s
		}
		t.mean = sum / float64(count)
		t.variable = t.classify(o.sizeMode)
	} else {
		step := o.fixedSize + t.spacing
		for i := range t.starts {
			t.starts[i] = t.nearPad + float64(i)*step
		}
		sum = o.fixedSize * float64(count)
		t.mean = o.fixedSize
	}
	t.extent = sum + t.spacing*float64(count-1) + t.nearPad + t.farPad
	return t, nil
}

func (t *Table) classify(mode SizeMode) bool {
	switch mode {
	case SizeUniform:
		return false
	case SizeVariable:
		return true
	}
	for _, s := range t.sizes[1:] {
		if !approxEqual(s, t.sizes[0]) {
			return true
		}
	}
	return false
}

// Len returns the number of items in the table.
func (t *Table) Len() int { return len(t.sizes) }

// Size returns the extent of item i.
func (t *Table) Size(i int) float64 { return t.sizes[i] }

// Start returns the distance from the content origin to item i.
func (t *Table) Start(i int) float64 { return t.starts[i] }

// End returns the distance from the content origin to the far edge of item i.
func (t *Table) End(i int) float64 { return t.starts[i] + t.sizes[i] }

// Position returns the anchored coordinate of item i for the table's axis.
func (t *Table) Position(i int) float64 { return t.axis.sign() * t.starts[i] }

// Extent returns the total content extent including padding.
func (t *Table) Extent() float64 { return t.extent }

// Mean returns the mean item extent.
func (t *Table) Mean() float64 { return t.mean }

// Spacing returns the gap between items.
func (t *Table) Spacing() float64 { return t.spacing }

// Padding returns the resolved near and far padding.
func (t *Table) Padding() (near, far float64) { return t.nearPad, t.farPad }

// Variable reports whether the list takes the variable-size path.
func (t *Table) Variable() bool { return t.variable }

// OffsetBefore returns the scroll offset that puts item i right after the
// near padding: the summed extents and gaps of every item before it.
func (t *Table) OffsetBefore(i int) float64 {
	if i <= 0 {
		return 0
	}
	if i >= len(t.starts) {
		return t.extent - t.nearPad - t.farPad + t.spacing
	}
	return t.starts[i] - t.nearPad
}

// span returns the summed extents and gaps of items in [from, to).
func (t *Table) span(from, to int) float64 {
	var sum float64
	for i := max(0, from); i < min(to, len(t.sizes)); i++ {
		sum += t.sizes[i] + t.spacing
	}
	return sum
}

// IndexAt returns the item whose cell (extent plus trailing gap) contains
// offset, clamped into the table.
func (t *Table) IndexAt(offset float64) int {
	i := sort.Search(len(t.starts), func(i int) bool {
		return t.starts[i]+t.sizes[i]+t.spacing > offset
	})
	return min(i, len(t.starts)-1)
}

// approxEqual compares floats with a tolerance relative to their magnitude.
func approxEqual(a, b float64) bool {
	return math.Abs(b-a) < math.Max(1e-6*math.Max(math.Abs(a), math.Abs(b)), 1e-9)
}
