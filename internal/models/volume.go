package models

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Mask is a dense 3D binary volume. False voxels are background.
//
// Z is the innermost axis: voxel (x, y, z) lives at (x*Height+y)*Depth+z, so
// every scanline along Z is a contiguous run of Data.
type Mask struct {
	// Data holds the voxels in X-major order
	Data []bool

	// Width, Height, Depth are the sizes along X, Y and Z
	Width, Height, Depth int
}

// NewMask allocates an all-background mask
func NewMask(width, height, depth int) *Mask {
	return &Mask{
		Data:   make([]bool, width*height*depth),
		Width:  width,
		Height: height,
		Depth:  depth,
	}
}

// Index returns the offset of voxel (x, y, z) in Data
func (m *Mask) Index(x, y, z int) int {
	return (x*m.Height+y)*m.Depth + z
}

// At reports whether voxel (x, y, z) is foreground
func (m *Mask) At(x, y, z int) bool {
	return m.Data[m.Index(x, y, z)]
}

// Set assigns voxel (x, y, z)
func (m *Mask) Set(x, y, z int, v bool) {
	m.Data[m.Index(x, y, z)] = v
}

// Line returns the scanline at (x, y) along Z. The result aliases Data.
func (m *Mask) Line(x, y int) []bool {
	start := m.Index(x, y, 0)
	return m.Data[start : start+m.Depth]
}

// Fill sets every voxel in the half-open box [x0,x1)×[y0,y1)×[z0,z1)
func (m *Mask) Fill(x0, x1, y0, y1, z0, z1 int, v bool) {
	for x := x0; x < x1; x++ {
		for y := y0; y < y1; y++ {
			line := m.Line(x, y)
			for z := z0; z < z1; z++ {
				line[z] = v
			}
		}
	}
}

// Count returns the number of foreground voxels
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Data {
		if v {
			n++
		}
	}
	return n
}

// Equal reports whether both masks have the same dims and voxels
func (m *Mask) Equal(o *Mask) bool {
	if m.Width != o.Width || m.Height != o.Height || m.Depth != o.Depth {
		return false
	}
	for i, v := range m.Data {
		if o.Data[i] != v {
			return false
		}
	}
	return true
}

// MaskFromInts builds a mask from nested [x][y][z] values, nonzero is foreground.
// All rows must have the same length.
func MaskFromInts(values [][][]int) (*Mask, error) {
	w := len(values)
	if w == 0 {
		return NewMask(0, 0, 0), nil
	}
	h := len(values[0])
	d := 0
	if h > 0 {
		d = len(values[0][0])
	}
	m := NewMask(w, h, d)
	for x, plane := range values {
		if len(plane) != h {
			return nil, fmt.Errorf("plane %d has %d rows, expected %d", x, len(plane), h)
		}
		for y, row := range plane {
			if len(row) != d {
				return nil, fmt.Errorf("row (%d,%d) has %d values, expected %d", x, y, len(row), d)
			}
			for z, v := range row {
				m.Set(x, y, z, v != 0)
			}
		}
	}
	return m, nil
}

// LabelVolume holds one label per voxel with the same layout as Mask.
// The label type L picks the trade-off between memory and the maximum number
// of distinguishable regions.
type LabelVolume[L constraints.Unsigned] struct {
	Data []L

	Width, Height, Depth int
}

// NewLabelVolume allocates an all-background label volume
func NewLabelVolume[L constraints.Unsigned](width, height, depth int) *LabelVolume[L] {
	return &LabelVolume[L]{
		Data:   make([]L, width*height*depth),
		Width:  width,
		Height: height,
		Depth:  depth,
	}
}

// Index returns the offset of voxel (x, y, z) in Data
func (v *LabelVolume[L]) Index(x, y, z int) int {
	return (x*v.Height+y)*v.Depth + z
}

// At returns the label of voxel (x, y, z)
func (v *LabelVolume[L]) At(x, y, z int) L {
	return v.Data[v.Index(x, y, z)]
}

// Line returns the scanline at (x, y) along Z. The result aliases Data.
func (v *LabelVolume[L]) Line(x, y int) []L {
	start := v.Index(x, y, 0)
	return v.Data[start : start+v.Depth]
}

// Select returns the mask of voxels carrying label l
func (v *LabelVolume[L]) Select(l L) *Mask {
	m := NewMask(v.Width, v.Height, v.Depth)
	for i, got := range v.Data {
		m.Data[i] = got == l
	}
	return m
}

// Foreground returns the mask of all non-background voxels
func (v *LabelVolume[L]) Foreground() *Mask {
	m := NewMask(v.Width, v.Height, v.Depth)
	for i, got := range v.Data {
		m.Data[i] = got != 0
	}
	return m
}
