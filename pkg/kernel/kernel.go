// Package kernel builds and decomposes the 3×3×3 structuring elements that
// define voxel adjacency for connected-component labeling.
package kernel

import (
	"errors"
	"fmt"
	"strings"

	"ndlabel/internal/models"
)

// ErrInvalidKernel is matched by every structuring element validation failure
var ErrInvalidKernel = errors.New("invalid structuring element")

// ShapeError reports a structuring element that is not 3×3×3
type ShapeError struct {
	Width, Height, Depth int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("structuring element must be 3x3x3, got %dx%dx%d", e.Width, e.Height, e.Depth)
}

func (e *ShapeError) Unwrap() error { return ErrInvalidKernel }

// SymmetryError reports a structuring element that differs from its point
// reflection. X, Y, Z is the first voxel found to differ.
type SymmetryError struct {
	X, Y, Z int
}

func (e *SymmetryError) Error() string {
	return fmt.Sprintf("structuring element is not symmetric at (%d,%d,%d)", e.X, e.Y, e.Z)
}

func (e *SymmetryError) Unwrap() error { return ErrInvalidKernel }

// Shape names a generated structuring element
type Shape int

const (
	// Star connects the six face neighbours
	Star Shape = iota
	// Ball adds the twelve edge neighbours to Star
	Ball
	// Full connects all twenty-six neighbours
	Full
)

func (s Shape) String() string {
	switch s {
	case Star:
		return "star"
	case Ball:
		return "ball"
	case Full:
		return "full"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// ParseShape maps a shape name to its Shape
func ParseShape(name string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "star", "6":
		return Star, nil
	case "ball", "18":
		return Ball, nil
	case "full", "cube", "26":
		return Full, nil
	}
	return 0, fmt.Errorf("unknown structuring element %q (must be star, ball or full)", name)
}

// Generate builds the 3×3×3 structuring element for a shape. A voxel is set
// when its city-block distance to the centre is at most the shape's rank.
func Generate(s Shape) *models.Mask {
	rank := int(s) + 1
	m := models.NewMask(3, 3, 3)
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			for z := 0; z < 3; z++ {
				m.Set(x, y, z, abs(x-1)+abs(y-1)+abs(z-1) <= rank)
			}
		}
	}
	return m
}

// Validate checks that a structuring element is 3×3×3 and point symmetric
func Validate(structure *models.Mask) error {
	if structure.Width != 3 || structure.Height != 3 || structure.Depth != 3 {
		return &ShapeError{structure.Width, structure.Height, structure.Depth}
	}
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			for z := 0; z < 3; z++ {
				if structure.At(x, y, z) != structure.At(2-x, 2-y, 2-z) {
					return &SymmetryError{x, y, z}
				}
			}
		}
	}
	return nil
}

// Lane is one backward neighbour line of a structuring element: the Z pattern
// at lateral offset (DX, DY) from the current line.
type Lane struct {
	Pattern [3]bool
	DX, DY  int
}

// Neighbors is the decomposition of a structuring element consumed by the
// scanline labeler.
type Neighbors struct {
	// Lanes lists the non-empty backward lanes in scan order. The last entry
	// is the one during which unlabeled voxels get fresh labels.
	Lanes []Lane

	// UsePrevious is set when the voxel before the current one on the same
	// line is adjacent.
	UsePrevious bool
}

// Prepare validates a structuring element and decomposes it into backward
// lanes. Only the four lanes that precede the centre lane in (x, y) scan
// order are kept; symmetry makes the forward ones redundant.
func Prepare(structure *models.Mask) (Neighbors, error) {
	if err := Validate(structure); err != nil {
		return Neighbors{}, err
	}

	var n Neighbors
	for i := 0; i < 4; i++ {
		a, b := i/3, i%3
		line := structure.Line(a, b)
		lane := Lane{Pattern: [3]bool{line[0], line[1], line[2]}, DX: a - 1, DY: b - 1}
		if lane.Pattern == [3]bool{} {
			continue
		}
		n.Lanes = append(n.Lanes, lane)
	}
	n.UsePrevious = structure.At(1, 1, 0)
	return n, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
