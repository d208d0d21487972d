// Package labeling assigns a distinct label to every connected component of a
// 3D binary volume.
//
// The volume is swept one Z scanline at a time, lines ordered by X then Y.
// Each line is merged with the already labeled lines selected by the
// structuring element's backward lanes; same-line adjacency and fresh label
// allocation are folded into the last of those merges. A final pass compacts
// the equivalence table and remaps the provisional labels in place. The
// result matches scipy.ndimage.label.
package labeling

import (
	"fmt"

	"golang.org/x/exp/constraints"

	"ndlabel/internal/models"
	"ndlabel/pkg/equivalence"
	"ndlabel/pkg/kernel"
)

// ProgressCallback is called after each completed X plane of the sweep
type ProgressCallback func(completed, total int)

// Options tunes a labeling run
type Options struct {
	// Progress, if set, receives per-plane progress
	Progress ProgressCallback
}

// Label labels the features of mask under a 3×3×3 point-symmetric structuring
// element and returns the label volume together with the number of features.
func Label[L constraints.Unsigned](mask, structure *models.Mask) (*models.LabelVolume[L], int, error) {
	return LabelWithOptions[L](mask, structure, Options{})
}

// LabelWithOptions is Label with progress reporting
func LabelWithOptions[L constraints.Unsigned](mask, structure *models.Mask, opts Options) (*models.LabelVolume[L], int, error) {
	neighbors, err := kernel.Prepare(structure)
	if err != nil {
		return nil, 0, err
	}

	s := newScanner[L](mask, neighbors)
	for x := 0; x < mask.Width; x++ {
		for y := 0; y < mask.Height; y++ {
			if err := s.labelLine(x, y); err != nil {
				return nil, 0, fmt.Errorf("labeling line (%d,%d): %w", x, y, err)
			}
		}
		if opts.Progress != nil {
			opts.Progress(x+1, mask.Width)
		}
	}

	return s.assemble()
}

// scanner holds the state of one labeling run
type scanner[L constraints.Unsigned] struct {
	mask      *models.Mask
	neighbors kernel.Neighbors
	table     *equivalence.Table[L]
	labels    *models.LabelVolume[L]

	// line and window carry one background cell on each side
	line   []L
	window []L
	empty  []L
}

func newScanner[L constraints.Unsigned](mask *models.Mask, neighbors kernel.Neighbors) *scanner[L] {
	n := mask.Depth + 2
	return &scanner[L]{
		mask:      mask,
		neighbors: neighbors,
		table:     equivalence.New[L](),
		labels:    models.NewLabelVolume[L](mask.Width, mask.Height, mask.Depth),
		line:      make([]L, n),
		window:    make([]L, n),
		empty:     make([]L, n),
	}
}

func (s *scanner[L]) labelLine(x, y int) error {
	for z, v := range s.mask.Line(x, y) {
		if v {
			s.line[z+1] = equivalence.Sentinel
		} else {
			s.line[z+1] = equivalence.Background
		}
	}

	needsSelfLabeling := true
	last := len(s.neighbors.Lanes) - 1
	for i, lane := range s.neighbors.Lanes {
		nx, ny := x+lane.DX, y+lane.DY
		if nx < 0 || nx >= s.mask.Width || ny < 0 || ny >= s.mask.Height {
			continue
		}
		copy(s.window[1:], s.labels.Line(nx, ny))
		if err := s.mergeLine(s.window, lane.Pattern, i == last); err != nil {
			return err
		}
		if i == last {
			needsSelfLabeling = false
		}
	}

	if needsSelfLabeling {
		if err := s.mergeLine(s.empty, [3]bool{}, true); err != nil {
			return err
		}
	}

	copy(s.labels.Line(x, y), s.line[1:len(s.line)-1])
	return nil
}

// mergeLine merges the current line with one neighbour line. When
// labelUnlabeled is set it also applies same-line adjacency and allocates a
// label for every foreground voxel still carrying the sentinel.
func (s *scanner[L]) mergeLine(neighbors []L, pattern [3]bool, labelUnlabeled bool) error {
	line := s.line
	for i := 1; i < len(line)-1; i++ {
		if line[i] == equivalence.Background {
			continue
		}
		for k, on := range pattern {
			if on {
				line[i] = s.table.Merge(line[i], neighbors[i-1+k])
			}
		}
		if !labelUnlabeled {
			continue
		}
		if s.neighbors.UsePrevious {
			line[i] = s.table.Merge(line[i], line[i-1])
		}
		if line[i] == equivalence.Sentinel {
			l, err := s.table.Allocate()
			if err != nil {
				return err
			}
			line[i] = l
		}
	}
	return nil
}

// assemble compacts the equivalences and rewrites the provisional labels
func (s *scanner[L]) assemble() (*models.LabelVolume[L], int, error) {
	features := s.table.Compact()
	for i, l := range s.labels.Data {
		s.labels.Data[i] = s.table.Lookup(l)
	}
	return s.labels, features, nil
}
