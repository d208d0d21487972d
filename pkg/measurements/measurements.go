// Package measurements derives per-component statistics from label volumes.
package measurements

import (
	"sort"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/stat"

	"ndlabel/internal/models"
	"ndlabel/pkg/labeling"
)

// LabelHistogram counts the voxels of every label in 0..featureCount.
// Bucket 0 is the background.
func LabelHistogram[L constraints.Unsigned](labels *models.LabelVolume[L], featureCount int) []int {
	count := make([]int, featureCount+1)
	for _, l := range labels.Data {
		count[l]++
	}
	return count
}

// MostFrequentLabel returns the largest component's label and voxel count.
// Ties go to the lowest label. ok is false when there is no foreground voxel.
func MostFrequentLabel[L constraints.Unsigned](labels *models.LabelVolume[L], featureCount int) (label L, count int, ok bool) {
	hist := LabelHistogram(labels, featureCount)
	best := 0
	for i := 1; i < len(hist); i++ {
		if hist[i] > count {
			best, count = i, hist[i]
		}
	}
	if count == 0 {
		return 0, 0, false
	}
	return L(best), count, true
}

// LargestConnectedComponents returns the mask of the largest component of
// mask under structure. ok is false when mask has no foreground voxel.
func LargestConnectedComponents(mask, structure *models.Mask) (largest *models.Mask, ok bool, err error) {
	labels, features, err := labeling.Label[uint32](mask, structure)
	if err != nil {
		return nil, false, err
	}
	best, _, ok := MostFrequentLabel(labels, features)
	if !ok {
		return nil, false, nil
	}
	return labels.Select(best), true, nil
}

// Summary describes the component size distribution of a label volume
type Summary struct {
	Features   int
	Foreground int

	// Component sizes in voxels
	MeanSize   float64
	StdDevSize float64
	MedianSize float64
	MinSize    int
	MaxSize    int
}

// Summarize computes a Summary from a label volume
func Summarize[L constraints.Unsigned](labels *models.LabelVolume[L], featureCount int) Summary {
	hist := LabelHistogram(labels, featureCount)
	s := Summary{Features: featureCount}
	if featureCount == 0 {
		return s
	}

	sizes := make([]float64, featureCount)
	s.MinSize = hist[1]
	for i, n := range hist[1:] {
		sizes[i] = float64(n)
		s.Foreground += n
		s.MinSize = min(s.MinSize, n)
		s.MaxSize = max(s.MaxSize, n)
	}

	s.MeanSize = stat.Mean(sizes, nil)
	if featureCount > 1 {
		s.StdDevSize = stat.StdDev(sizes, nil)
	}
	sort.Float64s(sizes)
	s.MedianSize = stat.Quantile(0.5, stat.Empirical, sizes, nil)
	return s
}
