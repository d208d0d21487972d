package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/exp/constraints"

	"ndlabel/internal/models"
)

// goldenAngle spreads consecutive labels around the hue circle
const goldenAngle = 137.50776405003785

// Viewer renders planes of a label volume with one colour per label
type Viewer[L constraints.Unsigned] struct {
	labels *models.LabelVolume[L]
}

// NewViewer creates a viewer over a label volume
func NewViewer[L constraints.Unsigned](labels *models.LabelVolume[L]) *Viewer[L] {
	return &Viewer[L]{labels: labels}
}

// LabelColor returns the display colour of a label. Background is black.
func LabelColor[L constraints.Unsigned](l L) color.RGBA {
	if l == 0 {
		return color.RGBA{A: 255}
	}
	hue := math.Mod(float64(l)*goldenAngle, 360)
	r, g, b := colorful.Hsv(hue, 0.75, 0.95).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// ExtractSlice renders the plane at position along axis.
// An X plane is Depth wide and Height tall, a Y plane Depth wide and Width
// tall, a Z plane Height wide and Width tall.
func (v *Viewer[L]) ExtractSlice(axis string, position int) (image.Image, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	lv := v.labels
	var img *image.RGBA

	switch axis {
	case "x", "X":
		if position >= lv.Width {
			return nil, fmt.Errorf("position %d exceeds width %d", position, lv.Width)
		}
		img = image.NewRGBA(image.Rect(0, 0, lv.Depth, lv.Height))
		for y := 0; y < lv.Height; y++ {
			for z, l := range lv.Line(position, y) {
				img.SetRGBA(z, y, LabelColor(l))
			}
		}

	case "y", "Y":
		if position >= lv.Height {
			return nil, fmt.Errorf("position %d exceeds height %d", position, lv.Height)
		}
		img = image.NewRGBA(image.Rect(0, 0, lv.Depth, lv.Width))
		for x := 0; x < lv.Width; x++ {
			for z, l := range lv.Line(x, position) {
				img.SetRGBA(z, x, LabelColor(l))
			}
		}

	case "z", "Z":
		if position >= lv.Depth {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, lv.Depth)
		}
		img = image.NewRGBA(image.Rect(0, 0, lv.Height, lv.Width))
		for x := 0; x < lv.Width; x++ {
			for y := 0; y < lv.Height; y++ {
				img.SetRGBA(y, x, LabelColor(lv.At(x, y, position)))
			}
		}

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	return img, nil
}

// SaveSlice saves an extracted slice as a PNG image
func (v *Viewer[L]) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// SaveSliceSequence extracts and saves every plane along the specified axis
func (v *Viewer[L]) SaveSliceSequence(axis string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	var maxPos int
	switch axis {
	case "x", "X":
		maxPos = v.labels.Width
	case "y", "Y":
		maxPos = v.labels.Height
	case "z", "Z":
		maxPos = v.labels.Depth
	default:
		return fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.png", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}
