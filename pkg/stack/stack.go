// Package stack reads and writes binary volumes as directories of 2D slice
// images. Slice k of the directory is the X plane x=k; image rows run along Y
// and image columns along Z.
package stack

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"ndlabel/internal/models"
)

// LoadSlices reads every JPEG or PNG image in dir, ordered by the numeric part
// of the filename.
func LoadSlices(dir string) ([]models.Slice, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no JPG or PNG images found in %s", dir)
	}

	sort.SliceStable(names, func(i, j int) bool {
		return extractNumber(names[i]) < extractNumber(names[j])
	})

	slices := make([]models.Slice, 0, len(names))
	for i, name := range names {
		img, err := loadImage(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to load image %s: %w", name, err)
		}
		if i > 0 && img.Bounds().Size() != slices[0].Image.Bounds().Size() {
			return nil, fmt.Errorf("image %s is %v, expected %v", name, img.Bounds().Size(), slices[0].Image.Bounds().Size())
		}
		slices = append(slices, models.Slice{Image: img, Index: i, Filename: name})
	}
	return slices, nil
}

// LoadMask reads a slice directory and thresholds it: a voxel is foreground
// when its grey level in [0,1] is at least threshold.
func LoadMask(dir string, threshold float64) (*models.Mask, error) {
	slices, err := LoadSlices(dir)
	if err != nil {
		return nil, err
	}
	return Threshold(slices, threshold), nil
}

// Threshold converts a slice stack to a mask
func Threshold(slices []models.Slice, threshold float64) *models.Mask {
	if len(slices) == 0 {
		return models.NewMask(0, 0, 0)
	}
	size := slices[0].Image.Bounds().Size()
	m := models.NewMask(len(slices), size.Y, size.X)
	for x, s := range slices {
		b := s.Image.Bounds()
		for y := 0; y < size.Y; y++ {
			line := m.Line(x, y)
			for z := 0; z < size.X; z++ {
				line[z] = grey(s.Image.At(b.Min.X+z, b.Min.Y+y)) >= threshold
			}
		}
	}
	return m
}

// SaveMask writes every X plane of m as a black and white PNG
func SaveMask(m *models.Mask, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for x := 0; x < m.Width; x++ {
		img := image.NewGray(image.Rect(0, 0, m.Depth, m.Height))
		for y := 0; y < m.Height; y++ {
			for z, v := range m.Line(x, y) {
				if v {
					img.SetGray(z, y, color.Gray{Y: 255})
				}
			}
		}
		if err := savePNG(img, filepath.Join(dir, fmt.Sprintf("%03d.png", x))); err != nil {
			return err
		}
	}
	return nil
}

// extractNumber extracts the numeric part from a filename
func extractNumber(filename string) int {
	base := filepath.Base(filename)
	numStr := ""
	for _, c := range base {
		if c >= '0' && c <= '9' {
			numStr += string(c)
		}
	}

	if numStr != "" {
		num, err := strconv.Atoi(numStr)
		if err == nil {
			return num
		}
	}
	return 0
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	return img, err
}

func savePNG(img image.Image, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return file.Close()
}

// grey returns the 16-bit luminance of c scaled to [0,1]
func grey(c color.Color) float64 {
	g := color.Gray16Model.Convert(c).(color.Gray16)
	return float64(g.Y) / 65535.0
}
