package models

import (
	"image"
)

// Slice represents a single 2D image of a volume stack with metadata
type Slice struct {
	// Image is the decoded slice image
	Image image.Image

	// Index is the position of this slice in the stack
	Index int

	// Filename is the original filename of the slice
	Filename string
}
