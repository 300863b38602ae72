package converter

import (
	"context"
	"errors"
)

type Provider interface {
	// Convert renders the source images into a single PDF at pdfPath
	// and returns the resulting page count.
	Convert(ctx context.Context, imagePaths []string, pdfPath string) (int, error)
}

var (
	ErrNoPages = errors.New("conversion produced no pages")
)
