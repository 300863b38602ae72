package pdfcpu

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/archivelab/scriptorium/pkg/converter"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

var _ converter.Provider = (*Client)(nil)

// Client converts scanned page images into a single PDF in-process.
type Client struct {
}

func New() *Client {
	return &Client{}
}

func (c *Client) Convert(ctx context.Context, imagePaths []string, pdfPath string) (int, error) {
	if len(imagePaths) == 0 {
		return 0, converter.ErrNoPages
	}

	for _, path := range imagePaths {
		info, err := os.Stat(path)

		if err != nil {
			return 0, fmt.Errorf("source image %s: %w", path, err)
		}

		if info.Size() == 0 {
			return 0, fmt.Errorf("source image %s: %w", path, errors.New("empty file"))
		}
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := api.ImportImagesFile(imagePaths, pdfPath, nil, nil); err != nil {
		return 0, fmt.Errorf("import images: %w", err)
	}

	pages, err := api.PageCountFile(pdfPath)

	if err != nil {
		return 0, fmt.Errorf("page count: %w", err)
	}

	if pages == 0 {
		return 0, converter.ErrNoPages
	}

	return pages, nil
}
