// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/docbatch/internal/describe"
)

// imageBackend reports an image's format and size and, when a describer is
// configured, appends the model's description.
type imageBackend struct {
	describer describe.Describer
}

func (imageBackend) Name() string { return "image" }

func (imageBackend) Accepts(ext string) bool {
	return extSet{".jpg", ".jpeg", ".png", ".gif"}.Accepts(ext)
}

func (b imageBackend) Convert(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	cfg, format, err := image.DecodeConfig(f)
	f.Close()
	if err != nil {
		return "", fmt.Errorf("decoding image header: %w", err)
	}

	var md strings.Builder
	fmt.Fprintf(&md, "# Image: %s\n\n", filepath.Base(path))
	fmt.Fprintf(&md, "- Format: %s\n", format)
	fmt.Fprintf(&md, "- Dimensions: %dx%d\n", cfg.Width, cfg.Height)

	if b.describer != nil {
		desc, err := b.describer.Describe(ctx, path, "image/"+format)
		if err != nil {
			return "", fmt.Errorf("describing image: %w", err)
		}
		if desc != "" {
			fmt.Fprintf(&md, "\n# Description:\n%s\n", desc)
		}
	}
	return md.String(), nil
}
