// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/docbatch/internal/container"
	"github.com/pdiddy/docbatch/pkg/types"
)

const imageMarkitdown = "markitdown:latest"

// MarkitdownConverter converts files by piping them through the markitdown
// container image. It handles every format markitdown supports, including
// Office documents the native backend cannot read.
type MarkitdownConverter struct {
	runtime container.Runtime
	plugins bool
}

// NewMarkitdownConverter creates a converter that uses rt to run the
// markitdown image. It verifies that the image exists locally. When plugins
// is set, markitdown is started with --use-plugins.
func NewMarkitdownConverter(rt container.Runtime, plugins bool) (*MarkitdownConverter, error) {
	if err := rt.ImageExists(imageMarkitdown); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &MarkitdownConverter{runtime: rt, plugins: plugins}, nil
}

// Args returns the markitdown arguments used for a file with extension ext.
// The extension hint matters because markitdown only sees stdin.
func (m *MarkitdownConverter) Args(ext string) []string {
	var args []string
	if e := strings.TrimPrefix(ext, "."); e != "" {
		args = append(args, "-x", e)
	}
	if m.plugins {
		args = append(args, "--use-plugins")
	}
	return args
}

// Convert streams the file at path through markitdown and returns the
// resulting Markdown text.
func (m *MarkitdownConverter) Convert(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := m.runtime.Run(ctx, imageMarkitdown, m.Args(types.Ext(path)), f, &out); err != nil {
		return "", fmt.Errorf("converting with markitdown: %w", err)
	}
	return out.String(), nil
}
