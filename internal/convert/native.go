// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/docbatch/internal/describe"
	"github.com/pdiddy/docbatch/pkg/types"
)

// Backend is a Converter for a fixed set of file extensions.
type Backend interface {
	Converter

	// Name identifies the backend in logs.
	Name() string

	// Accepts reports whether the backend handles files with the given
	// lowercased, dot-prefixed extension.
	Accepts(ext string) bool
}

// Router dispatches each file to the first backend that accepts its
// extension. Files no backend accepts go to the fallback converter, or fail
// with ErrUnsupportedFormat when there is none.
type Router struct {
	backends []Backend
	fallback Converter
}

// NewRouter creates a router over backends, consulted in order.
func NewRouter(fallback Converter, backends ...Backend) *Router {
	return &Router{backends: backends, fallback: fallback}
}

// NewNative returns a router over the in-process backends. d may be nil, in
// which case images are described by their metadata only.
func NewNative(d describe.Describer, fallback Converter) *Router {
	return NewRouter(fallback,
		textBackend{},
		csvBackend{},
		jsonBackend{},
		xmlBackend{},
		htmlBackend{},
		pdfBackend{},
		imageBackend{describer: d},
	)
}

// Select returns the backend for ext, or nil.
func (r *Router) Select(ext string) Backend {
	for _, b := range r.backends {
		if b.Accepts(ext) {
			return b
		}
	}
	return nil
}

// Names lists the registered backends in dispatch order.
func (r *Router) Names() []string {
	names := make([]string, len(r.backends))
	for i, b := range r.backends {
		names[i] = b.Name()
	}
	return names
}

// Convert implements Converter.
func (r *Router) Convert(ctx context.Context, path string) (string, error) {
	ext := types.Ext(path)
	if b := r.Select(ext); b != nil {
		content, err := b.Convert(ctx, path)
		if err != nil {
			return "", fmt.Errorf("%s: %w", b.Name(), err)
		}
		return content, nil
	}
	if r.fallback != nil {
		return r.fallback.Convert(ctx, path)
	}
	if ext == "" {
		return "", fmt.Errorf("%w: file has no extension", ErrUnsupportedFormat)
	}
	return "", fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedFormat, ext, strings.Join(r.Names(), ", "))
}

// extSet is an Accepts helper over a fixed list of extensions.
type extSet []string

func (s extSet) Accepts(ext string) bool {
	for _, e := range s {
		if e == ext {
			return true
		}
	}
	return false
}
