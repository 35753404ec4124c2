// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// readText reads path as UTF-8, replacing invalid sequences.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	return strings.ToValidUTF8(string(data), "�"), nil
}

func fenced(lang, body string) string {
	return "```" + lang + "\n" + strings.TrimRight(body, "\n") + "\n```\n"
}

// textBackend passes plain text and Markdown through unchanged.
type textBackend struct{}

func (textBackend) Name() string { return "text" }

func (textBackend) Accepts(ext string) bool {
	return extSet{".txt", ".text", ".md", ".markdown"}.Accepts(ext)
}

func (textBackend) Convert(_ context.Context, path string) (string, error) {
	return readText(path)
}

// csvBackend renders a CSV file as a Markdown table whose first row is the header.
type csvBackend struct{}

func (csvBackend) Name() string { return "csv" }

func (csvBackend) Accepts(ext string) bool { return ext == ".csv" }

func (csvBackend) Convert(_ context.Context, path string) (string, error) {
	text, err := readText(path)
	if err != nil {
		return "", err
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parsing csv: %w", err)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return markdownTable(rows), nil
}

// markdownTable pads short rows so every row has the header's width or wider.
func markdownTable(rows [][]string) string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for i := 0; i < width; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			cell = strings.ReplaceAll(strings.TrimSpace(cell), "|", `\|`)
			cell = strings.ReplaceAll(cell, "\n", " ")
			b.WriteString(" " + cell + " |")
		}
		b.WriteString("\n")
	}

	writeRow(rows[0])
	sep := make([]string, width)
	for i := range sep {
		sep[i] = "---"
	}
	b.WriteString("| " + strings.Join(sep, " | ") + " |\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}
	return b.String()
}

// jsonBackend pretty-prints JSON inside a fenced block. Invalid JSON fails.
type jsonBackend struct{}

func (jsonBackend) Name() string { return "json" }

func (jsonBackend) Accepts(ext string) bool { return ext == ".json" }

func (jsonBackend) Convert(_ context.Context, path string) (string, error) {
	text, err := readText(path)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, []byte(text), "", "  "); err != nil {
		return "", fmt.Errorf("parsing json: %w", err)
	}
	return fenced("json", out.String()), nil
}

// xmlBackend checks that XML is well formed and wraps it in a fenced block.
type xmlBackend struct{}

func (xmlBackend) Name() string { return "xml" }

func (xmlBackend) Accepts(ext string) bool { return ext == ".xml" }

func (xmlBackend) Convert(_ context.Context, path string) (string, error) {
	text, err := readText(path)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	dec := xml.NewDecoder(strings.NewReader(text))
	dec.Strict = true
	// readText already produced valid UTF-8 whatever the prolog declares.
	dec.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) { return in, nil }
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing xml: %w", err)
		}
	}
	return fenced("xml", text), nil
}
