// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docbatch/internal/history"
	"github.com/pdiddy/docbatch/internal/secrets"
	"github.com/pdiddy/docbatch/pkg/types"
)

func TestSecretDefault(t *testing.T) {
	prev := loadedSecrets
	t.Cleanup(func() { loadedSecrets = prev })
	loadedSecrets = secrets.Set{secrets.KeyOpenAI: "sk-file"}

	assert.Equal(t, "sk-env", secretDefault(secrets.KeyOpenAI, "sk-env"))
	assert.Equal(t, "sk-file", secretDefault(secrets.KeyOpenAI, ""))
	assert.Empty(t, secretDefault("missing", ""))
}

func TestNewDescriber(t *testing.T) {
	d, err := newDescriber(types.AIConfig{Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = newDescriber(types.AIConfig{Model: "gpt-4o", APIKey: "sk-test"})
	require.NoError(t, err)
	assert.NotNil(t, d)
}

func TestPrintRuns(t *testing.T) {
	var buf bytes.Buffer
	printRuns(&buf, nil)
	assert.Equal(t, "No runs recorded\n", buf.String())

	buf.Reset()
	printRuns(&buf, []history.Run{{
		ID: "run-1", GeneratedAt: time.Now(), InputDir: "docs", OutputDir: "out",
		Backend: "native", Total: 3, Succeeded: 2, Failed: 1,
	}})
	assert.Contains(t, buf.String(), "run-1")
	assert.Contains(t, buf.String(), "2/3 ok  1 failed  docs -> out (native)")
}

func TestPrintFailures(t *testing.T) {
	var buf bytes.Buffer
	printFailures(&buf, []types.Outcome{
		types.NewSucceeded("docs/a.txt", 1, "a"),
		types.NewFailed("docs/b.pdf", 1, "no text layer"),
	})
	assert.Equal(t, "  docs/b.pdf: no text layer\n", buf.String())
}
