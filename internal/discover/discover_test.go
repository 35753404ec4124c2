// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
}

func TestFiles(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		exts  []string
		want  []string
	}{
		{
			name:  "filters by extension",
			files: []string{"a.txt", "b.bad"},
			exts:  []string{".txt"},
			want:  []string{"a.txt"},
		},
		{
			name:  "matches case-insensitively and without dot",
			files: []string{"Report.PDF", "notes.Txt", "img.png"},
			exts:  []string{"pdf", ".TXT"},
			want:  []string{"Report.PDF", "notes.Txt"},
		},
		{
			name:  "recurses and sorts lexically",
			files: []string{"z.html", "sub/b.html", "sub/deeper/a.html", "a.html"},
			exts:  []string{".html"},
			want:  []string{"a.html", "sub/b.html", "sub/deeper/a.html", "z.html"},
		},
		{
			name:  "defaults when no extensions given",
			files: []string{"doc.docx", "data.csv", "data.json"},
			want:  []string{"data.csv", "doc.docx"},
		},
		{
			name: "empty directory",
			exts: []string{".txt"},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeTree(t, root, tt.files...)

			got, err := Files(root, Options{Extensions: tt.exts})
			require.NoError(t, err)

			var want []string
			for _, w := range tt.want {
				want = append(want, filepath.Join(root, filepath.FromSlash(w)))
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestFilesDeterministic(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "c.txt", "a/b.txt", "a.txt", "b/a.txt")

	first, err := Files(root, Options{Extensions: []string{".txt"}})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Files(root, Options{Extensions: []string{".txt"}})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestFilesExclude(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "in.txt", "out/in.txt")

	got, err := Files(root, Options{
		Extensions: []string{".txt"},
		Exclude:    []string{filepath.Join(root, "out")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "in.txt")}, got)
}

func TestFilesSkipsUnreadableSubdirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read directories without permission bits")
	}
	root := t.TempDir()
	writeTree(t, root, "a.txt", "locked/b.txt", "open/c.txt")
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	log, hook := logtest.NewNullLogger()
	got, err := Files(root, Options{Extensions: []string{".txt"}, Log: log})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "open", "c.txt"),
	}, got)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, locked, hook.LastEntry().Data["path"])
}

func TestFilesDirectoryNotFound(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, err := Files(filepath.Join(t.TempDir(), "nope"), Options{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDirectoryNotFound))
	})

	t.Run("regular file", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, "file.txt")
		_, err := Files(filepath.Join(root, "file.txt"), Options{})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDirectoryNotFound)
	})
}

func TestNormalizeExtensions(t *testing.T) {
	got := NormalizeExtensions([]string{"PDF", ".pdf", " .Docx ", "", ".", "txt"})
	assert.Equal(t, []string{".pdf", ".docx", ".txt"}, got)
}
