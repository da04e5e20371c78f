package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/portal/internal/models"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCatalogSearch(t *testing.T) {
	out, err := run(t, "catalog", "search", "-q", "algorithm", "--format", "json")
	require.NoError(t, err)

	var books []models.Book
	require.NoError(t, json.Unmarshal([]byte(out), &books))
	require.Len(t, books, 1)
	assert.Equal(t, "Introduction to Algorithms", books[0].Title)
}

func TestCatalogSearchFilters(t *testing.T) {
	out, err := run(t, "catalog", "search", "--availability", "unavailable", "--format", "json")
	require.NoError(t, err)

	var books []models.Book
	require.NoError(t, json.Unmarshal([]byte(out), &books))
	require.Len(t, books, 1)
	assert.Equal(t, "2", books[0].ID)

	_, err = run(t, "catalog", "search", "--sort", "sideways")
	assert.Error(t, err)
}

func TestCatalogExportThenValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.yaml")

	_, err := run(t, "catalog", "export", "-o", path)
	require.NoError(t, err)
	require.FileExists(t, path)

	out, err := run(t, "catalog", "validate", "--catalog", path)
	require.NoError(t, err)
	assert.Contains(t, out, "6 books OK")

	out, err = run(t, "catalog", "search", "--catalog", path, "--category", "Computer Science", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Introduction to Algorithms")
	assert.NotContains(t, out, "Clean Code")
}

func TestCatalogValidateReportsEveryProblem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	doc := `books:
  - id: "1"
    title: Dune
    author: Frank Herbert
    availableCopies: 5
    totalCopies: 2
    published: "1965"
    category: Fiction
  - id: "2"
    title: Emma
    author: Jane Austen
    availableCopies: 1
    totalCopies: 1
    published: "1815"
    category: Fiction
  - id: "2"
    title: Persuasion
    author: Jane Austen
    availableCopies: 1
    totalCopies: 1
    published: "1817"
    category: Fiction
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	out, err := run(t, "catalog", "validate", "--catalog", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 invalid records")
	assert.Contains(t, out, "record 1 (1)")
	assert.Contains(t, out, "first at record 2")
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level   string
		format  string
		wantErr bool
	}{
		{"info", "text", false},
		{"DEBUG", "json", false},
		{"warn", "", false},
		{"loud", "text", true},
		{"info", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			logger, err := newLogger(&bytes.Buffer{}, tt.level, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestInvalidLogLevelStopsCommand(t *testing.T) {
	_, err := run(t, "--log-level", "loud", "catalog", "validate")
	assert.Error(t, err)
}
