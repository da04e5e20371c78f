package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/portal/internal/models"
)

// catalogFile is the YAML document layout
type catalogFile struct {
	Books []models.Book `yaml:"books"`
}

// Load reads a catalog file. The format follows the extension:
// .yaml/.yml, .json (array), .jsonl (one book per line) or .parquet.
func Load(path string) ([]models.Book, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		return loadYAML(path)
	case ".json":
		return loadJSON(path)
	case ".jsonl":
		return loadJSONL(path)
	case ".parquet":
		return loadParquet(path)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .yaml, .json, .jsonl, .parquet)", ext)
	}
}

func loadYAML(path string) ([]models.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML catalog: %w", err)
	}

	slog.Debug("Loaded YAML catalog", "path", path, "books", len(doc.Books))
	return doc.Books, nil
}

func loadJSON(path string) ([]models.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var books []models.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("failed to parse JSON catalog: %w", err)
	}
	return books, nil
}

func loadJSONL(path string) ([]models.Book, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer file.Close()

	var books []models.Book
	scanner := bufio.NewScanner(file)

	const maxCapacity = 1024 * 1024 // 1MB per line
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var book models.Book
		if err := json.Unmarshal(line, &book); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		books = append(books, book)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading catalog: %w", err)
	}

	slog.Debug("Finished reading JSONL catalog", "books", len(books), "lines", lineNum)
	return books, nil
}

func loadParquet(path string) ([]models.Book, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened", "path", path, "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[models.Book](pf)
	defer reader.Close()

	var books []models.Book
	rows := make([]models.Book, 128)
	for {
		n, err := reader.Read(rows)
		books = append(books, rows[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	return books, nil
}

// Save writes books in the format implied by the path's extension
func Save(path string, books []models.Book) error {
	ext := strings.ToLower(filepath.Ext(path))

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	switch ext {
	case ".yaml", ".yml":
		data, err := yaml.Marshal(&catalogFile{Books: books})
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return os.WriteFile(path, data, 0644)
	case ".json":
		data, err := json.MarshalIndent(books, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return os.WriteFile(path, data, 0644)
	case ".jsonl":
		return saveJSONL(path, books)
	case ".parquet":
		if err := parquet.WriteFile(path, books); err != nil {
			return fmt.Errorf("failed to write parquet: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported file format: %s (supported: .yaml, .json, .jsonl, .parquet)", ext)
	}
}

func saveJSONL(path string, books []models.Book) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create catalog file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	for _, b := range books {
		if err := enc.Encode(b); err != nil {
			return fmt.Errorf("failed to encode book %s: %w", b.ID, err)
		}
	}
	return w.Flush()
}
