// Package report prints book lists as text, JSON or CSV.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/portal/internal/models"
)

// Formats lists the supported output formats
var Formats = []string{"text", "json", "csv"}

// Write renders books in the given format
func Write(w io.Writer, format string, books []models.Book) error {
	switch format {
	case "text":
		return WriteText(w, books)
	case "json":
		return WriteJSON(w, books)
	case "csv":
		return WriteCSV(w, books)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func WriteText(w io.Writer, books []models.Book) error {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Library Catalog: %d books\n", len(books))
	fmt.Fprintln(w, "========================================")

	for i, b := range books {
		status := "available"
		if !b.Available() {
			status = "unavailable"
		}
		fmt.Fprintf(w, "\n[%d] %s (id %s)\n", i+1, truncate(b.Title, 80), b.ID)
		fmt.Fprintf(w, "  Author:    %s\n", b.Author)
		fmt.Fprintf(w, "  Published: %s\n", b.Published)
		fmt.Fprintf(w, "  Category:  %s\n", b.Category)
		if _, err := fmt.Fprintf(w, "  Copies:    %d of %d (%s)\n", b.AvailableCopies, b.TotalCopies, status); err != nil {
			return err
		}
	}
	return nil
}

func WriteJSON(w io.Writer, books []models.Book) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(books)
}

// CSVHeader is the first row written by WriteCSV
var CSVHeader = []string{
	"ID", "Title", "Author", "Category", "Published", "Publisher",
	"ISBN", "Language", "Page Count", "Available Copies", "Total Copies", "Subjects",
}

func WriteCSV(w io.Writer, books []models.Book) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(CSVHeader); err != nil {
		return err
	}
	for _, b := range books {
		row := []string{
			b.ID,
			b.Title,
			b.Author,
			b.Category,
			b.Published,
			b.Publisher,
			b.ISBN,
			b.Language,
			strconv.Itoa(b.PageCount),
			strconv.Itoa(b.AvailableCopies),
			strconv.Itoa(b.TotalCopies),
			strings.Join(b.Subjects, "; "),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// truncate shortens s to maxLen runes, ending in "..."
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
