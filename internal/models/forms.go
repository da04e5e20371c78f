package models

import (
	"fmt"
	"strings"
)

// ValidationError reports a rejected form field. Nothing is mutated when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// BookForm carries the fields of the add and edit book dialogs
type BookForm struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	Description     string `json:"description"`
	Publisher       string `json:"publisher"`
	Published       string `json:"published"`
	PageCount       int    `json:"pageCount"`
	Category        string `json:"category"`
	Language        string `json:"language"`
	CoverImage      string `json:"coverImage"`
	AvailableCopies int    `json:"availableCopies"`
	TotalCopies     int    `json:"totalCopies"`
}

// DefaultBookForm mirrors the initial values of the add dialog
func DefaultBookForm() BookForm {
	return BookForm{
		Language:        "English",
		AvailableCopies: 1,
		TotalCopies:     1,
	}
}

// FormFromBook pre-fills the edit dialog
func FormFromBook(b Book) BookForm {
	return BookForm{
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Description:     b.Description,
		Publisher:       b.Publisher,
		Published:       b.Published,
		PageCount:       b.PageCount,
		Category:        b.Category,
		Language:        b.Language,
		CoverImage:      b.CoverImage,
		AvailableCopies: b.AvailableCopies,
		TotalCopies:     b.TotalCopies,
	}
}

// Validate checks the form before it reaches the store
func (f BookForm) Validate() error {
	switch {
	case isBlank(f.Title):
		return &ValidationError{Field: "title", Message: "title is required"}
	case isBlank(f.Author):
		return &ValidationError{Field: "author", Message: "author is required"}
	case isBlank(f.Category):
		return &ValidationError{Field: "category", Message: "category is required"}
	}
	if _, ok := (Book{Published: f.Published}).PublicationYear(); !ok {
		return &ValidationError{Field: "published", Message: "published must start with a year"}
	}
	if f.PageCount < 0 {
		return &ValidationError{Field: "pageCount", Message: "page count cannot be negative"}
	}
	if f.TotalCopies < 1 {
		return &ValidationError{Field: "totalCopies", Message: "total copies must be at least 1"}
	}
	if f.AvailableCopies < 0 || f.AvailableCopies > f.TotalCopies {
		return &ValidationError{Field: "availableCopies", Message: "available copies must be between 0 and total copies"}
	}
	return nil
}

// NewBook builds a record from a validated form. Subjects default to the category.
func (f BookForm) NewBook(id string) Book {
	b := Book{ID: id}
	f.ApplyTo(&b)
	b.Subjects = []string{b.Category}
	return b
}

// ApplyTo patches an existing record, keeping its id and subjects
func (f BookForm) ApplyTo(b *Book) {
	b.Title = strings.TrimSpace(f.Title)
	b.Author = strings.TrimSpace(f.Author)
	b.ISBN = strings.TrimSpace(f.ISBN)
	b.Description = strings.TrimSpace(f.Description)
	b.Publisher = strings.TrimSpace(f.Publisher)
	b.Published = strings.TrimSpace(f.Published)
	b.PageCount = f.PageCount
	b.Category = strings.TrimSpace(f.Category)
	b.Language = strings.TrimSpace(f.Language)
	b.CoverImage = strings.TrimSpace(f.CoverImage)
	b.AvailableCopies = f.AvailableCopies
	b.TotalCopies = f.TotalCopies
}
