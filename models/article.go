package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Article is the content record managed by the service. Only published
// articles appear in the default public listing; Views counts detail
// displays and never decreases.
type Article struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Published bool      `gorm:"not null;default:false;index" json:"published"`
	Views     int64     `gorm:"not null;default:0" json:"views"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const maxTitleLen = 255

// ArticleInput carries a create/edit submission. Published is optional: nil
// keeps the current value on edit and defaults to false on create.
type ArticleInput struct {
	Title     string `json:"title" form:"title"`
	Content   string `json:"content" form:"content"`
	Published *bool  `json:"published" form:"published"`
}

// FieldError describes a single failed constraint on a submitted field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks the input against the field constraints. Inputs are
// expected to be sanitized before validation.
func (in ArticleInput) Validate() []FieldError {
	var errs []FieldError
	title := strings.TrimSpace(in.Title)
	if title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title cannot be empty"})
	} else if utf8.RuneCountInString(title) > maxTitleLen {
		errs = append(errs, FieldError{Field: "title", Message: "title exceeds 255 characters"})
	}
	if strings.TrimSpace(in.Content) == "" {
		errs = append(errs, FieldError{Field: "content", Message: "content cannot be empty"})
	}
	return errs
}

// Apply copies the validated input onto an article.
func (in ArticleInput) Apply(a *Article) {
	a.Title = strings.TrimSpace(in.Title)
	a.Content = in.Content
	if in.Published != nil {
		a.Published = *in.Published
	}
}
