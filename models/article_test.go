package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArticleInputValidate(t *testing.T) {
	tests := []struct {
		name   string
		input  ArticleInput
		fields []string
	}{
		{
			name:  "valid",
			input: ArticleInput{Title: "Hello", Content: "World"},
		},
		{
			name:   "empty title",
			input:  ArticleInput{Title: "   ", Content: "World"},
			fields: []string{"title"},
		},
		{
			name:   "empty content",
			input:  ArticleInput{Title: "Hello", Content: ""},
			fields: []string{"content"},
		},
		{
			name:   "both empty",
			input:  ArticleInput{},
			fields: []string{"title", "content"},
		},
		{
			name:   "title too long",
			input:  ArticleInput{Title: strings.Repeat("a", 256), Content: "ok"},
			fields: []string{"title"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.input.Validate()
			assert.Len(t, errs, len(tt.fields))
			for i, field := range tt.fields {
				assert.Equal(t, field, errs[i].Field)
			}
		})
	}
}

func TestArticleInputValidateTitleBoundary(t *testing.T) {
	input := ArticleInput{Title: strings.Repeat("é", 255), Content: "ok"}
	assert.Empty(t, input.Validate(), "255 runes should pass even when longer in bytes")
}

func TestArticleInputApply(t *testing.T) {
	article := Article{Title: "old", Content: "old", Published: true}

	ArticleInput{Title: "  new title ", Content: "new content"}.Apply(&article)
	assert.Equal(t, "new title", article.Title)
	assert.Equal(t, "new content", article.Content)
	assert.True(t, article.Published, "nil Published keeps the current value")

	published := false
	ArticleInput{Title: "t", Content: "c", Published: &published}.Apply(&article)
	assert.False(t, article.Published)
}
