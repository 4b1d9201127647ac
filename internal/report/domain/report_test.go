package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]Format{
		"md":       FormatMarkdown,
		"Markdown": FormatMarkdown,
		" html ":   FormatHTML,
		"PDF":      FormatPDF,
	} {
		got, err := ParseFormat(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseFormat("docx")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestFilename(t *testing.T) {
	report := &Report{
		GeneratedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Header:      Header{GrowthStage: "Pre-Qualification"},
	}
	assert.Equal(t, "traction-report-pre-qualification-2026-03-01.md", report.Filename(FormatMarkdown))
	assert.Equal(t, "traction-report-pre-qualification-2026-03-01.html", report.Filename(FormatHTML))
}
