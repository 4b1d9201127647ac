package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

const (
	Title                  = "SaaS Traction Diagnostic Report"
	FallbackRecommendation = "No specific recommendations available. Review general best practices."
	GuideLabel             = "Detailed Guide"
	VideoLabel             = "Video Explanation"
)

type Header struct {
	AnnualRevenue string `json:"annual_revenue"`
	GrowthStage   string `json:"growth_stage"`
	BusinessModel string `json:"business_model"`
	Industry      string `json:"industry"`
}

// Row is one metric in a pillar table.
type Row struct {
	Metric  string `json:"metric"`
	Current string `json:"current"`
	Target  string `json:"target"`
	Flagged bool   `json:"flagged"`
}

type Resource struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// FlaggedDetail explains a metric outside its target range.
type FlaggedDetail struct {
	Metric          string     `json:"metric"`
	Current         string     `json:"current"`
	Target          string     `json:"target"`
	Recommendations []string   `json:"recommendations"`
	Notice          string     `json:"notice,omitempty"`
	Resources       []Resource `json:"resources,omitempty"`
}

type Section struct {
	Pillar  string          `json:"pillar"`
	Rows    []Row           `json:"rows"`
	Flagged []FlaggedDetail `json:"flagged"`
}

type Report struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	GeneratedAt  time.Time `json:"generated_at"`
	Header       Header    `json:"header"`
	Sections     []Section `json:"sections"`
	NextSteps    []string  `json:"next_steps"`
	FollowUpDate time.Time `json:"follow_up_date"`
	Framework    string    `json:"framework"`
}

func (r *Report) FlaggedCount() int {
	n := 0
	for _, section := range r.Sections {
		n += len(section.Flagged)
	}
	return n
}

// Filename is the download name of an export, e.g.
// "traction-report-validation-seekers-2026-03-01.pdf".
func (r *Report) Filename(format Format) string {
	base := slug.Make(fmt.Sprintf("traction report %s %s", r.Header.GrowthStage, r.GeneratedAt.Format("2006-01-02")))
	return base + "." + format.Extension()
}

// Format is an export encoding.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
)

func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", ErrInvalidFormat
}

func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Document is a rendered export ready to send.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}
