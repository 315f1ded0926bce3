package render

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown"

	"github.com/user/recall/pkg/api"
)

const maxEvidenceChars = 2000

// htmlMarkers are the fragments LandingAI-extracted chunks typically
// carry when a page held structured content.
var htmlMarkers = []string{
	"<table", "<p>", "<div", "<span", "<td", "<tr", "<th",
	"<h1", "<h2", "<h3", "<ul", "<ol", "<li", "<br",
}

// Content returns chunk text ready for a terminal: HTML fragments are
// converted to markdown, plain text passes through untouched. A failed
// conversion falls back to the raw text.
func Content(s string) string {
	if !looksLikeHTML(s) {
		return s
	}
	md, err := htmltomarkdown.NewConverter("", true, nil).ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(md)
}

func looksLikeHTML(s string) bool {
	lower := strings.ToLower(s)
	for _, marker := range htmlMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Evidence formats one retrieved chunk with its rank, provenance, and
// truncated content.
func Evidence(rank int, ev api.Evidence) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%d] %s  score %.3f", rank, ev.ID, ev.Score)
	if ev.Scores.Lexical != 0 || ev.Scores.Vector != 0 {
		fmt.Fprintf(&b, " (bm25 %.3f, vector %.3f)", ev.Scores.Lexical, ev.Scores.Vector)
	}
	if ev.Page > 0 {
		fmt.Fprintf(&b, "  page %d", ev.Page)
	}
	if ev.ChunkType != "" && ev.ChunkType != "unknown" {
		fmt.Fprintf(&b, "  %s", ev.ChunkType)
	}
	b.WriteString("\n")

	content := Content(ev.Content)
	if len(content) > maxEvidenceChars {
		content = content[:maxEvidenceChars] + "\n[content truncated]"
	}
	b.WriteString(indent(content))

	for _, img := range ev.Images {
		fmt.Fprintf(&b, "\n    [image] %s", img)
	}

	return b.String()
}

// List formats a whole evidence batch, ranked from 1.
func List(chunks []api.Evidence) string {
	parts := make([]string, 0, len(chunks))
	for i, ev := range chunks {
		parts = append(parts, Evidence(i+1, ev))
	}
	return strings.Join(parts, "\n\n")
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n")
}
