package render

import (
	"strings"
	"testing"

	"github.com/user/recall/pkg/api"
)

func TestContentPlainTextPassesThrough(t *testing.T) {
	text := "plain sentence, even one where 3 < 5 holds"
	if got := Content(text); got != text {
		t.Errorf("Content() = %q, want unchanged", got)
	}
}

func TestContentConvertsHTML(t *testing.T) {
	got := Content("<p>hello <strong>world</strong></p>")
	if !strings.Contains(got, "**world**") {
		t.Errorf("Content() = %q, want markdown emphasis", got)
	}
	if strings.Contains(got, "<p>") {
		t.Errorf("Content() = %q, tags left behind", got)
	}
}

func TestContentTableFragment(t *testing.T) {
	got := Content("<table><tr><td>cell A</td><td>cell B</td></tr></table>")
	if got == "" {
		t.Fatal("Content() dropped table text entirely")
	}
	if !strings.Contains(got, "cell A") {
		t.Errorf("Content() = %q, lost table text", got)
	}
}

func TestEvidenceHeader(t *testing.T) {
	got := Evidence(1, api.Evidence{
		ID:        "Ref_ab12cd34",
		Content:   "supporting text",
		Score:     0.873,
		Scores:    api.SubScores{Lexical: 0.4, Vector: 0.9},
		Page:      7,
		ChunkType: "text",
	})

	for _, want := range []string{"[1]", "Ref_ab12cd34", "0.873", "bm25 0.400", "vector 0.900", "page 7", "supporting text"} {
		if !strings.Contains(got, want) {
			t.Errorf("Evidence() missing %q in %q", want, got)
		}
	}
}

func TestEvidenceListsImages(t *testing.T) {
	got := Evidence(1, api.Evidence{
		ID:      "Ref_fig",
		Content: "figure caption",
		Images:  []string{"page3_fig1.png", "page3_fig2.png"},
	})
	if !strings.Contains(got, "[image] page3_fig1.png") || !strings.Contains(got, "[image] page3_fig2.png") {
		t.Errorf("Evidence() missing image refs in %q", got)
	}
}

func TestEvidenceTruncatesLongContent(t *testing.T) {
	got := Evidence(1, api.Evidence{ID: "Ref_1", Content: strings.Repeat("x", maxEvidenceChars+500)})
	if !strings.Contains(got, "[content truncated]") {
		t.Error("long content not truncated")
	}
}

func TestListRanksFromOne(t *testing.T) {
	got := List([]api.Evidence{
		{ID: "Ref_first", Content: "a"},
		{ID: "Ref_second", Content: "b"},
	})
	if !strings.Contains(got, "[1] Ref_first") || !strings.Contains(got, "[2] Ref_second") {
		t.Errorf("List() = %q", got)
	}
}

func TestListEmpty(t *testing.T) {
	if got := List(nil); got != "" {
		t.Errorf("List(nil) = %q, want empty", got)
	}
}
