package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/orgmap-cli/internal/model"
)

var pageSrc = model.Source{URLOrLabel: "https://acme.com/leadership", Kind: model.SourcePageFetch}

func names(recs []model.CandidateRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.RawName)
	}
	return out
}

func byName(t *testing.T, recs []model.CandidateRecord, name string) model.CandidateRecord {
	t.Helper()
	for _, r := range recs {
		if r.RawName == name {
			return r
		}
	}
	require.Failf(t, "record not found", "name %q in %v", name, names(recs))
	return model.CandidateRecord{}
}

func TestExtractors_RejectEmailOnlyText(t *testing.T) {
	t.Parallel()

	text := "Contact us at info@acme.com"
	for name, ex := range map[string]Extractor{
		"page":       NewPage("Acme"),
		"snippet":    NewSnippet("Acme"),
		"structured": NewStructured("Acme"),
	} {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, ex.Extract(text, pageSrc))
		})
	}
}

func TestExtractors_EmptyAndGarbledInput(t *testing.T) {
	t.Parallel()

	ex := NewPage("Acme")
	assert.Empty(t, ex.Extract("", pageSrc))
	assert.Empty(t, ex.Extract("\x00\xff\xfe<<<>>>", pageSrc))
	assert.Empty(t, ex.Extract("lorem ipsum dolor sit amet", pageSrc))
}

func TestKeyValueExtractor_InlineAndBlocks(t *testing.T) {
	t.Parallel()

	text := `Name: Jane Doe, Title: Chief Executive Officer

Name: John Smith
Title: VP Engineering
Department: Platform Engineering
Reports to: Jane Doe

Name: Ann Lee | Title: CFO
Name: nobody here | Title: CTO`

	got := NewKeyValue("Acme").Extract(text, pageSrc)
	require.Equal(t, []string{"Jane Doe", "John Smith", "Ann Lee"}, names(got))

	jane := got[0]
	assert.Equal(t, "Chief Executive Officer", jane.RawTitle)
	assert.Equal(t, model.ConfidenceHigh, jane.ExtractionConfidence)
	assert.Equal(t, pageSrc, jane.Source)

	john := got[1]
	assert.Equal(t, "VP Engineering", john.RawTitle)
	assert.Equal(t, "Platform Engineering", john.DepartmentHint)
	assert.Equal(t, "Jane Doe", john.ReportsToHint)

	assert.Equal(t, "CFO", got[2].RawTitle)
}

func TestBulletExtractor_ListLines(t *testing.T) {
	t.Parallel()

	text := `Our leadership
- Jane Doe – Chief Executive Officer
* John Smith - VP Engineering at Acme
• Ann Lee, CFO
CEO – Bob Stone
- Great products - Built for teams
Founded in 2010, Acme builds things.`

	got := NewBullet("Acme").Extract(text, pageSrc)
	require.Equal(t, []string{"Jane Doe", "John Smith", "Ann Lee", "Bob Stone"}, names(got))
	assert.Equal(t, "Chief Executive Officer", got[0].RawTitle)
	assert.Equal(t, "VP Engineering", got[1].RawTitle)
	assert.Equal(t, "CFO", got[2].RawTitle)
	assert.Equal(t, "CEO", got[3].RawTitle)
	for _, r := range got {
		assert.Equal(t, model.ConfidenceMedium, r.ExtractionConfidence)
	}
}

func TestBulletExtractor_StackedCards(t *testing.T) {
	t.Parallel()

	text := `## Jane Doe
Chief Executive Officer

## John Smith
Chief Technology Officer

## Careers
Join the team`

	got := NewBullet("Acme").Extract(text, pageSrc)
	require.Len(t, got, 2)
	assert.Equal(t, "Jane Doe", got[0].RawName)
	assert.Equal(t, "Chief Executive Officer", got[0].RawTitle)
	assert.Equal(t, "John Smith", got[1].RawName)
	assert.Equal(t, "Chief Technology Officer", got[1].RawTitle)
}

func TestProximityExtractor_BothOrders(t *testing.T) {
	t.Parallel()

	text := "Acme announced today that Jane Doe, the CEO, will speak. " +
		"CTO John Smith also attended. Ann Lee is the new Vice President of Sales at Acme. " +
		"Bo Chen (CISO) declined to comment."

	got := NewProximity("Acme").Extract(text, pageSrc)
	require.Len(t, got, 4)

	jane := byName(t, got, "Jane Doe")
	assert.Equal(t, "CEO", jane.RawTitle)
	assert.Equal(t, model.ConfidenceMedium, jane.ExtractionConfidence)

	ann := byName(t, got, "Ann Lee")
	assert.Equal(t, "Vice President of Sales", ann.RawTitle)

	bo := byName(t, got, "Bo Chen")
	assert.Equal(t, "CISO", bo.RawTitle)

	john := byName(t, got, "John Smith")
	assert.Equal(t, "CTO", john.RawTitle)
	assert.Equal(t, model.ConfidenceLow, john.ExtractionConfidence)
}

func TestProximityExtractor_NarrowsGreedyName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		text      string
		wantName  string
		wantTitle string
	}{
		{"company before name", "Acme Corp Jane Doe, CFO", "Jane Doe", "CFO"},
		{"sentence-initial word", "Yesterday Jane Doe, CEO of Acme, said revenue grew.", "Jane Doe", "CEO"},
		{"headline verb after name", "Acme CEO Jane Doe Announces new funding", "Jane Doe", "CEO"},
		{"middle initial kept", "Jane Q. Doe, CTO", "Jane Q. Doe", "CTO"},
		{"particle kept", "Today Ludwig Van Beethoven, CFO", "Ludwig Van Beethoven", "CFO"},
		{"suffix kept", "Sam Lee Jr., CFO", "Sam Lee Jr.", "CFO"},
		{"initial after title", "Acme CTO Jane Q. Doe Speaks", "Jane Q. Doe", "CTO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := NewProximity("Acme").Extract(tt.text, pageSrc)
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantName, got[0].RawName)
			assert.Equal(t, tt.wantTitle, got[0].RawTitle)
		})
	}
}

func TestAdjacentName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"Jane", "Doe"}, adjacentName([]string{"Yesterday", "Jane", "Doe"}, true))
	assert.Equal(t, []string{"Jane", "Doe"}, adjacentName([]string{"Jane", "Doe", "Announces"}, false))
	assert.Equal(t, []string{"Jane", "Doe"}, adjacentName([]string{"Jane", "Doe"}, true))
	assert.Equal(t, []string{"Ann", "De", "Vries"}, adjacentName([]string{"Meet", "Ann", "De", "Vries"}, true))
}

func TestLayered_EarlierLayerWins(t *testing.T) {
	t.Parallel()

	text := "Name: Jane Doe, Title: Chief Executive Officer\nJane Doe, CEO, said revenue grew."

	got := NewPage("Acme").Extract(text, pageSrc)
	require.Len(t, got, 1)
	assert.Equal(t, "Chief Executive Officer", got[0].RawTitle)
	assert.Equal(t, model.ConfidenceHigh, got[0].ExtractionConfidence)
}

func TestFunc_Adapter(t *testing.T) {
	t.Parallel()

	var ex Extractor = Func(func(text string, src model.Source) []model.CandidateRecord {
		return []model.CandidateRecord{{RawName: text, Source: src}}
	})
	got := ex.Extract("Jane Doe", pageSrc)
	require.Len(t, got, 1)
	assert.Equal(t, "Jane Doe", got[0].RawName)
}

func TestSnippetExtractor_ProfileHeadline(t *testing.T) {
	t.Parallel()

	src := model.Source{URLOrLabel: "https://www.linkedin.com/in/janedoe", Kind: model.SourceSearchResult}
	text := "Jane Doe - Chief Technology Officer - Acme | LinkedIn\nExperienced leader. John Smith, CFO at Acme."

	got := NewSnippet("Acme").Extract(text, src)
	require.Equal(t, []string{"Jane Doe", "John Smith"}, names(got))
	assert.Equal(t, "Chief Technology Officer", got[0].RawTitle)
	assert.Equal(t, "CFO", got[1].RawTitle)
}

func TestSnippetExtractor_SkipsOtherEmployer(t *testing.T) {
	t.Parallel()

	src := model.Source{URLOrLabel: "https://www.linkedin.com/in/janedoe", Kind: model.SourceSearchResult}

	got := NewSnippet("Acme").Extract("Jane Doe - CTO - OtherCo | LinkedIn", src)
	assert.Empty(t, got)

	got = NewSnippet("Acme").Extract("Jane Doe - Acme | LinkedIn", src)
	assert.Empty(t, got)
}

func TestSnippetExtractor_PlainResult(t *testing.T) {
	t.Parallel()

	src := model.Source{URLOrLabel: "https://news.example.com/acme", Kind: model.SourceSearchResult}
	text := "Acme names new security chief\nAcme appointed Bo Chen as CISO. Bo Chen, CISO, joins from Initech."

	got := NewSnippet("Acme").Extract(text, src)
	require.Len(t, got, 1)
	assert.Equal(t, "Bo Chen", got[0].RawName)
	assert.Equal(t, "CISO", got[0].RawTitle)
}
