// Package extract turns unstructured source text into candidate person records
// using layered regex heuristics. Extractors never fail: text with nothing
// recognizable yields no records.
package extract

import (
	"github.com/sells-group/orgmap-cli/internal/model"
	"github.com/sells-group/orgmap-cli/internal/resolve"
)

// Extractor pulls candidate person records out of one piece of source text.
type Extractor interface {
	Extract(text string, src model.Source) []model.CandidateRecord
}

// Func adapts a plain function to the Extractor interface.
type Func func(text string, src model.Source) []model.CandidateRecord

// Extract calls f.
func (f Func) Extract(text string, src model.Source) []model.CandidateRecord {
	return f(text, src)
}

// Layered runs extractors in precedence order. Once a layer has produced a
// name, later layers' observations of that name in the same text are dropped.
type Layered struct {
	layers []Extractor
}

// NewLayered builds a Layered extractor from highest to lowest precedence.
func NewLayered(layers ...Extractor) *Layered {
	return &Layered{layers: layers}
}

// Extract implements Extractor.
func (l *Layered) Extract(text string, src model.Source) []model.CandidateRecord {
	var out []model.CandidateRecord
	claimed := make(map[string]bool)
	for _, layer := range l.layers {
		produced := make(map[string]bool)
		for _, r := range layer.Extract(text, src) {
			key := resolve.NameKey(r.RawName)
			if claimed[key] {
				continue
			}
			produced[key] = true
			out = append(out, r)
		}
		for k := range produced {
			claimed[k] = true
		}
	}
	return out
}

// NewStructured extracts explicit "Name: X, Title: Y" records only.
func NewStructured(company string) Extractor {
	return NewKeyValue(company)
}

// NewPage extracts from fetched page text: key-value blocks, then list lines,
// then title-near-name prose.
func NewPage(company string) Extractor {
	return NewLayered(NewKeyValue(company), NewBullet(company), NewProximity(company))
}

// record builds a candidate, or reports false when the name or title does not
// survive cleanup.
func record(company, rawName, rawTitle string, src model.Source, conf model.Confidence) (model.CandidateRecord, bool) {
	name, ok := CleanName(rawName)
	if !ok {
		return model.CandidateRecord{}, false
	}
	title := TrimTitle(rawTitle, company)
	if title == "" {
		return model.CandidateRecord{}, false
	}
	return model.CandidateRecord{
		RawName:              name,
		RawTitle:             title,
		Source:               src,
		ExtractionConfidence: conf,
	}, true
}
