// Package history turns the loosely-typed annotation history payload into
// canonical records.
//
// The history endpoint answers with an "annotations" array whose elements
// come in several shapes: a flat record, a record that also embeds the
// annotator with its own nested "annotations" array, bare numeric ids that
// reference records printed elsewhere, and occasional nulls. Only complete
// objects are kept; everything else is noise.
package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/lewtec/parelha/internal/domain"
)

// Stats describes what Normalize did with the payload
type Stats struct {
	Kept       int
	Duplicates int
	Discarded  int
}

type envelope struct {
	Annotations []json.RawMessage `json:"annotations"`
}

// entry is the union of every object shape seen in the array
type entry struct {
	ID          domain.ID       `json:"id"`
	CoupleText  json.RawMessage `json:"coupleText"`
	ChosenClass json.RawMessage `json:"chosenClass"`
	Notes       *string         `json:"notes"`
	Annotator   *struct {
		Annotations []json.RawMessage `json:"annotations"`
	} `json:"annotateur"`
}

// Normalize decodes a raw history response body. Only a body that is not a
// JSON object at all is an error.
func Normalize(body []byte) ([]domain.AnnotationRecord, Stats, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, Stats{}, fmt.Errorf("while decoding history: %w", err)
	}
	records, stats := Flatten(env.Annotations)
	return records, stats, nil
}

// Flatten extracts complete records from top-level and nested entries,
// keeps the first occurrence of each id and orders them by id descending.
func Flatten(items []json.RawMessage) ([]domain.AnnotationRecord, Stats) {
	var stats Stats
	var candidates []domain.AnnotationRecord
	for _, item := range items {
		e, ok := decodeEntry(item)
		if !ok {
			stats.Discarded++
			continue
		}
		if rec, ok := e.record(); ok {
			candidates = append(candidates, rec)
		} else if e.Annotator == nil {
			stats.Discarded++
		}
		if e.Annotator == nil {
			continue
		}
		for _, nested := range e.Annotator.Annotations {
			ne, ok := decodeEntry(nested)
			if !ok {
				stats.Discarded++
				continue
			}
			rec, ok := ne.record()
			if !ok {
				stats.Discarded++
				continue
			}
			candidates = append(candidates, rec)
		}
	}

	seen := make(map[domain.ID]struct{}, len(candidates))
	records := make([]domain.AnnotationRecord, 0, len(candidates))
	for _, rec := range candidates {
		if _, dup := seen[rec.ID]; dup {
			stats.Duplicates++
			continue
		}
		seen[rec.ID] = struct{}{}
		records = append(records, rec)
	}
	SortNewestFirst(records)
	stats.Kept = len(records)
	return records, stats
}

// SortNewestFirst orders records by id descending. Numeric ids compare as
// numbers and sort before non-numeric ones.
func SortNewestFirst(records []domain.AnnotationRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return idGreater(records[i].ID, records[j].ID)
	})
}

func idGreater(a, b domain.ID) bool {
	an, aok := a.Int64()
	bn, bok := b.Int64()
	switch {
	case aok && bok:
		return an > bn
	case aok != bok:
		return aok
	default:
		return a > b
	}
}

func decodeEntry(raw json.RawMessage) (*entry, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false
	}
	return &e, true
}

// record converts the entry when it carries an id, pair text and a class
func (e *entry) record() (domain.AnnotationRecord, bool) {
	if e.ID.IsZero() || e.ID == "0" {
		return domain.AnnotationRecord{}, false
	}
	pair, ok := decodePairText(e.CoupleText)
	if !ok {
		return domain.AnnotationRecord{}, false
	}
	class, ok := decodeClassName(e.ChosenClass)
	if !ok {
		return domain.AnnotationRecord{}, false
	}
	rec := domain.AnnotationRecord{ID: e.ID, Pair: pair, ChosenClass: class}
	if e.Notes != nil {
		rec.Notes = *e.Notes
	}
	return rec, true
}

func decodePairText(raw json.RawMessage) (domain.PairText, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return domain.PairText{}, false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return domain.PairText{}, false
		}
		return domain.PairText{Text1: s}, true
	}
	var pair domain.PairText
	if err := json.Unmarshal(raw, &pair); err != nil {
		return domain.PairText{}, false
	}
	return pair, true
}

// decodeClassName accepts "label", 3, or {"id":3,"textClass":"label"}
func decodeClassName(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		s = strings.TrimSpace(s)
		return s, s != ""
	case '{':
		var class domain.AnnotationClass
		if err := json.Unmarshal(raw, &class); err != nil {
			return "", false
		}
		if class.Name != "" {
			return class.Name, true
		}
		return class.ID.String(), !class.ID.IsZero()
	default:
		var id domain.ID
		if err := json.Unmarshal(raw, &id); err != nil || id.IsZero() {
			return "", false
		}
		return id.String(), true
	}
}
