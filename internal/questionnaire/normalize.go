package questionnaire

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Value is one normalized answer: a scalar string, or an ordered list for
// multi questions.
type Value struct {
	Text  string
	List  []string
	Multi bool
}

// AnswerSet is the canonical form of one submission. Values holds an entry
// for every declared question plus any unknown submitted keys; Email is the
// reserved recipient field.
type AnswerSet struct {
	Email  string
	Values map[string]Value
}

// Normalize turns a raw decoded JSON submission into a canonical AnswerSet.
// It never fails: absent or malformed fields become empty defaults, and
// unknown keys are coerced and passed through for the narrative stage.
func Normalize(set *Set, raw map[string]any) AnswerSet {
	as := AnswerSet{
		Email:  strings.TrimSpace(coerceScalar(raw[EmailField])),
		Values: make(map[string]Value, len(raw)),
	}

	for _, q := range set.Questions() {
		v := raw[q.ID]
		if q.Multi {
			as.Values[q.ID] = Value{Multi: true, List: coerceList(v)}
			continue
		}
		as.Values[q.ID] = Value{Text: strings.TrimSpace(coerceScalar(v))}
	}

	for key, v := range raw {
		if key == EmailField {
			continue
		}
		if _, known := set.Lookup(key); known {
			continue
		}
		switch v.(type) {
		case []any, []string:
			as.Values[key] = Value{Multi: true, List: coerceList(v)}
		default:
			as.Values[key] = Value{Text: strings.TrimSpace(coerceScalar(v))}
		}
	}

	// Fold "other" free-text answers into their target lists. Appends are
	// deduplicated so normalizing an already-canonical set is a no-op.
	for _, q := range set.Questions() {
		if q.OtherFor == "" {
			continue
		}
		extra := as.Values[q.ID].Text
		if extra == "" {
			continue
		}
		target := as.Values[q.OtherFor]
		if !containsFold(target.List, extra) {
			target.List = append(target.List, extra)
			as.Values[q.OtherFor] = target
		}
	}

	return as
}

// Canonical renders the answer set as a map with stable marshaling semantics:
// encoding/json sorts map keys, so serializing the result is byte-stable for
// equal input.
func (a AnswerSet) Canonical() map[string]any {
	out := make(map[string]any, len(a.Values)+1)
	for id, v := range a.Values {
		if v.Multi {
			list := v.List
			if list == nil {
				list = []string{}
			}
			out[id] = list
		} else {
			out[id] = v.Text
		}
	}
	if a.Email != "" {
		out[EmailField] = a.Email
	}
	return out
}

// AnsweredIDs returns the ids of non-empty values: declared questions first
// in declaration order, then unknown keys sorted.
func (a AnswerSet) AnsweredIDs(set *Set) []string {
	var ids []string
	seen := map[string]bool{}
	for _, q := range set.Questions() {
		if v := a.Values[q.ID]; v.Text != "" || len(v.List) > 0 {
			ids = append(ids, q.ID)
		}
		seen[q.ID] = true
	}
	var extras []string
	for id, v := range a.Values {
		if seen[id] {
			continue
		}
		if v.Text != "" || len(v.List) > 0 {
			extras = append(extras, id)
		}
	}
	sort.Strings(extras)
	return append(ids, extras...)
}

// Display renders a value for human-readable output, joining lists with
// a comma and space.
func (v Value) Display() string {
	if v.Multi {
		return strings.Join(v.List, ", ")
	}
	return v.Text
}

func coerceScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, coerceScalar(e))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", t)
	}
}

func coerceList(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s := strings.TrimSpace(coerceScalar(e)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s := strings.TrimSpace(e); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := strings.TrimSpace(coerceScalar(v)); s != "" {
			return []string{s}
		}
		return []string{}
	}
}

func containsFold(list []string, s string) bool {
	for _, e := range list {
		if strings.EqualFold(e, s) {
			return true
		}
	}
	return false
}
