// Package questionnaire defines the static question set and turns raw form
// submissions into canonical answer sets.
package questionnaire

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

//go:embed questions.json
var embeddedQuestions []byte

type QuestionType string

const (
	TypeShortText      QuestionType = "short-text"
	TypeLongText       QuestionType = "long-text"
	TypeYesNo          QuestionType = "yes/no"
	TypeMultipleChoice QuestionType = "multiple-choice"
)

// Question describes one form field. The set is immutable after load.
type Question struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Type    QuestionType `json:"type"`
	Options []string     `json:"options,omitempty"`
	Multi   bool         `json:"multi,omitempty"`
	// OtherFor names a multi question whose list absorbs this free-text
	// answer ("Other tools" style fields).
	OtherFor string `json:"other_for,omitempty"`
}

// EmailField is the reserved submission key carrying the recipient address.
const EmailField = "email"

// ToolsQuestionID is the list question the prompt's tool string derives from.
const ToolsQuestionID = "core_tools"

type Set struct {
	questions []Question
	byID      map[string]Question
}

type questionFile struct {
	Questions []Question `json:"questions"`
}

// Default returns the question set embedded in the binary.
func Default() (*Set, error) {
	return parse(embeddedQuestions)
}

// Load reads a question set from path, falling back to the embedded set
// when path is empty.
func Load(path string) (*Set, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question set: %w", err)
	}
	return parse(blob)
}

func parse(blob []byte) (*Set, error) {
	var f questionFile
	if err := json.Unmarshal(blob, &f); err != nil {
		return nil, fmt.Errorf("parse question set: %w", err)
	}
	s := &Set{questions: f.Questions, byID: make(map[string]Question, len(f.Questions))}
	for _, q := range f.Questions {
		if err := validateQuestion(q); err != nil {
			return nil, err
		}
		if _, dup := s.byID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %q", q.ID)
		}
		s.byID[q.ID] = q
	}
	for _, q := range f.Questions {
		if q.OtherFor == "" {
			continue
		}
		target, ok := s.byID[q.OtherFor]
		if !ok {
			return nil, fmt.Errorf("question %q: other_for references unknown question %q", q.ID, q.OtherFor)
		}
		if !target.Multi {
			return nil, fmt.Errorf("question %q: other_for target %q is not a multi question", q.ID, q.OtherFor)
		}
	}
	return s, nil
}

func validateQuestion(q Question) error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("question with empty id")
	}
	if q.ID == EmailField {
		return fmt.Errorf("question id %q is reserved", EmailField)
	}
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question %q: empty text", q.ID)
	}
	switch q.Type {
	case TypeShortText, TypeLongText, TypeYesNo:
		if q.Multi {
			return fmt.Errorf("question %q: multi is only valid for multiple-choice", q.ID)
		}
	case TypeMultipleChoice:
		if len(q.Options) == 0 {
			return fmt.Errorf("question %q: multiple-choice requires options", q.ID)
		}
	default:
		return fmt.Errorf("question %q: unknown type %q", q.ID, q.Type)
	}
	return nil
}

// Questions returns the questions in declaration order.
func (s *Set) Questions() []Question {
	return s.questions
}

// Lookup returns the question with the given id.
func (s *Set) Lookup(id string) (Question, bool) {
	q, ok := s.byID[id]
	return q, ok
}
