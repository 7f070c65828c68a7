package report

import (
	"strings"
	"testing"

	"github.com/mattslade/ai-scorecard/internal/questionnaire"
)

func answers(t *testing.T, raw map[string]any) (*questionnaire.Set, questionnaire.AnswerSet) {
	t.Helper()
	set, err := questionnaire.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	return set, questionnaire.Normalize(set, raw)
}

func TestComposeDeterministic(t *testing.T) {
	_, as := answers(t, map[string]any{
		"q1":          "Yes",
		"industry":    "insurance",
		"core_tools":  []any{"CRM", "ERP"},
		"other_tools": "Slack",
		"email":       "a@b.com",
	})
	p1 := Compose(as, false)
	p2 := Compose(as, false)
	if p1.Instructions != p2.Instructions {
		t.Fatal("instructions differ between identical compositions")
	}
	if p1.Payload != p2.Payload {
		t.Fatalf("payload not byte-identical:\n%s\n---\n%s", p1.Payload, p2.Payload)
	}
}

func TestToolString(t *testing.T) {
	cases := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{"list and other", map[string]any{"core_tools": []any{"A", "B"}, "other_tools": "C"}, "A, B, C"},
		{"other only", map[string]any{"other_tools": "C"}, "C"},
		{"empty", map[string]any{}, FallbackTools},
		{"blank other", map[string]any{"other_tools": "   "}, FallbackTools},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, as := answers(t, tc.raw)
			if got := ToolString(as); got != tc.want {
				t.Fatalf("ToolString = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestComposeSubstitutesToolSlot(t *testing.T) {
	_, as := answers(t, map[string]any{"core_tools": []any{"CRM"}, "other_tools": "Slack"})
	for _, strict := range []bool{true, false} {
		p := Compose(as, strict)
		if !strings.Contains(p.Instructions, "CRM, Slack") {
			t.Fatalf("strict=%v instructions missing tool string:\n%s", strict, p.Instructions)
		}
	}
}

func TestComposeStrictVariantDemandsHTML(t *testing.T) {
	_, as := answers(t, nil)
	strict := Compose(as, true)
	if !strings.Contains(strict.Instructions, "HTML document") {
		t.Fatal("strict template should demand a complete HTML document")
	}
	if !strings.Contains(strict.Instructions, BrandColor) {
		t.Fatal("strict template should carry the brand color token")
	}
	lenient := Compose(as, false)
	if strings.Contains(lenient.Instructions, BrandColor) {
		t.Fatal("lenient template styles the shell itself, not the narrative")
	}
}

func TestPayloadCarriesUnknownKeys(t *testing.T) {
	_, as := answers(t, map[string]any{"mystery": "value"})
	p := Compose(as, false)
	if !strings.Contains(p.Payload, `"mystery": "value"`) {
		t.Fatalf("payload should pass unknown keys through:\n%s", p.Payload)
	}
}
