package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mattslade/ai-scorecard/internal/questionnaire"
)

// PromptVersion tags the instruction template. Bump when the template text
// changes so cached or recorded prompts stay comparable.
const PromptVersion = "v2"

// BrandColor is the heading color the report must carry.
const BrandColor = "#3b82f6"

// FallbackTools substitutes for the tool slot when nothing was selected.
const FallbackTools = "unspecified tools"

// Prompt is the deterministic instruction+data payload for the narrative
// backend. Equal answer sets produce byte-identical prompts.
type Prompt struct {
	Instructions string
	Payload      string
}

const strictTemplate = `You are an analyst producing an AI Readiness Scorecard (template %s).

Write the report as ONE complete, well-formed HTML document and output nothing
else: no preamble, no code fences, no commentary. Start with <!doctype html>.

The document must contain these sections, in order:
1. Executive Summary
2. Readiness Wins — strengths specific to the respondent's industry
3. Comparative Insights — how similar businesses typically stack up
4. Next 30 Days — short-term actions
5. 12-Month Plan — the longer-horizon roadmap
6. Tool Integration Map — how AI fits into their current stack: %s

Formatting constraints:
- Roughly 700 words total.
- End every section with two or three closing bullet points.
- Style h1 and h2 headings with the brand color %s.
- Use a bordered table in the Tool Integration Map section.

The questionnaire answers follow as JSON.`

const lenientTemplate = `You are an analyst producing the narrative for an AI Readiness Scorecard (template %s).

Write a concise narrative (~200 words) interpreting the questionnaire answers
below. Cover: a summary of overall readiness, wins specific to the
respondent's industry, how similar businesses compare, actions for the next
30 days, a 12-month outlook, and how AI can plug into their current stack: %s.

Close each theme with a short bullet. Plain prose and markdown only, no HTML.`

// ToolString derives the comma-joined tool list for the template slot. The
// normalizer has already folded any "other" free text into the list.
func ToolString(as questionnaire.AnswerSet) string {
	tools := as.Values[questionnaire.ToolsQuestionID].List
	if len(tools) == 0 {
		return FallbackTools
	}
	return strings.Join(tools, ", ")
}

// Compose builds the prompt for one run. strict selects the full-HTML
// instruction template; otherwise the summary-text template is used.
func Compose(as questionnaire.AnswerSet, strict bool) Prompt {
	tools := ToolString(as)
	var instructions string
	if strict {
		instructions = fmt.Sprintf(strictTemplate, PromptVersion, tools, BrandColor)
	} else {
		instructions = fmt.Sprintf(lenientTemplate, PromptVersion, tools)
	}
	return Prompt{Instructions: instructions, Payload: canonicalPayload(as)}
}

// canonicalPayload serializes the answer set with stable key order.
// encoding/json sorts map keys, which is the determinism guarantee tests
// and any caching rely on.
func canonicalPayload(as questionnaire.AnswerSet) string {
	blob, err := json.MarshalIndent(as.Canonical(), "", "  ")
	if err != nil {
		// Canonical only holds strings and string slices.
		return "{}"
	}
	return string(blob)
}
