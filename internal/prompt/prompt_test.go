package prompt

import (
	"strings"
	"testing"
)

// Every fixed rule line must survive verbatim in the built prompt.
var ruleLines = []string{
	"You are helping someone understand an academic paper.",
	"1. NEVER explain everything at once. Take ONE small step, then STOP and wait.",
	"2. ALWAYS start by asking what the learner already knows about the topic.",
	"3. After each explanation, ask a question to check understanding OR ask what they want to explore next.",
	"4. Keep responses SHORT (2-4 paragraphs max). End with a question.",
	"5. Use concrete examples and analogies before math.",
	"6. Build foundations with code - Teach unfamiliar mathematical concepts through small numpy experiments rather than pure theory. Let the learner run code and observe patterns.",
	`7. If they ask "explain X", first ask what parts of X they already understand.`,
	"8. Use string format like this for formula display `L_ij = q_i × q_j × exp(-α × D_ij^γ)`.",
	"- Assess background → Build intuition with examples → Connect to math → Let learner guide direction",
	`"Here's everything about DPPs: [wall of text with all equations]"`,
}

func TestBuildSystemPrompt_containsPaperVerbatim(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"plain", "Paper about X. Determinantal point processes model repulsion."},
		{"empty", ""},
		{"markup", "# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |"},
		{"unicode", "α, β, γ and 数学"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildSystemPrompt(tt.text)
			if !strings.Contains(got, tt.text) {
				t.Errorf("prompt does not contain paper text %q", tt.text)
			}
		})
	}
}

func TestBuildSystemPrompt_containsAllRuleLines(t *testing.T) {
	got := BuildSystemPrompt("some paper")
	for _, line := range ruleLines {
		if !strings.Contains(got, line) {
			t.Errorf("prompt missing rule line %q", line)
		}
	}
}

func TestBuildSystemPrompt_deterministic(t *testing.T) {
	a := BuildSystemPrompt("same input")
	b := BuildSystemPrompt("same input")
	if a != b {
		t.Error("prompt is not deterministic for identical input")
	}
}

func TestBuildSystemPrompt_doesNotTruncate(t *testing.T) {
	long := strings.Repeat("word ", 50000)
	got := BuildSystemPrompt(long)
	if !strings.Contains(got, long) {
		t.Error("long paper text was mutated or truncated")
	}
}
