package gemini

import (
	"fmt"
	"strings"
	"testing"
)

func TestSanitizeTranslation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text",
			input:    "Tome dos tabletas al día",
			expected: "Tome dos tabletas al día",
		},
		{
			name:     "surrounding whitespace",
			input:    "  hola  \n",
			expected: "hola",
		},
		{
			name:     "surrounding quotes",
			input:    `"hola"`,
			expected: "hola",
		},
		{
			name:     "quotes inside whitespace",
			input:    ` "hola" `,
			expected: "hola",
		},
		{
			name:     "interior quotes kept",
			input:    `dijo "hola" ayer`,
			expected: `dijo "hola" ayer`,
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := sanitizeTranslation(tc.input); got != tc.expected {
				t.Errorf("sanitizeTranslation(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestTranslateSystemInstructionNamesTargetLanguage(t *testing.T) {
	t.Parallel()

	got := fmt.Sprintf(translateSystemInstruction, "Spanish")
	if !strings.Contains(got, "into Spanish.") {
		t.Errorf("instruction does not name the target language: %q", got)
	}
	if strings.Contains(got, "%s") {
		t.Errorf("unexpanded placeholder in instruction: %q", got)
	}
}

func TestSummaryPromptSectionsInOrder(t *testing.T) {
	t.Parallel()

	prompt := fmt.Sprintf(summaryPromptFormat, "DOCTOR: hola (Original: hello)\n")

	symptoms := strings.Index(prompt, "**PATIENT SYMPTOMS:**")
	diagnosis := strings.Index(prompt, "**DIAGNOSIS:**")
	plan := strings.Index(prompt, "**MEDICATIONS/PLAN:**")
	transcript := strings.Index(prompt, "TRANSCRIPT:")

	if symptoms < 0 || diagnosis < 0 || plan < 0 || transcript < 0 {
		t.Fatalf("missing mandatory section in prompt: %q", prompt)
	}
	if !(symptoms < diagnosis && diagnosis < plan && plan < transcript) {
		t.Errorf("sections out of order in prompt: %q", prompt)
	}
}
