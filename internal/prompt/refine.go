package prompt

import (
	"fmt"
	"strings"
)

// AssembleRefine builds the instruction payload for a second-phase refinement
// call: the user has picked a title from a prior result, and the model must
// produce final content for exactly that title. Pure and deterministic, like
// Assemble.
func AssembleRefine(selectedTitle, priorAnalysis string, styleCandidates []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "The user selected the song title: %q\n\n", selectedTitle)

	if priorAnalysis != "" {
		b.WriteString("Prior analysis of the source material:\n")
		b.WriteString(priorAnalysis)
		b.WriteString("\n\n")
	}

	if len(styleCandidates) > 0 {
		b.WriteString("Style candidates from the prior analysis:\n")
		for _, style := range styleCandidates {
			fmt.Fprintf(&b, "- %s\n", style)
		}
		b.WriteString("\n")
	}

	b.WriteString("Produce final generation parameters for exactly this title:\n")
	b.WriteString("- bestSelection: the strongest complete concept (style, lyrics/content, rationale) tailored to the selected title.\n")
	b.WriteString("- alternativeSelection: a deliberately different stylistic approach that keeps the same title.\n")
	fmt.Fprintf(&b, "Both selections must use the title %q unchanged.\n", selectedTitle)

	return b.String()
}
