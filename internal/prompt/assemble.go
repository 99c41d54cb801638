// Package prompt assembles the composite natural-language instruction payload
// for generation calls. Assembly is a pure function of its inputs: identical
// inputs always produce byte-identical output.
package prompt

import (
	"fmt"
	"strings"

	"songsmith/internal/core"
)

// SystemInstruction is the fixed policy string sent with every generation
// call. It defines output language and format rules plus the domain
// constraints of the downstream generative-music service.
const SystemInstruction = `You are an expert music producer and prompt engineer for a generative-music service.
You design song concepts: titles, style tags, and lyrics or structural descriptions.

Rules:
- Respond in the same language as the user's theme; default to English.
- Style tags are short, comma-separated descriptors (genre, mood, instrumentation, tempo, era).
- Lyrics use section markers like [Verse], [Chorus], [Bridge], [Outro].
- For instrumental pieces, "content" describes structure and dynamics instead of lyrics.
- Never invent facts about a referenced media item beyond what you were given or verified.
- Output must be valid JSON conforming exactly to the requested schema.`

// Input carries everything the assembler may fold into the instruction
// payload. Zero values mean the corresponding block is omitted.
type Input struct {
	Theme         string                 // Free-text theme supplied by the user
	MediaURL      string                 // Raw media link, possibly unresolved
	Metadata      *core.ResolvedMetadata // Verified metadata, nil on resolution miss
	SearchContext string                 // Rendered search snippets or sentinel text
	HasAttachment bool                   // True when a binary image/video part is attached
	DeepAnalysis  bool                   // Request visual/audio content analysis
	ProviderHint  string                 // Pattern-matched provider name for unresolved URLs
}

const (
	youtubeProviderName = "YouTube"
	sunoProviderName    = "Suno"
)

// Assemble builds the instruction payload. Template selection precedence:
// verified metadata block, then best-effort block for unresolved URLs, then
// nothing; theme is appended verbatim; a generic concept instruction
// guarantees the payload is never empty.
func Assemble(in Input) string {
	var b strings.Builder

	switch {
	case in.Metadata != nil:
		writeVerifiedBlock(&b, in)
	case in.MediaURL != "":
		writeBestEffortBlock(&b, in)
	}

	if in.SearchContext != "" {
		b.WriteString("Web search context about this media:\n")
		b.WriteString(in.SearchContext)
		b.WriteString("\n\n")
	}

	if in.Theme != "" {
		b.WriteString("User theme: ")
		b.WriteString(in.Theme)
		b.WriteString("\n")
	}

	if in.Theme == "" && in.MediaURL == "" && in.Metadata == nil && !in.HasAttachment {
		b.WriteString("No theme or reference material was provided. Create a high-quality, original song concept of your choosing, with broad appeal and a distinctive style.\n")
	}

	return b.String()
}

func writeVerifiedBlock(b *strings.Builder, in Input) {
	meta := in.Metadata
	b.WriteString("Verified media information (treat as ground truth):\n")
	fmt.Fprintf(b, "- Title: %s\n", meta.Title)
	fmt.Fprintf(b, "- Author: %s\n", meta.Author)
	fmt.Fprintf(b, "- Provider: %s\n", meta.Provider)
	if meta.Description != "" {
		fmt.Fprintf(b, "- Description: %s\n", meta.Description)
	}
	b.WriteString("Base your analysis on this verified information. Do not contradict it.\n")
	if in.DeepAnalysis && meta.Provider == youtubeProviderName {
		b.WriteString("Additionally, analyze the video's visual and audio content in depth: pacing, mood, imagery, and sound design.\n")
	}
	b.WriteString("\n")
}

func writeBestEffortBlock(b *strings.Builder, in Input) {
	fmt.Fprintf(b, "Media link (unverified): %s\n", in.MediaURL)
	if in.ProviderHint == sunoProviderName {
		b.WriteString("This links to a song on the Suno service. Use your search capability to identify it; if it cannot be identified, analyze on a best-effort basis.\n")
	} else {
		b.WriteString("Metadata for this link could not be verified. Analyze on a best-effort basis and do not guess specific facts (artist, release date, lyrics) about it.\n")
	}
	b.WriteString("\n")
}
