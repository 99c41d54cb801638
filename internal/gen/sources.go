package gen

import "songsmith/internal/core"

// DedupeSources removes duplicate grounding sources by URI. The first
// occurrence of a URI keeps its position; when the same URI appears again
// the later record's fields win. The input is never mutated and the result
// is always non-nil.
func DedupeSources(sources []core.GroundingSource) []core.GroundingSource {
	deduped := make([]core.GroundingSource, 0, len(sources))
	index := make(map[string]int, len(sources))
	for _, src := range sources {
		if at, seen := index[src.URI]; seen {
			deduped[at] = src
			continue
		}
		index[src.URI] = len(deduped)
		deduped = append(deduped, src)
	}
	return deduped
}
