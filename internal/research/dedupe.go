package research

import "sort"

// DedupeInsights collapses insight strings by exact text equality, keeping
// first-occurrence order.
func DedupeInsights(insights []string) []string {
	seen := make(map[string]bool, len(insights))
	out := make([]string, 0, len(insights))
	for _, s := range insights {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// DedupeSources groups sources by URL, keeping per URL the entry with the
// strictly greatest relevance score (the first entry wins ties), then sorts
// by relevance descending. The sort is stable so equal-score sources retain
// the relative order produced by the grouping pass.
func DedupeSources(sources []SourceInfo) []SourceInfo {
	index := make(map[string]int, len(sources))
	out := make([]SourceInfo, 0, len(sources))
	for _, s := range sources {
		if i, ok := index[s.URL]; ok {
			if s.RelevanceScore > out[i].RelevanceScore {
				out[i] = s
			}
			continue
		}
		index[s.URL] = len(out)
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelevanceScore > out[j].RelevanceScore
	})
	return out
}

// Aggregate merges the flattened output of several top-level query trees into
// one deduplicated insight list and one ranked source list.
func Aggregate(summaries []Summary) (insights []string, sources []SourceInfo) {
	var allInsights []string
	var allSources []SourceInfo
	for _, s := range summaries {
		allInsights = append(allInsights, s.AllInsights...)
		allSources = append(allSources, s.AllSources...)
	}
	return DedupeInsights(allInsights), DedupeSources(allSources)
}
