package research

// Flatten collapses one research tree into a Summary via depth-first
// pre-order traversal: each node is visited before its children, children in
// Children order. Insight and source order therefore follows traversal order;
// deduplication happens later.
func Flatten(originalTopic string, root *Node) Summary {
	summary := Summary{
		OriginalTopic: originalTopic,
		ResearchTree:  root,
	}
	if root == nil {
		return summary
	}
	flattenNode(root, &summary)
	return summary
}

func flattenNode(node *Node, summary *Summary) {
	summary.TotalNodesExplored++
	summary.TotalRelevantResults += len(node.RelevantResults)
	summary.AllInsights = append(summary.AllInsights, node.Insights...)

	for _, r := range node.RelevantResults {
		// The score must exist for every relevant result; default to 0
		// defensively rather than panic on a malformed tree.
		score := node.RelevanceScores[r.URL]
		summary.AllSources = append(summary.AllSources, SourceInfo{
			Title:          r.Title,
			URL:            r.URL,
			Snippet:        r.Snippet,
			Query:          node.Query,
			RelevanceScore: score,
		})
	}

	for _, child := range node.Children {
		flattenNode(child, summary)
	}
}
