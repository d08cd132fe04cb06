package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenPreOrder(t *testing.T) {
	root := &Node{
		Query:    "root",
		Insights: []string{"root insight"},
		RelevantResults: []LightweightResult{
			{Title: "R", URL: "https://r", Snippet: "r"},
		},
		RelevanceScores: map[string]float64{"https://r": 90},
		Children: []*Node{
			{
				Query:    "left",
				Depth:    1,
				Insights: []string{"left insight 1", "left insight 2"},
				RelevantResults: []LightweightResult{
					{Title: "L", URL: "https://l", Snippet: "l"},
				},
				RelevanceScores: map[string]float64{"https://l": 75},
				Children: []*Node{
					{
						Query:    "left-leaf",
						Depth:    2,
						Insights: []string{"leaf insight"},
					},
				},
			},
			{
				Query:    "right",
				Depth:    1,
				Insights: []string{"right insight"},
				RelevantResults: []LightweightResult{
					{Title: "Rt", URL: "https://rt", Snippet: "rt"},
					{Title: "Rt2", URL: "https://rt2", Snippet: "rt2"},
				},
				RelevanceScores: map[string]float64{"https://rt": 80, "https://rt2": 71},
			},
		},
	}

	summary := Flatten("deep oceans", root)

	assert.Equal(t, "deep oceans", summary.OriginalTopic)
	assert.Equal(t, 4, summary.TotalNodesExplored)
	assert.Equal(t, 4, summary.TotalRelevantResults)
	assert.Same(t, root, summary.ResearchTree)

	// Parent before children, left subtree fully before right.
	assert.Equal(t, []string{
		"root insight",
		"left insight 1",
		"left insight 2",
		"leaf insight",
		"right insight",
	}, summary.AllInsights)

	require.Len(t, summary.AllSources, 4)
	assert.Equal(t, "https://r", summary.AllSources[0].URL)
	assert.Equal(t, "root", summary.AllSources[0].Query)
	assert.Equal(t, 90.0, summary.AllSources[0].RelevanceScore)
	assert.Equal(t, "https://l", summary.AllSources[1].URL)
	assert.Equal(t, "left", summary.AllSources[1].Query)
	assert.Equal(t, "https://rt", summary.AllSources[2].URL)
	assert.Equal(t, "https://rt2", summary.AllSources[3].URL)
}

func TestFlattenLoneIrrelevantRoot(t *testing.T) {
	root := &Node{Query: "dead end", RelevanceScores: map[string]float64{}}
	summary := Flatten("topic", root)

	assert.Equal(t, 1, summary.TotalNodesExplored)
	assert.Equal(t, 0, summary.TotalRelevantResults)
	assert.Empty(t, summary.AllInsights)
	assert.Empty(t, summary.AllSources)
}

func TestFlattenNilRoot(t *testing.T) {
	summary := Flatten("topic", nil)
	assert.Equal(t, 0, summary.TotalNodesExplored)
	assert.Nil(t, summary.ResearchTree)
}
