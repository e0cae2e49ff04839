package match

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evanhutch/helpbot/internal/knowledge"
)

func wifiEntries() []knowledge.Entry {
	return []knowledge.Entry{
		{
			Topic:    "wifi",
			Question: "how do I connect to wifi",
			Answer:   "Use SSID Corp-Net",
			Keywords: []string{"wifi", "network"},
		},
	}
}

func TestForProfile(t *testing.T) {
	require.IsType(t, SimilarityFirst{}, ForProfile("basic"))
	require.IsType(t, KeywordFirst{}, ForProfile("enhanced"))
	require.IsType(t, KeywordFirst{}, ForProfile(""))
}

func TestKeywordFirstShortCircuit(t *testing.T) {
	entries := []knowledge.Entry{
		{Topic: "badge", Question: "how do I replace my badge", Answer: "Visit the front desk.", Keywords: []string{"badge"}},
		{Topic: "printer", Question: "how do i fix the printer", Answer: "Power cycle it.", Keywords: nil},
	}

	// The printer entry's reference question is fully contained in the query
	// and would score under the fallback formula, but the badge keyword hit
	// wins because the keyword scan short-circuits in entry order.
	result, ok := KeywordFirst{}.FindBestMatch("how do i fix the printer badge thing", entries, 0)
	require.True(t, ok)
	require.Equal(t, "badge", result.Topic)
	require.Equal(t, 1.0, result.Score)
}

func TestKeywordFirstFallbackQuestionContainment(t *testing.T) {
	entries := []knowledge.Entry{
		{Topic: "expenses", Question: "how do i file expenses", Answer: "Use the portal.", Keywords: []string{"reimbursement"}},
		{Topic: "parking", Question: "where do i park", Answer: "Level B2.", Keywords: []string{"garage"}},
	}

	result, ok := KeywordFirst{}.FindBestMatch("quick one: where do I park on weekends?", entries, 0)
	require.True(t, ok)
	require.Equal(t, "parking", result.Topic)
	require.InDelta(t, 0.5, result.Score, 1e-9)

	_, ok = KeywordFirst{}.FindBestMatch("totally unrelated message", entries, 0)
	require.False(t, ok)
}

func TestKeywordFirstFallbackTieKeepsFirst(t *testing.T) {
	entries := []knowledge.Entry{
		{Topic: "alpha", Question: "reset password", Answer: "Alpha answer."},
		{Topic: "beta", Question: "reset password", Answer: "Beta answer."},
	}

	result, ok := KeywordFirst{}.FindBestMatch("please reset password for me", entries, 0)
	require.True(t, ok)
	require.Equal(t, "alpha", result.Topic)
}

func TestSimilarityFirstWifiQuery(t *testing.T) {
	// "whats the wifi password" shares one of four words with the "wifi"
	// keyword, so the best Jaccard score is exactly 0.25.
	result, ok := SimilarityFirst{}.FindBestMatch("what's the wifi password", wifiEntries(), 0.25)
	require.True(t, ok)
	require.Equal(t, "wifi", result.Topic)
	require.InDelta(t, 0.25, result.Score, 1e-9)

	// The acceptance comparison is inclusive, so raising the threshold past
	// the score rejects the match.
	_, ok = SimilarityFirst{}.FindBestMatch("what's the wifi password", wifiEntries(), 0.3)
	require.False(t, ok)
}

func TestSimilarityFirstTieKeepsFirst(t *testing.T) {
	entries := []knowledge.Entry{
		{Topic: "first", Question: "", Answer: "First.", Keywords: []string{"printer"}},
		{Topic: "second", Question: "", Answer: "Second.", Keywords: []string{"printer"}},
	}

	result, ok := SimilarityFirst{}.FindBestMatch("printer", entries, 0.5)
	require.True(t, ok)
	require.Equal(t, "first", result.Topic)
	require.Equal(t, 1.0, result.Score)
}

func TestEmptyKnowledgeBaseNeverMatches(t *testing.T) {
	for _, strategy := range []Strategy{KeywordFirst{}, SimilarityFirst{}} {
		_, ok := strategy.FindBestMatch("how do I connect to wifi?", nil, 0)
		require.False(t, ok, "strategy %s", strategy.Name())
	}
}

func TestEmptyQuestionNeverMatches(t *testing.T) {
	for _, strategy := range []Strategy{KeywordFirst{}, SimilarityFirst{}} {
		_, ok := strategy.FindBestMatch("", wifiEntries(), 0.1)
		require.False(t, ok, "strategy %s", strategy.Name())
	}
}
