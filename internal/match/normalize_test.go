package match

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeStripsMentionsURLsAndPunctuation(t *testing.T) {
	require.Equal(t, "check now?", Normalize("<@U123> check http://x.com/a?b=1 now?"))
	require.Equal(t, "see for details", Normalize("See <#C042BAR> for details!"))
	require.Equal(t, "whats the wifi password", Normalize("What's the WiFi password"))
}

func TestNormalizeEmptyInput(t *testing.T) {
	require.Equal(t, "", Normalize(""))
	require.Equal(t, "", Normalize("   \t\n"))
	require.Equal(t, "", Normalize("<@U1><#C2> https://only.example/things"))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	samples := []string{
		"",
		"plain words",
		"<@U123> check http://x.com/a?b=1 now?",
		"Mixed CASE with   runs\tof whitespace",
		"punct!!! marks??? kept? only-question_marks",
		"scheme ftp://host/path gone",
	}
	for _, sample := range samples {
		once := Normalize(sample)
		require.Equal(t, once, Normalize(once), "sample %q", sample)
	}
}

func TestSimilarityProperties(t *testing.T) {
	require.InDelta(t, Similarity("reset my password", "password reset steps"), Similarity("password reset steps", "reset my password"), 1e-9)
	require.Equal(t, 1.0, Similarity("vpn access", "vpn access"))
	require.Equal(t, 0.0, Similarity("", "anything"))
	require.Equal(t, 0.0, Similarity("anything", ""))
	require.InDelta(t, 0.25, Similarity("whats the wifi password", "wifi"), 1e-9)
}
