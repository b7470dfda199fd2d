package generator

import (
	"strings"
	"testing"

	"github.com/kiranshivaraju/mockview/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairsOf(n int, answer string) []AnsweredPair {
	pairs := make([]AnsweredPair, n)
	for i := range pairs {
		pairs[i] = AnsweredPair{Question: "Q", Answer: answer}
	}
	return pairs
}

func TestGenerateFeedback_AllDetailedAnswers(t *testing.T) {
	fb := GenerateFeedback(pairsOf(10, strings.Repeat("a", 25)), 10)

	assert.GreaterOrEqual(t, fb.Rating, 9)
	assert.Contains(t, fb.Feedback, "Excellent")
	assert.Len(t, fb.Suggestions, 5)
}

func TestGenerateFeedback_ComparesAgainstFullQuestionCount(t *testing.T) {
	// Only 5 of 10 questions answered: the filtered list alone would look complete.
	fb := GenerateFeedback(pairsOf(5, strings.Repeat("a", 25)), 10)
	assert.Equal(t, 6, fb.Rating)
	assert.Contains(t, fb.Feedback, "Good")
}

func TestGenerateFeedback_Bands(t *testing.T) {
	tests := []struct {
		name   string
		pairs  []AnsweredPair
		total  int
		rating int
		prose  string
	}{
		{"nothing answered", nil, 10, 5, "Fair"},
		{"short answers only", pairsOf(10, "yes"), 10, 5, "Fair"},
		{"all answered, medium length", pairsOf(10, strings.Repeat("b", 15)), 10, 7, "Good"},
		{"eight of ten detailed", pairsOf(8, strings.Repeat("c", 30)), 10, 8, "Excellent"},
		{"total raised to pair count", pairsOf(4, strings.Repeat("d", 30)), 2, 9, "Excellent"},
		{"empty interview", nil, 0, 5, "Fair"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := GenerateFeedback(tc.pairs, tc.total)
			assert.Equal(t, tc.rating, fb.Rating)
			assert.True(t, strings.HasPrefix(fb.Feedback, tc.prose), fb.Feedback)
		})
	}
}

func TestGenerateFeedback_RatingAlwaysInRange(t *testing.T) {
	for total := 0; total <= 12; total++ {
		for answered := 0; answered <= total; answered++ {
			for _, ans := range []string{"", "short", strings.Repeat("x", 15), strings.Repeat("y", 40)} {
				fb := GenerateFeedback(pairsOf(answered, ans), total)
				assert.GreaterOrEqual(t, fb.Rating, 0)
				assert.LessOrEqual(t, fb.Rating, 10)
			}
		}
	}
}

func TestGenerateFeedback_TrimsBeforeMeasuring(t *testing.T) {
	padded := "   " + strings.Repeat("z", 9) + "          "
	fb := GenerateFeedback(pairsOf(3, padded), 3)
	assert.Equal(t, 5, fb.Rating)
}

func TestGenerateFeedback_CountsCharacters(t *testing.T) {
	// Five characters, fifteen bytes.
	fb := GenerateFeedback(pairsOf(10, "日本語です"), 10)
	assert.Equal(t, 5, fb.Rating)

	// Eleven characters: answered but not detailed.
	fb = GenerateFeedback(pairsOf(10, strings.Repeat("語", 11)), 10)
	assert.Equal(t, 7, fb.Rating)
}

func TestGenerateFeedback_SuggestionsAreACopy(t *testing.T) {
	fb := GenerateFeedback(nil, 1)
	fb.Suggestions[0] = "mutated"

	again := GenerateFeedback(nil, 1)
	assert.NotEqual(t, "mutated", again.Suggestions[0])
}

func TestAnsweredPairs(t *testing.T) {
	blank := "   "
	ans := "I led the migration to Postgres."
	qs := []models.QuestionAnswer{
		{Question: "Q1"},
		{Question: "Q2", Answer: &blank},
		{Question: "Q3", Answer: &ans},
	}

	pairs := AnsweredPairs(qs)
	require.Len(t, pairs, 1)
	assert.Equal(t, AnsweredPair{Question: "Q3", Answer: ans}, pairs[0])
}

func TestRatingLabel(t *testing.T) {
	assert.Equal(t, "Excellent!", RatingLabel(10))
	assert.Equal(t, "Excellent!", RatingLabel(8))
	assert.Equal(t, "Good job!", RatingLabel(7))
	assert.Equal(t, "Good job!", RatingLabel(6))
	assert.Equal(t, "Keep practicing!", RatingLabel(5))
}

func TestParseSkills(t *testing.T) {
	got := ParseSkills("Go, SQL;  go\nKubernetes,, ")
	assert.Equal(t, []string{"Go", "SQL", "Kubernetes"}, got)
	assert.Empty(t, ParseSkills(" , ;"))
}
