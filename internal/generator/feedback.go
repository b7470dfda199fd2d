package generator

import (
	"strings"
	"unicode/utf8"

	"github.com/kiranshivaraju/mockview/pkg/models"
)

const (
	baseRating      = 5
	maxRating       = 10
	answeredMinLen  = 10
	qualityMinLen   = 20
	excellentRating = 8
	goodRating      = 6
)

// AnsweredPair is a question with the non-empty answer given to it.
type AnsweredPair struct {
	Question string
	Answer   string
}

// AnsweredPairs extracts the pairs whose answer is non-blank, keeping question order.
func AnsweredPairs(questions []models.QuestionAnswer) []AnsweredPair {
	pairs := make([]AnsweredPair, 0, len(questions))
	for _, qa := range questions {
		if qa.Answered() {
			pairs = append(pairs, AnsweredPair{Question: qa.Question, Answer: *qa.Answer})
		}
	}
	return pairs
}

// GenerateFeedback scores answered pairs against total, the number of
// questions in the interview. A total smaller than len(pairs) is raised to
// len(pairs); a total of zero yields the base rating.
func GenerateFeedback(pairs []AnsweredPair, total int) models.Feedback {
	if total < len(pairs) {
		total = len(pairs)
	}

	var answered, quality int
	for _, p := range pairs {
		n := utf8.RuneCountInString(strings.TrimSpace(p.Answer))
		if n > answeredMinLen {
			answered++
		}
		if n > qualityMinLen {
			quality++
		}
	}

	rating := baseRating
	if total > 0 {
		fTotal := float64(total)
		switch {
		case answered == total:
			rating += 2
		case float64(answered) >= 0.8*fTotal:
			rating++
		}
		switch {
		case float64(quality) >= 0.7*fTotal:
			rating += 2
		case float64(quality) >= 0.5*fTotal:
			rating++
		}
	}
	rating = clampRating(rating)

	return models.Feedback{
		Rating:      rating,
		Feedback:    feedbackText(rating),
		Suggestions: append([]string(nil), suggestions...),
	}
}

// RatingLabel is the short headline shown next to a rating.
func RatingLabel(rating int) string {
	switch {
	case rating >= excellentRating:
		return "Excellent!"
	case rating >= goodRating:
		return "Good job!"
	default:
		return "Keep practicing!"
	}
}

func feedbackText(rating int) string {
	switch {
	case rating >= excellentRating:
		return feedbackExcellent
	case rating >= goodRating:
		return feedbackGood
	default:
		return feedbackFair
	}
}

func clampRating(r int) int {
	if r < 0 {
		return 0
	}
	if r > maxRating {
		return maxRating
	}
	return r
}
