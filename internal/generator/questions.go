// Package generator builds interview questions and feedback from fixed templates.
// Everything here is pure: no I/O and no shared mutable state.
package generator

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/kiranshivaraju/mockview/pkg/models"
)

// MaxQuestions caps the number of questions in a generated interview.
const MaxQuestions = 10

const (
	commonCount          = 3
	jobTechnicalCount    = 4
	resumeTechnicalCount = 3
	behavioralCount      = 3
	skillPlaceholder     = "your skills"
)

// JobSeed seeds a job-description interview.
type JobSeed struct {
	Title       string
	Description string
}

// ResumeSeed seeds a resume interview.
type ResumeSeed struct {
	Skills     []string
	Experience []string
	Education  []string
}

// Seed carries the input for one interview type. Only the field matching the
// interview type is read.
type Seed struct {
	Job    JobSeed
	Resume ResumeSeed
}

// GenerateQuestions returns between 1 and MaxQuestions shuffled questions
// drawn from Candidates. A nil rng uses the package-level random source.
func GenerateQuestions(t models.InterviewType, seed Seed, rng *rand.Rand) []models.Question {
	questions := Candidates(t, seed)
	shuffle(questions, rng)
	if len(questions) > MaxQuestions {
		questions = questions[:MaxQuestions]
	}
	return questions
}

// Candidates returns the unshuffled, untruncated question list for t and seed.
func Candidates(t models.InterviewType, seed Seed) []models.Question {
	questions := make([]models.Question, 0, 16)
	questions = appendTable(questions, commonQuestions, commonCount, models.CategoryGeneral)

	if t == models.InterviewTypeJobDescription {
		questions = append(questions, roleQuestions(strings.TrimSpace(seed.Job.Title))...)
		if IsTechnicalRole(seed.Job.Title) {
			questions = appendTable(questions, technicalQuestions, jobTechnicalCount, models.CategoryTechnical)
		}
	} else {
		skill := skillPlaceholder
		if len(seed.Resume.Skills) > 0 && strings.TrimSpace(seed.Resume.Skills[0]) != "" {
			skill = strings.TrimSpace(seed.Resume.Skills[0])
		}
		questions = append(questions,
			models.Question{
				Question: fmt.Sprintf("Can you tell me more about your experience with %s?", skill),
				Category: models.CategoryExperience,
			},
			models.Question{
				Question: "What was your most significant achievement in your previous role?",
				Category: models.CategoryAchievement,
			},
			models.Question{
				Question: "How has your education prepared you for your career?",
				Category: models.CategoryEducation,
			},
		)
		if len(seed.Resume.Skills) > 0 {
			questions = appendTable(questions, technicalQuestions, resumeTechnicalCount, models.CategoryTechnical)
		}
	}

	return appendTable(questions, behavioralQuestions, behavioralCount, models.CategoryBehavioral)
}

// roleQuestions interpolates the job title. An empty title falls back to
// generic phrasing.
func roleQuestions(title string) []models.Question {
	if title == "" {
		return []models.Question{
			{Question: "What experience do you have that is relevant to this role?", Category: models.CategoryRoleSpecific},
			{Question: "How do you think your background aligns with this position?", Category: models.CategoryRoleSpecific},
			{Question: "What interests you most about this role?", Category: models.CategoryMotivation},
		}
	}
	return []models.Question{
		{Question: fmt.Sprintf("What experience do you have with %s?", title), Category: models.CategoryRoleSpecific},
		{Question: fmt.Sprintf("How do you think your background aligns with this %s position?", title), Category: models.CategoryRoleSpecific},
		{Question: fmt.Sprintf("What interests you most about this %s role?", title), Category: models.CategoryMotivation},
	}
}

// IsTechnicalRole reports whether title contains a technical keyword.
func IsTechnicalRole(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range technicalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func appendTable(dst []models.Question, table []string, n int, category string) []models.Question {
	for _, q := range table[:n] {
		dst = append(dst, models.Question{Question: q, Category: category})
	}
	return dst
}

// shuffle is a Fisher-Yates shuffle; every permutation is equally likely.
func shuffle(qs []models.Question, rng *rand.Rand) {
	swap := func(i, j int) { qs[i], qs[j] = qs[j], qs[i] }
	if rng == nil {
		rand.Shuffle(len(qs), swap)
		return
	}
	rng.Shuffle(len(qs), swap)
}
