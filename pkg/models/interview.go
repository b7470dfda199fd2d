// Package models contains shared data models used across the mockview codebase.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// InterviewType selects how questions are seeded.
type InterviewType string

const (
	InterviewTypeResume         InterviewType = "resume"
	InterviewTypeJobDescription InterviewType = "job-description"
)

// Valid reports whether t is a known interview type.
func (t InterviewType) Valid() bool {
	return t == InterviewTypeResume || t == InterviewTypeJobDescription
}

// Status is the lifecycle state of an interview. Transitions only move forward:
// created -> in-progress -> completed.
type Status string

const (
	StatusCreated    Status = "created"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusCreated || s == StatusInProgress || s == StatusCompleted
}

// Question categories produced by the generator.
const (
	CategoryGeneral      = "general"
	CategoryRoleSpecific = "role-specific"
	CategoryMotivation   = "motivation"
	CategoryTechnical    = "technical"
	CategoryBehavioral   = "behavioral"
	CategoryExperience   = "experience"
	CategoryAchievement  = "achievement"
	CategoryEducation    = "education"
)

// Question is a generated interview question before it is attached to a record.
type Question struct {
	Question string `json:"question"`
	Category string `json:"category"`
}

// QuestionAnswer is one slot of an interview. Question is fixed at creation;
// Answer stays nil until the user answers that index.
type QuestionAnswer struct {
	Question string  `json:"question"`
	Category string  `json:"category,omitempty"`
	Answer   *string `json:"answer,omitempty"`
}

// Answered reports whether the slot holds a non-blank answer.
func (qa QuestionAnswer) Answered() bool {
	return qa.Answer != nil && len(strings.TrimSpace(*qa.Answer)) > 0
}

// Feedback is the templated score attached to a completed interview.
type Feedback struct {
	Rating      int      `json:"rating"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

// Interview is the persisted interview document.
type Interview struct {
	ID          uuid.UUID        `db:"id"          json:"id"`
	UserID      uuid.UUID        `db:"user_id"     json:"user_id"`
	Type        InterviewType    `db:"type"        json:"type"`
	Title       string           `db:"title"       json:"title"`
	Description *string          `db:"description" json:"description,omitempty"`
	ResumeURL   *string          `db:"resume_url"  json:"resume_url,omitempty"`
	Questions   []QuestionAnswer `db:"questions"   json:"questions"`
	Status      Status           `db:"status"      json:"status"`
	Feedback    *Feedback        `db:"feedback"    json:"feedback,omitempty"`
	CreatedAt   time.Time        `db:"created_at"  json:"created_at"`
}

// AnsweredCount returns how many slots hold a non-blank answer.
func (i *Interview) AnsweredCount() int {
	n := 0
	for _, qa := range i.Questions {
		if qa.Answered() {
			n++
		}
	}
	return n
}
