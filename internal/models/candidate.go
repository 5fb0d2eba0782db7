package models

import (
	"fmt"
	"strings"

	"github.com/filisonic/easyhr/internal/shared"
)

// CandidateStatus is the talent-pool status of a [Candidate].
type CandidateStatus string

const (
	CandidateNew          CandidateStatus = "new"
	CandidateScreening    CandidateStatus = "screening"
	CandidateShortlisted  CandidateStatus = "shortlisted"
	CandidateInterviewing CandidateStatus = "interviewing"
	CandidateOffered      CandidateStatus = "offered"
	CandidateHired        CandidateStatus = "hired"
	CandidateRejected     CandidateStatus = "rejected"
)

// CandidateStatuses lists every valid [CandidateStatus] in pipeline order.
var CandidateStatuses = []CandidateStatus{
	CandidateNew, CandidateScreening, CandidateShortlisted, CandidateInterviewing,
	CandidateOffered, CandidateHired, CandidateRejected,
}

// Candidate is a row of the candidates table.
type Candidate struct {
	Base
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone,omitempty"`
	Position        string          `json:"position,omitempty"`
	ExperienceYears int             `json:"experience_years"`
	Skills          []string        `json:"skills,omitempty"`
	ResumeURL       string          `json:"resume_url,omitempty"`
	LinkedInURL     string          `json:"linkedin_url,omitempty"`
	Location        string          `json:"location,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Source          string          `json:"source,omitempty"`
	Status          CandidateStatus `json:"status"`
	AIScore         *int            `json:"ai_score,omitempty"`
	AISummary       string          `json:"ai_summary,omitempty"`
}

// NewCandidate returns a candidate in the [CandidateNew] status.
func NewCandidate(name, email string) *Candidate {
	return &Candidate{
		Name:   strings.TrimSpace(name),
		Email:  strings.ToLower(strings.TrimSpace(email)),
		Status: CandidateNew,
	}
}

// SkillsString joins skills for storage.
func (c *Candidate) SkillsString() string {
	return strings.Join(c.Skills, ",")
}

// Validate implements [Model].
func (c *Candidate) Validate() error {
	if err := required("name", c.Name); err != nil {
		return err
	}
	if err := validEmail(c.Email); err != nil {
		return err
	}
	if c.ExperienceYears < 0 {
		return fmt.Errorf("%w: experience_years must not be negative", shared.ErrInvalidInput)
	}
	if err := validScore("ai_score", c.AIScore); err != nil {
		return err
	}
	return oneOf("candidate status", c.Status, CandidateStatuses)
}
