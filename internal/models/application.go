package models

import (
	"fmt"

	"github.com/filisonic/easyhr/internal/shared"
)

// Stage is the pipeline position of an [Application].
type Stage string

const (
	StageApplied   Stage = "applied"
	StageScreening Stage = "screening"
	StageInterview Stage = "interview"
	StageOffer     Stage = "offer"
	StageHired     Stage = "hired"
	StageRejected  Stage = "rejected"
)

// Stages lists every valid [Stage] in pipeline order.
var Stages = []Stage{StageApplied, StageScreening, StageInterview, StageOffer, StageHired, StageRejected}

// Terminal reports whether no further stage changes are expected.
func (s Stage) Terminal() bool {
	return s == StageHired || s == StageRejected
}

// CandidateStatus maps a pipeline stage onto the candidate-level status it implies.
func (s Stage) CandidateStatus() CandidateStatus {
	switch s {
	case StageScreening:
		return CandidateScreening
	case StageInterview:
		return CandidateInterviewing
	case StageOffer:
		return CandidateOffered
	case StageHired:
		return CandidateHired
	case StageRejected:
		return CandidateRejected
	default:
		return CandidateNew
	}
}

// Application links a candidate to a job; it is a row of recruitment_candidates.
type Application struct {
	Base
	CandidateID string `json:"candidate_id"`
	JobID       string `json:"job_id"`
	Stage       Stage  `json:"stage"`
	MatchScore  *int   `json:"match_score,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// NewApplication returns an application in [StageApplied].
func NewApplication(candidateID, jobID string) *Application {
	return &Application{CandidateID: candidateID, JobID: jobID, Stage: StageApplied}
}

// Validate implements [Model].
func (a *Application) Validate() error {
	if err := required("candidate_id", a.CandidateID); err != nil {
		return err
	}
	if err := required("job_id", a.JobID); err != nil {
		return err
	}
	if err := validScore("match_score", a.MatchScore); err != nil {
		return err
	}
	return oneOf("stage", a.Stage, Stages)
}

// MoveTo changes the stage. Leaving a terminal stage is rejected.
func (a *Application) MoveTo(next Stage) error {
	if err := oneOf("stage", next, Stages); err != nil {
		return err
	}
	if a.Stage.Terminal() && next != a.Stage {
		return fmt.Errorf("%w: application is already %s", shared.ErrInvalidStatus, a.Stage)
	}
	a.Stage = next
	return nil
}
