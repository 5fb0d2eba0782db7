package models

// JobStatus is the lifecycle status of a [Job].
type JobStatus string

const (
	JobDraft  JobStatus = "draft"
	JobOpen   JobStatus = "open"
	JobPaused JobStatus = "paused"
	JobClosed JobStatus = "closed"
)

// JobStatuses lists every valid [JobStatus].
var JobStatuses = []JobStatus{JobDraft, JobOpen, JobPaused, JobClosed}

// EmploymentType describes the contract of a [Job].
type EmploymentType string

const (
	FullTime   EmploymentType = "full_time"
	PartTime   EmploymentType = "part_time"
	Contract   EmploymentType = "contract"
	Internship EmploymentType = "internship"
)

// EmploymentTypes lists every valid [EmploymentType].
var EmploymentTypes = []EmploymentType{FullTime, PartTime, Contract, Internship}

// Job is a row of the jobs table.
type Job struct {
	Base
	Title          string         `json:"title"`
	Department     string         `json:"department,omitempty"`
	Location       string         `json:"location,omitempty"`
	EmploymentType EmploymentType `json:"employment_type"`
	Description    string         `json:"description,omitempty"`
	Requirements   string         `json:"requirements,omitempty"`
	SalaryRange    string         `json:"salary_range,omitempty"`
	Status         JobStatus      `json:"status"`
}

// NewJob returns a full-time draft job.
func NewJob(title string) *Job {
	return &Job{Title: title, EmploymentType: FullTime, Status: JobDraft}
}

// Validate implements [Model].
func (j *Job) Validate() error {
	if err := required("title", j.Title); err != nil {
		return err
	}
	if err := oneOf("employment type", j.EmploymentType, EmploymentTypes); err != nil {
		return err
	}
	return oneOf("job status", j.Status, JobStatuses)
}

// AcceptsApplications reports whether candidates can be attached to the job.
func (j *Job) AcceptsApplications() bool {
	return j.Status == JobOpen || j.Status == JobDraft
}
