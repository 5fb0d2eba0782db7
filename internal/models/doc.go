// Package models defines the recruiting entities and persistence interfaces for easyhr.
//
// Every entity mirrors one row of a backend table:
//   - [Candidate] : a person in the talent pool (candidates)
//   - [Job] : an open or planned requisition (jobs)
//   - [Application] : a candidate attached to a job with a pipeline stage (recruitment_candidates)
//   - [InterviewSchedule] : an interview booked for an application (interview_schedules)
//   - [EmailTemplate] : a reusable message with placeholders (email_templates)
//   - [EmailBatch] : one bulk send of a template (email_batches)
//
// Entities embed [Base] for identity, sequence and timestamps, and implement [Model].
// Status columns are string enums validated by each entity's Validate method;
// the database schema remains the final authority on uniqueness.
package models
