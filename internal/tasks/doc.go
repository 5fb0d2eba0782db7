// Package tasks orchestrates recruiting operations across the local store and the workflow automation service.
//
// # Core Operations
//
// [Engine] is the single entry point used by the CLI and the HTTP server:
//
//  1. Record changes: [Engine.SaveCandidate], [Engine.SaveJob] and their Delete counterparts
//     - Persist to the local tables first
//     - Notify the workflow with a create, update or delete action
//     - A workflow failure is logged and reported in [SaveResult]; the local write stands
//
//  2. Pipeline moves: [Engine.AddApplication], [Engine.MoveApplication]
//     - Application stage changes are reflected on the candidate's status
//
//  3. Interviews: [Engine.ScheduleInterview], [Engine.CancelInterview]
//     - The workflow books or removes the calendar event; the returned event ID is stored
//
//  4. Bulk work: [Engine.ScreenCandidates], [Engine.SendEmailBatch]
//     - Worker pool fed through a rate limiter
//     - Partial failures are collected per item rather than aborting the run
//
//  5. Reporting: [Engine.Dashboard], [Engine.PipelineReport]
//     - With demo fallback enabled, a failing store yields static demo data flagged Demo
//
// # Progress Reporting
//
// Bulk operations accept an optional channel of [ProgressUpdate].
// Updates use select with default so reporting never blocks the work.
package tasks
