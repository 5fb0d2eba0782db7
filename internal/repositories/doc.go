// Package repositories implements SQLite persistence for all recruiting entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [CandidateRepository] : talent pool persistence with email lookups and free-text search
//   - [JobRepository] : requisitions filtered by status and department
//   - [ApplicationRepository] : the recruitment_candidates junction with pipeline stages
//   - [InterviewRepository] : interview schedules with upcoming-window queries
//   - [EmailTemplateRepository] : templates with name lookups
//   - [EmailBatchRepository] : bulk send history with counters
//
// Unique constraint violations surface as [shared.ErrDuplicate] and missing rows as [shared.ErrNotFound].
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
