package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/filisonic/easyhr/internal/formatter"
	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/shared"
	"github.com/filisonic/easyhr/internal/tasks"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// API serves the JSON endpoints under /api.
type API struct {
	engine *tasks.Engine
	logger *log.Logger
}

func NewAPI(engine *tasks.Engine, logger *log.Logger) *API {
	return &API{engine: engine, logger: logger}
}

// Register adds every API route to router.
func (a *API) Register(router Router) {
	routes := []struct {
		method, path string
		fn           http.HandlerFunc
	}{
		{http.MethodGet, "/api/candidates", a.listCandidates},
		{http.MethodPost, "/api/candidates", a.createCandidate},
		{http.MethodGet, "/api/candidates/{id}", a.getCandidate},
		{http.MethodPut, "/api/candidates/{id}", a.updateCandidate},
		{http.MethodDelete, "/api/candidates/{id}", a.deleteCandidate},
		{http.MethodPost, "/api/candidates/{id}/screen", a.screenCandidate},

		{http.MethodGet, "/api/jobs", a.listJobs},
		{http.MethodPost, "/api/jobs", a.createJob},
		{http.MethodGet, "/api/jobs/{id}", a.getJob},
		{http.MethodPut, "/api/jobs/{id}", a.updateJob},
		{http.MethodDelete, "/api/jobs/{id}", a.deleteJob},

		{http.MethodGet, "/api/applications", a.listApplications},
		{http.MethodPost, "/api/applications", a.createApplication},
		{http.MethodPatch, "/api/applications/{id}/stage", a.moveApplication},

		{http.MethodGet, "/api/templates", a.listTemplates},
		{http.MethodPost, "/api/templates", a.createTemplate},
		{http.MethodDelete, "/api/templates/{id}", a.deleteTemplate},

		{http.MethodPost, "/api/email/batches", a.sendBatch},
		{http.MethodGet, "/api/email/batches/{id}", a.getBatch},

		{http.MethodGet, "/api/interviews", a.listInterviews},
		{http.MethodPost, "/api/interviews", a.scheduleInterview},
		{http.MethodPost, "/api/interviews/{id}/cancel", a.cancelInterview},

		{http.MethodGet, "/api/dashboard", a.dashboard},
		{http.MethodGet, "/api/export/pipeline.xlsx", a.exportPipeline},
	}
	for _, rt := range routes {
		router.Handle(rt.method, rt.path, rt.fn)
	}
}

// criteria copies the named query parameters into a repository criteria map.
func criteria(r *http.Request, keys ...string) (map[string]any, error) {
	q := r.URL.Query()
	values := make(map[string]any)
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			values[k] = v
		}
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: limit must be a non-negative integer", shared.ErrInvalidInput)
		}
		values["limit"] = n
	}
	return values, nil
}

// candidateInput carries the editable candidate fields; nil fields are left unchanged.
type candidateInput struct {
	Name            *string                 `json:"name"`
	Email           *string                 `json:"email"`
	Phone           *string                 `json:"phone"`
	Position        *string                 `json:"position"`
	ExperienceYears *int                    `json:"experience_years"`
	Skills          *[]string               `json:"skills"`
	ResumeURL       *string                 `json:"resume_url"`
	LinkedInURL     *string                 `json:"linkedin_url"`
	Location        *string                 `json:"location"`
	Notes           *string                 `json:"notes"`
	Source          *string                 `json:"source"`
	Status          *models.CandidateStatus `json:"status"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (in candidateInput) apply(c *models.Candidate) {
	set(&c.Name, in.Name)
	set(&c.Phone, in.Phone)
	set(&c.Position, in.Position)
	set(&c.ExperienceYears, in.ExperienceYears)
	set(&c.Skills, in.Skills)
	set(&c.ResumeURL, in.ResumeURL)
	set(&c.LinkedInURL, in.LinkedInURL)
	set(&c.Location, in.Location)
	set(&c.Notes, in.Notes)
	set(&c.Source, in.Source)
	set(&c.Status, in.Status)
	if in.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	c.Name = strings.TrimSpace(c.Name)
}

func (a *API) listCandidates(w http.ResponseWriter, r *http.Request) {
	values, err := criteria(r, "status", "position", "source", "search")
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := a.engine.Store().Candidates.List(r.Context(), values)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) createCandidate(w http.ResponseWriter, r *http.Request) {
	var in candidateInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	c := models.NewCandidate("", "")
	in.apply(c)

	res, err := a.engine.SaveCandidate(r.Context(), c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (a *API) getCandidate(w http.ResponseWriter, r *http.Request) {
	c, err := a.engine.Store().Candidates.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) updateCandidate(w http.ResponseWriter, r *http.Request) {
	c, err := a.engine.Store().Candidates.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var in candidateInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	in.apply(c)

	res, err := a.engine.SaveCandidate(r.Context(), c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) deleteCandidate(w http.ResponseWriter, r *http.Request) {
	res, err := a.engine.DeleteCandidate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) screenCandidate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		JobID string `json:"job_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	res, err := a.engine.ScreenCandidates(r.Context(), nil, []string{r.PathValue("id")}, tasks.BulkOpts{JobID: in.JobID, NumWorkers: 1})
	if err != nil {
		writeError(w, err)
		return
	}
	if one := res.Results[0]; one.Error != nil {
		writeError(w, one.Error)
		return
	}
	writeJSON(w, http.StatusOK, res.Results[0])
}

// jobInput carries the editable job fields; nil fields are left unchanged.
type jobInput struct {
	Title          *string                `json:"title"`
	Department     *string                `json:"department"`
	Location       *string                `json:"location"`
	EmploymentType *models.EmploymentType `json:"employment_type"`
	Description    *string                `json:"description"`
	Requirements   *string                `json:"requirements"`
	SalaryRange    *string                `json:"salary_range"`
	Status         *models.JobStatus      `json:"status"`
}

func (in jobInput) apply(j *models.Job) {
	set(&j.Title, in.Title)
	set(&j.Department, in.Department)
	set(&j.Location, in.Location)
	set(&j.EmploymentType, in.EmploymentType)
	set(&j.Description, in.Description)
	set(&j.Requirements, in.Requirements)
	set(&j.SalaryRange, in.SalaryRange)
	set(&j.Status, in.Status)
	j.Title = strings.TrimSpace(j.Title)
}

func (a *API) listJobs(w http.ResponseWriter, r *http.Request) {
	values, err := criteria(r, "status", "department", "employment_type", "search")
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := a.engine.Store().Jobs.List(r.Context(), values)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) createJob(w http.ResponseWriter, r *http.Request) {
	var in jobInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	j := models.NewJob("")
	in.apply(j)

	res, err := a.engine.SaveJob(r.Context(), j)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (a *API) getJob(w http.ResponseWriter, r *http.Request) {
	j, err := a.engine.Store().Jobs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (a *API) updateJob(w http.ResponseWriter, r *http.Request) {
	j, err := a.engine.Store().Jobs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var in jobInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	in.apply(j)

	res, err := a.engine.SaveJob(r.Context(), j)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) deleteJob(w http.ResponseWriter, r *http.Request) {
	res, err := a.engine.DeleteJob(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) listApplications(w http.ResponseWriter, r *http.Request) {
	values, err := criteria(r, "job_id", "candidate_id", "stage")
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := a.engine.Store().Applications.List(r.Context(), values)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) createApplication(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CandidateID string `json:"candidate_id"`
		JobID       string `json:"job_id"`
		Notes       string `json:"notes"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.CandidateID == "" || in.JobID == "" {
		writeError(w, fmt.Errorf("%w: candidate_id and job_id are required", shared.ErrMissingArgument))
		return
	}

	app, err := a.engine.AddApplication(r.Context(), in.CandidateID, in.JobID, in.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (a *API) moveApplication(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Stage models.Stage `json:"stage"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	app, err := a.engine.MoveApplication(r.Context(), r.PathValue("id"), in.Stage)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (a *API) listTemplates(w http.ResponseWriter, r *http.Request) {
	values, err := criteria(r, "category")
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := a.engine.Store().Templates.List(r.Context(), values)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) createTemplate(w http.ResponseWriter, r *http.Request) {
	var t models.EmailTemplate
	if err := decodeJSON(r, &t); err != nil {
		writeError(w, err)
		return
	}
	if t.Category == "" {
		t.Category = models.CategoryGeneral
	}
	tmpl := &models.EmailTemplate{Name: strings.TrimSpace(t.Name), Subject: t.Subject, Body: t.Body, Category: t.Category}

	if err := a.engine.Store().Templates.Create(r.Context(), tmpl); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tmpl)
}

func (a *API) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := a.engine.Store().Templates.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) sendBatch(w http.ResponseWriter, r *http.Request) {
	var in struct {
		TemplateID   string   `json:"template_id"`
		CandidateIDs []string `json:"candidate_ids"`
		JobID        string   `json:"job_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.TemplateID == "" {
		writeError(w, fmt.Errorf("%w: template_id is required", shared.ErrMissingArgument))
		return
	}

	res, err := a.engine.SendEmailBatch(r.Context(), nil, in.TemplateID, in.CandidateIDs, tasks.BulkOpts{JobID: in.JobID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (a *API) getBatch(w http.ResponseWriter, r *http.Request) {
	b, err := a.engine.Store().Batches.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *API) listInterviews(w http.ResponseWriter, r *http.Request) {
	values, err := criteria(r, "application_id", "status")
	if err != nil {
		writeError(w, err)
		return
	}
	for _, key := range []string{"from", "to"} {
		raw := r.URL.Query().Get(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, fmt.Errorf("%w: %s must be an RFC 3339 time", shared.ErrInvalidInput, key))
			return
		}
		values[key] = t
	}

	list, err := a.engine.Store().Interviews.List(r.Context(), values)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) scheduleInterview(w http.ResponseWriter, r *http.Request) {
	var req tasks.ScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	interview, err := a.engine.ScheduleInterview(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, interview)
}

func (a *API) cancelInterview(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	interview, err := a.engine.CancelInterview(r.Context(), r.PathValue("id"), in.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, interview)
}

func (a *API) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := a.engine.Dashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *API) exportPipeline(w http.ResponseWriter, r *http.Request) {
	report, err := a.engine.PipelineReport(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="pipeline.xlsx"`)
	if err := formatter.WritePipelineWorkbook(w, report); err != nil {
		a.logger.Error("workbook export failed", "error", err)
	}
}
