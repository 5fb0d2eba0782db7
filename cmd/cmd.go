// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Output JSON"}
}

func limitFlag() cli.Flag {
	return &cli.IntFlag{Name: "limit", Usage: "Maximum number of records to return", Value: 50}
}

func idArg() []cli.Argument {
	return []cli.Argument{&cli.StringArg{Name: "id"}}
}

// setupCommand handles setup operations for the database and config file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a config file from the built-in template",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file"},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "workflow",
				Usage: "Point the workflow settings at a webhook copied as cURL",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "curl", Usage: "cURL command copied from the automation tool"},
					&cli.StringFlag{Name: "curl-file", Usage: "Path to .sh file containing a cURL command"},
					&cli.StringFlag{Name: "resource", Usage: "Resource the webhook serves (candidates, jobs, screening, email, interviews)"},
				},
				Action: r.SetupWorkflow,
			},
		},
	}
}

// serveCommand starts the HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Listen host (overrides server.host)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (overrides server.port)"},
		},
		Action: r.Serve,
	}
}

// candidatesCommand handles candidate records and screening.
func candidatesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "candidates",
		Aliases: []string{"cand"},
		Usage:   "Manage candidates",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List candidates",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Usage: "Filter by status"},
					&cli.StringFlag{Name: "position", Usage: "Filter by position"},
					&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "Match name, email or skills"},
					limitFlag(),
					jsonFlag(),
				},
				Action: r.CandidatesList,
			},
			{
				Name:  "add",
				Usage: "Add a candidate",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Full name", Required: true},
					&cli.StringFlag{Name: "email", Usage: "Email address", Required: true},
					&cli.StringFlag{Name: "phone", Usage: "Phone number"},
					&cli.StringFlag{Name: "position", Usage: "Position applied for"},
					&cli.IntFlag{Name: "experience", Usage: "Years of experience"},
					&cli.StringFlag{Name: "skills", Usage: "Comma separated skills"},
					&cli.StringFlag{Name: "resume", Usage: "Resume URL or local PDF/text path"},
					&cli.StringFlag{Name: "location", Usage: "Location"},
					&cli.StringFlag{Name: "source", Usage: "Where the candidate came from"},
					jsonFlag(),
				},
				Action: r.CandidatesAdd,
			},
			{
				Name:      "get",
				Usage:     "Show a candidate",
				Arguments: idArg(),
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.CandidatesGet,
			},
			{
				Name:  "status",
				Usage: "Change a candidate's status",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "status"},
				},
				Action: r.CandidatesStatus,
			},
			{
				Name:      "delete",
				Usage:     "Delete a candidate",
				Arguments: idArg(),
				Action:    r.CandidatesDelete,
			},
			{
				Name:      "screen",
				Usage:     "Send resumes to the screening workflow",
				ArgsUsage: "[candidate IDs...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "job", Usage: "Job ID to screen against"},
					&cli.StringFlag{Name: "status", Usage: "Screen every candidate with this status"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent requests", Value: 5},
					&cli.FloatFlag{Name: "rate", Usage: "Requests per second", Value: 5},
					jsonFlag(),
				},
				Action: r.CandidatesScreen,
			},
		},
	}
}

// jobsCommand handles job postings.
func jobsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "jobs",
		Usage: "Manage job postings",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List jobs",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Usage: "Filter by status"},
					&cli.StringFlag{Name: "department", Usage: "Filter by department"},
					limitFlag(),
					jsonFlag(),
				},
				Action: r.JobsList,
			},
			{
				Name:  "add",
				Usage: "Add a job",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Job title", Required: true},
					&cli.StringFlag{Name: "department", Usage: "Department"},
					&cli.StringFlag{Name: "location", Usage: "Location"},
					&cli.StringFlag{Name: "type", Usage: "Employment type", Value: "full_time"},
					&cli.StringFlag{Name: "description", Usage: "Description"},
					&cli.StringFlag{Name: "requirements", Usage: "Requirements sent to screening"},
					&cli.StringFlag{Name: "salary", Usage: "Salary range"},
					&cli.StringFlag{Name: "status", Usage: "Initial status", Value: "draft"},
					jsonFlag(),
				},
				Action: r.JobsAdd,
			},
			{
				Name:      "get",
				Usage:     "Show a job",
				Arguments: idArg(),
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.JobsGet,
			},
			{
				Name:  "status",
				Usage: "Change a job's status",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "status"},
				},
				Action: r.JobsStatus,
			},
			{
				Name:      "delete",
				Usage:     "Delete a job",
				Arguments: idArg(),
				Action:    r.JobsDelete,
			},
		},
	}
}

// applicationsCommand handles candidate/job pairs in the pipeline.
func applicationsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "applications",
		Aliases: []string{"apps"},
		Usage:   "Manage the hiring pipeline",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List applications",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "job", Usage: "Filter by job ID"},
					&cli.StringFlag{Name: "candidate", Usage: "Filter by candidate ID"},
					&cli.StringFlag{Name: "stage", Usage: "Filter by stage"},
					limitFlag(),
					jsonFlag(),
				},
				Action: r.ApplicationsList,
			},
			{
				Name:  "add",
				Usage: "Add a candidate to a job",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "candidate", Usage: "Candidate ID", Required: true},
					&cli.StringFlag{Name: "job", Usage: "Job ID", Required: true},
					&cli.StringFlag{Name: "notes", Usage: "Notes"},
				},
				Action: r.ApplicationsAdd,
			},
			{
				Name:  "stage",
				Usage: "Move an application to a new stage",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "stage"},
				},
				Action: r.ApplicationsStage,
			},
		},
	}
}

// templatesCommand handles email templates.
func templatesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "templates",
		Usage: "Manage email templates",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List templates",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Usage: "Filter by category"},
					jsonFlag(),
				},
				Action: r.TemplatesList,
			},
			{
				Name:  "add",
				Usage: "Add a template",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Unique name", Required: true},
					&cli.StringFlag{Name: "subject", Usage: "Subject with {{placeholders}}", Required: true},
					&cli.StringFlag{Name: "body", Usage: "Body with {{placeholders}}"},
					&cli.StringFlag{Name: "body-file", Usage: "Read the body from a file"},
					&cli.StringFlag{Name: "category", Usage: "Template category", Value: "general"},
				},
				Action: r.TemplatesAdd,
			},
			{
				Name:  "seed",
				Usage: "Load templates from a YAML pack (built-in pack by default)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Path to a YAML template pack"},
				},
				Action: r.TemplatesSeed,
			},
			{
				Name:      "preview",
				Usage:     "Render a template for a candidate",
				Arguments: idArg(),
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "candidate", Usage: "Candidate ID", Required: true},
					&cli.StringFlag{Name: "job", Usage: "Job ID"},
				},
				Action: r.TemplatesPreview,
			},
		},
	}
}

// emailCommand handles bulk email.
func emailCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "email",
		Usage: "Send candidate email",
		Commands: []*cli.Command{
			{
				Name:      "send",
				Usage:     "Send a template to candidates as one batch",
				ArgsUsage: "[candidate IDs...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "Template ID or name", Required: true},
					&cli.StringFlag{Name: "job", Usage: "Job ID used for {{job_title}}"},
					&cli.StringFlag{Name: "status", Usage: "Send to every candidate with this status"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent requests", Value: 5},
					&cli.FloatFlag{Name: "rate", Usage: "Requests per second", Value: 5},
					jsonFlag(),
				},
				Action: r.EmailSend,
			},
		},
	}
}

// interviewsCommand handles interview scheduling.
func interviewsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "interviews",
		Usage: "Schedule and manage interviews",
		Commands: []*cli.Command{
			{
				Name:  "schedule",
				Usage: "Book an interview through the calendar workflow",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "application", Aliases: []string{"a"}, Usage: "Application ID", Required: true},
					&cli.StringFlag{Name: "at", Usage: "Start time (RFC 3339 or 2006-01-02 15:04)", Required: true},
					&cli.IntFlag{Name: "duration", Usage: "Length in minutes", Value: 60},
					&cli.StringFlag{Name: "interviewer", Usage: "Interviewer name"},
					&cli.StringFlag{Name: "location", Usage: "Room or address"},
				},
				Action: r.InterviewsSchedule,
			},
			{
				Name:  "list",
				Usage: "List interviews",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Usage: "Filter by status"},
					&cli.BoolFlag{Name: "upcoming", Usage: "Only scheduled interviews from now on"},
					limitFlag(),
					jsonFlag(),
				},
				Action: r.InterviewsList,
			},
			{
				Name:      "cancel",
				Usage:     "Cancel a scheduled interview",
				Arguments: idArg(),
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "reason", Usage: "Reason passed to the calendar workflow"},
				},
				Action: r.InterviewsCancel,
			},
		},
	}
}

// dashboardCommand prints the recruiter overview.
func dashboardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "dashboard",
		Usage:  "Show pipeline counts, upcoming interviews and recent batches",
		Flags:  []cli.Flag{jsonFlag()},
		Action: r.Dashboard,
	}
}

// exportCommand writes candidate or pipeline data to a file.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export candidates or the full pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "csv, json or xlsx", Value: "xlsx"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file path"},
		},
		Action: r.Export,
	}
}

// workflowCommand handles direct calls to the automation service.
func workflowCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "workflow",
		Usage: "Inspect the automation webhook service",
		Commands: []*cli.Command{
			{
				Name:   "ping",
				Usage:  "Check that the workflow service is reachable",
				Action: r.WorkflowPing,
			},
			{
				Name:  "call",
				Usage: "Direct request to a webhook path, prints the raw response",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "data", Aliases: []string{"d"}, Usage: "JSON body; sends a POST when set"},
				},
				Action: r.WorkflowCall,
			},
		},
	}
}
