package httpapi

import "github.com/example/rollcall/internal/ports/primary"

// MarkBody is the payload of PUT /workers/:worker/marks.
type MarkBody struct {
	Day       string  `json:"day" validate:"required,datetime=2006-01-02"`
	ProjectID string  `json:"project_id" validate:"required"`
	State     string  `json:"state" validate:"required,oneof=full present half half-day absent custom"`
	Hours     float64 `json:"hours" validate:"omitempty,gt=0,lte=24"`
}

// CellBody is the payload of POST /workers/:worker/toggle.
type CellBody struct {
	Day       string `json:"day" validate:"required,datetime=2006-01-02"`
	ProjectID string `json:"project_id" validate:"required"`
}

// CellQuery is the query of cell lookups and deletions.
type CellQuery struct {
	Day       string `query:"day" validate:"required,datetime=2006-01-02"`
	ProjectID string `query:"project" validate:"required"`
}

// MonthQuery is the query of month-scoped reads.
type MonthQuery struct {
	Month     string `query:"month" validate:"omitempty,datetime=2006-01"`
	ProjectID string `query:"project"`
}

type WorkerResponse struct {
	WorkerID    string `json:"worker_id"`
	FullName    string `json:"full_name"`
	Assignments int    `json:"assignments"`
	Records     int    `json:"records"`
}

type CellResponse struct {
	WorkerID    string  `json:"worker_id"`
	ProjectID   string  `json:"project_id"`
	Day         string  `json:"day"`
	IsAssigned  bool    `json:"is_assigned"`
	Marked      bool    `json:"marked"`
	Status      string  `json:"status,omitempty"`
	IsPresent   bool    `json:"is_present"`
	IsHalfDay   bool    `json:"is_half_day"`
	HoursWorked float64 `json:"hours_worked"`
	RecordID    string  `json:"record_id,omitempty"`
}

type SummaryResponse struct {
	WorkerID   string  `json:"worker_id"`
	Month      string  `json:"month"`
	ProjectID  string  `json:"project_id,omitempty"`
	Present    int     `json:"present"`
	FullDay    int     `json:"full_day"`
	Custom     int     `json:"custom"`
	HalfDay    int     `json:"half_day"`
	Absent     int     `json:"absent"`
	TotalHours float64 `json:"total_hours"`
}

type ProjectResponse struct {
	ProjectID   string  `json:"project_id"`
	ProjectName string  `json:"project_name"`
	FirstDate   string  `json:"first_date,omitempty"`
	LastDate    string  `json:"last_date,omitempty"`
	DaysWorked  int     `json:"days_worked"`
	TotalHours  float64 `json:"total_hours"`
}

func toWorkerResponse(s *primary.WorkerScope) WorkerResponse {
	return WorkerResponse{WorkerID: s.WorkerID, FullName: s.FullName, Assignments: s.Assignments, Records: s.Records}
}

func toCellResponse(c *primary.CellState) CellResponse {
	return CellResponse{
		WorkerID:    c.WorkerID,
		ProjectID:   c.ProjectID,
		Day:         c.Day,
		IsAssigned:  c.IsAssigned,
		Marked:      c.Marked,
		Status:      c.Status,
		IsPresent:   c.IsPresent,
		IsHalfDay:   c.IsHalfDay,
		HoursWorked: c.HoursWorked,
		RecordID:    c.RecordID,
	}
}

func toSummaryResponse(s *primary.MonthlySummary) SummaryResponse {
	return SummaryResponse{
		WorkerID:   s.WorkerID,
		Month:      s.Month,
		ProjectID:  s.ProjectID,
		Present:    s.Present,
		FullDay:    s.FullDay,
		Custom:     s.Custom,
		HalfDay:    s.HalfDay,
		Absent:     s.Absent,
		TotalHours: s.TotalHours,
	}
}

func toProjectResponse(p *primary.ProjectAssignment) ProjectResponse {
	return ProjectResponse{
		ProjectID:   p.ProjectID,
		ProjectName: p.ProjectName,
		FirstDate:   p.FirstDate,
		LastDate:    p.LastDate,
		DaysWorked:  p.DaysWorked,
		TotalHours:  p.TotalHours,
	}
}
