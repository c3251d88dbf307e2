package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/rollcall/internal/ports/primary"
)

func (s *Server) session(c *fiber.Ctx) (primary.AttendanceService, error) {
	return s.sessions.Session(c.UserContext(), c.Params("worker"))
}

func (s *Server) refresh(c *fiber.Ctx) error {
	scope, err := s.sessions.Refresh(c.UserContext(), c.Params("worker"))
	if err != nil {
		return err
	}
	return jsonOK(c, "worker reloaded", toWorkerResponse(scope))
}

func (s *Server) getCell(c *fiber.Ctx) error {
	q := CellQuery{Day: c.Params("day"), ProjectID: c.Query("project")}
	if err := s.validate.Struct(&q); err != nil {
		return jsonValidationError(c, err)
	}

	svc, err := s.session(c)
	if err != nil {
		return err
	}
	cell, err := svc.GetCellState(c.UserContext(), primary.CellRequest{Day: q.Day, ProjectID: q.ProjectID})
	if err != nil {
		return err
	}
	return jsonOK(c, "", toCellResponse(cell))
}

func (s *Server) putMark(c *fiber.Ctx) error {
	var body MarkBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := s.validate.Struct(&body); err != nil {
		return jsonValidationError(c, err)
	}

	svc, err := s.session(c)
	if err != nil {
		return err
	}
	cell, err := svc.Mark(c.UserContext(), primary.MarkRequest{
		Day:       body.Day,
		ProjectID: body.ProjectID,
		State:     body.State,
		Hours:     body.Hours,
	})
	if err != nil {
		return err
	}
	return jsonOK(c, "attendance marked", toCellResponse(cell))
}

func (s *Server) toggle(c *fiber.Ctx) error {
	var body CellBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := s.validate.Struct(&body); err != nil {
		return jsonValidationError(c, err)
	}

	svc, err := s.session(c)
	if err != nil {
		return err
	}
	cell, err := svc.Toggle(c.UserContext(), primary.CellRequest{Day: body.Day, ProjectID: body.ProjectID})
	if err != nil {
		return err
	}
	return jsonOK(c, "attendance toggled", toCellResponse(cell))
}

func (s *Server) deleteMark(c *fiber.Ctx) error {
	var q CellQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query")
	}
	if err := s.validate.Struct(&q); err != nil {
		return jsonValidationError(c, err)
	}

	svc, err := s.session(c)
	if err != nil {
		return err
	}
	req := primary.CellRequest{Day: q.Day, ProjectID: q.ProjectID}
	if err := svc.ClearMark(c.UserContext(), req); err != nil {
		return err
	}
	cell, err := svc.GetCellState(c.UserContext(), req)
	if err != nil {
		return err
	}
	return jsonOK(c, "attendance cleared", toCellResponse(cell))
}

func (s *Server) listMarks(c *fiber.Ctx) error {
	q, err := s.monthQuery(c)
	if err != nil {
		return err
	}

	svc, err := s.session(c)
	if err != nil {
		return err
	}
	cells, err := svc.ListMarks(c.UserContext(), primary.MonthFilter{Month: q.Month, ProjectID: q.ProjectID})
	if err != nil {
		return err
	}
	out := make([]CellResponse, len(cells))
	for i, cell := range cells {
		out[i] = toCellResponse(cell)
	}
	return jsonOK(c, "", out)
}

func (s *Server) summary(c *fiber.Ctx) error {
	q, err := s.monthQuery(c)
	if err != nil {
		return err
	}

	svc, err := s.session(c)
	if err != nil {
		return err
	}
	sum, err := svc.GetMonthlySummary(c.UserContext(), primary.MonthFilter{Month: q.Month, ProjectID: q.ProjectID})
	if err != nil {
		return err
	}
	return jsonOK(c, "", toSummaryResponse(sum))
}

func (s *Server) projects(c *fiber.Ctx) error {
	svc, err := s.session(c)
	if err != nil {
		return err
	}
	rows, err := svc.GetProjectAssignments(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]ProjectResponse, len(rows))
	for i, r := range rows {
		out[i] = toProjectResponse(r)
	}
	return jsonOK(c, "", out)
}

func (s *Server) monthQuery(c *fiber.Ctx) (MonthQuery, error) {
	var q MonthQuery
	if err := c.QueryParser(&q); err != nil {
		return q, fiber.NewError(fiber.StatusBadRequest, "invalid query")
	}
	if err := s.validate.Struct(&q); err != nil {
		return q, fiber.NewError(fiber.StatusBadRequest, "month must be YYYY-MM")
	}
	return q, nil
}
