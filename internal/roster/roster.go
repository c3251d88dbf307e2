// Package roster loads worker, project and assignment directories from a
// YAML roster file.
package roster

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/rollcall/internal/core/calendar"
	"github.com/example/rollcall/internal/ports/secondary"
)

// Roster is the parsed form of a roster file:
//
//	projects:
//	  - id: P-001
//	    name: Harbour Depot
//	    status: ongoing
//	workers:
//	  - id: W-001
//	    name: Asha Rao
//	    assignments:
//	      - project: P-001
//	        from: 2025-01-01
//	        to: 2025-03-31
type Roster struct {
	Projects []Project `yaml:"projects"`
	Workers  []Worker  `yaml:"workers"`
}

// Project is one project entry.
type Project struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Status string `yaml:"status"`
}

// Worker is one worker entry with their assignment windows.
type Worker struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Assignments []Assignment `yaml:"assignments"`
}

// Assignment is one window. Missing bounds are open.
type Assignment struct {
	Project string `yaml:"project"`
	From    string `yaml:"from"`
	To      string `yaml:"to"`
}

// Result counts what Import wrote.
type Result struct {
	Projects    int
	Workers     int
	Assignments int
}

// Parse decodes and validates a roster.
func Parse(r io.Reader) (*Roster, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var ros Roster
	if err := dec.Decode(&ros); err != nil {
		if err == io.EOF {
			return &ros, nil
		}
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}
	if err := ros.Validate(); err != nil {
		return nil, err
	}
	return &ros, nil
}

// Validate checks IDs, references and date bounds.
func (r *Roster) Validate() error {
	projects := make(map[string]bool, len(r.Projects))
	for i, p := range r.Projects {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("project %d: missing id", i+1)
		}
		if projects[p.ID] {
			return fmt.Errorf("project %s: duplicate id", p.ID)
		}
		switch p.Status {
		case "", "ongoing", "completed":
		default:
			return fmt.Errorf("project %s: invalid status %q (want ongoing or completed)", p.ID, p.Status)
		}
		projects[p.ID] = true
	}

	workers := make(map[string]bool, len(r.Workers))
	for i, w := range r.Workers {
		if strings.TrimSpace(w.ID) == "" {
			return fmt.Errorf("worker %d: missing id", i+1)
		}
		if workers[w.ID] {
			return fmt.Errorf("worker %s: duplicate id", w.ID)
		}
		workers[w.ID] = true

		for _, a := range w.Assignments {
			if !projects[a.Project] {
				return fmt.Errorf("worker %s: assignment references unknown project %q", w.ID, a.Project)
			}
			if err := checkWindow(a); err != nil {
				return fmt.Errorf("worker %s, project %s: %w", w.ID, a.Project, err)
			}
		}
	}
	return nil
}

func checkWindow(a Assignment) error {
	var from, to string
	if a.From != "" {
		d, err := calendar.ParseDay(a.From)
		if err != nil {
			return err
		}
		from = calendar.FormatDay(d)
	}
	if a.To != "" {
		d, err := calendar.ParseDay(a.To)
		if err != nil {
			return err
		}
		to = calendar.FormatDay(d)
	}
	if from != "" && to != "" && to < from {
		return fmt.Errorf("window ends (%s) before it starts (%s)", to, from)
	}
	return nil
}

// Import writes the roster through w. Each worker's assignments replace
// whatever that worker had before; workers absent from the roster are untouched.
func Import(ctx context.Context, w secondary.RosterWriter, r *Roster) (Result, error) {
	var res Result

	for _, p := range r.Projects {
		status := p.Status
		if status == "" {
			status = "ongoing"
		}
		name := p.Name
		if name == "" {
			name = p.ID
		}
		if err := w.UpsertProject(ctx, &secondary.ProjectRecord{ID: p.ID, Name: name, Status: status}); err != nil {
			return res, fmt.Errorf("failed to import project %s: %w", p.ID, err)
		}
		res.Projects++
	}

	for _, wk := range r.Workers {
		name := wk.Name
		if name == "" {
			name = wk.ID
		}
		if err := w.UpsertWorker(ctx, &secondary.WorkerRecord{ID: wk.ID, FullName: name}); err != nil {
			return res, fmt.Errorf("failed to import worker %s: %w", wk.ID, err)
		}
		res.Workers++

		records := make([]*secondary.AssignmentRecord, 0, len(wk.Assignments))
		for i, a := range wk.Assignments {
			records = append(records, &secondary.AssignmentRecord{
				ID:           fmt.Sprintf("ASG-%s-%03d", wk.ID, i+1),
				WorkerID:     wk.ID,
				ProjectID:    a.Project,
				AssignedFrom: a.From,
				AssignedTo:   a.To,
			})
		}
		if err := w.ReplaceAssignments(ctx, wk.ID, records); err != nil {
			return res, fmt.Errorf("failed to import assignments of %s: %w", wk.ID, err)
		}
		res.Assignments += len(records)
	}

	return res, nil
}
