package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jask/projdesk/internal/broadcast"
	"github.com/jask/projdesk/internal/database/repository"
)

// IngestService imports task lists exported from spreadsheets.
type IngestService struct {
	Tasks      *repository.TaskRepo
	Subsystems *repository.SubsystemRepo
	Events     broadcast.Publisher

	subsystemCache map[string]repository.Subsystem
}

type IngestResult struct {
	Imported int
	Skipped  int
	Errors   []error
}

// ImportTasksCSV reads rows of subsystem, title, priority, progress,
// start_date, end_date. Only the first two columns are required; an optional
// header row is skipped. Subsystems are created on first use and rows that
// were imported before are skipped.
func (s *IngestService) ImportTasksCSV(ctx context.Context, r io.Reader, projectID string, tz *time.Location) (IngestResult, error) {
	if strings.TrimSpace(projectID) == "" {
		return IngestResult{}, errors.New("import tasks: project required")
	}
	res := IngestResult{}
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1
	line := 0
	for {
		line++
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "subsystem") {
			continue
		}
		if len(rec) < 2 {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: expected at least 2 columns", line))
			continue
		}
		for len(rec) < 6 {
			rec = append(rec, "")
		}
		subName, title, priority, progressStr, startStr, endStr := rec[0], strings.TrimSpace(rec[1]), rec[2], rec[3], rec[4], rec[5]
		if title == "" {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: title required", line))
			continue
		}
		progress, err := parseProgress(progressStr)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d progress: %w", line, err))
			continue
		}
		start, err := parseOptionalDate(startStr, tz)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d start_date: %w", line, err))
			continue
		}
		end, err := parseOptionalDate(endStr, tz)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d end_date: %w", line, err))
			continue
		}

		sub, err := s.subsystemForName(ctx, projectID, subName)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d subsystem: %w", line, err))
			continue
		}

		id := deterministicTaskID(projectID, sub.Name, title)
		existing, err := s.Tasks.Get(ctx, id)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d lookup: %w", line, err))
			continue
		}
		if existing != nil {
			res.Skipped++
			continue
		}

		t := repository.Task{
			ID:          id,
			ProjectID:   projectID,
			SubsystemID: sub.ID,
			Title:       title,
			Priority:    choosePriority(priority),
			Progress:    progress,
			StartDate:   start,
			EndDate:     end,
			Completed:   progress == 100,
		}
		if err := s.Tasks.Upsert(ctx, t); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d insert: %w", line, err))
			continue
		}
		publish(s.Events, broadcast.KindTask, t.ID, broadcast.OpSaved)
		res.Imported++
	}
	return res, nil
}

func parseProgress(s string) (int, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > 100 {
		return 0, fmt.Errorf("%d is not between 0 and 100", n)
	}
	return n, nil
}

func choosePriority(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range Priorities {
		if p == s {
			return p
		}
	}
	return repository.PriorityMedium
}

func parseOptionalDate(s string, loc *time.Location) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := parseLocalDate(s, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseLocalDate(s string, loc *time.Location) (time.Time, error) {
	layout := "2006-01-02"
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(layout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func (s *IngestService) subsystemForName(ctx context.Context, projectID, name string) (repository.Subsystem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return repository.Subsystem{}, errors.New("subsystem name required")
	}
	key := strings.ToLower(name)
	if s.subsystemCache == nil {
		s.subsystemCache = make(map[string]repository.Subsystem)
		existing, err := s.Subsystems.List(ctx, projectID)
		if err != nil {
			return repository.Subsystem{}, err
		}
		for _, sub := range existing {
			s.subsystemCache[strings.ToLower(sub.Name)] = sub
		}
	}
	if sub, ok := s.subsystemCache[key]; ok {
		return sub, nil
	}
	sub := repository.Subsystem{
		ID:        uuid.NewSHA1(uuid.NameSpaceOID, []byte("subsystem:"+projectID+":"+key)).String(),
		ProjectID: projectID,
		Name:      name,
		Status:    repository.StatusNotStarted,
	}
	if err := s.Subsystems.Upsert(ctx, sub); err != nil {
		return repository.Subsystem{}, err
	}
	publish(s.Events, broadcast.KindSubsystem, sub.ID, broadcast.OpSaved)
	s.subsystemCache[key] = sub
	return sub, nil
}

func deterministicTaskID(projectID, subsystem, title string) string {
	key := strings.ToLower(projectID + "|" + subsystem + "|" + title)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("task:"+key)).String()
}
