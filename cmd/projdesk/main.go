package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/jask/projdesk/internal/broadcast"
	"github.com/jask/projdesk/internal/config"
	"github.com/jask/projdesk/internal/database"
	"github.com/jask/projdesk/internal/database/repository"
	"github.com/jask/projdesk/internal/prefs"
	"github.com/jask/projdesk/internal/service"
	"github.com/jask/projdesk/internal/testdata"
	"github.com/jask/projdesk/internal/tui"
)

func main() {
	importPath := pflag.StringP("import", "i", "", "import tasks from a CSV file and exit")
	sample := pflag.Bool("sample", false, "fill the project with a sample team before starting")
	pflag.Parse()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	level, _ := cfg.SlogLevel()

	for _, dir := range []string{filepath.Dir(cfg.Database.Path), filepath.Dir(cfg.Log.Path)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	logFile, err := os.OpenFile(cfg.Log.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("open log: %v", err)
	}
	defer logFile.Close()

	// The status bar only shows warnings; the file gets everything at level.
	uiLog := tui.NewLogHandler(max(level, slog.LevelWarn))
	logger := slog.New(tui.Tee(
		slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level}),
		uiLog,
	))
	slog.SetDefault(logger)

	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	version, dirty, err := database.SchemaVersion(cfg.Database.Path)
	if err != nil {
		log.Fatalf("schema version: %v", err)
	}
	if dirty {
		log.Fatalf("schema version %d is dirty; restore %s from a backup", version, cfg.Database.Path)
	}
	logger.Info("schema", "version", version, "path", cfg.Database.Path)

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.SeedDefaults(ctx, db); err != nil {
		log.Fatalf("seed defaults: %v", err)
	}

	hub := broadcast.NewHub()

	// repositories
	projectRepo := repository.NewProjectRepo(db)
	subsystemRepo := repository.NewSubsystemRepo(db)
	memberRepo := repository.NewMemberRepo(db)
	taskRepo := repository.NewTaskRepo(db)

	projects := &service.ProjectService{Projects: projectRepo, Events: hub}
	projectID, err := resolveProject(ctx, projects, cfg.Project.ID)
	if err != nil {
		log.Fatalf("project: %v", err)
	}

	if *importPath != "" {
		ingest := &service.IngestService{Tasks: taskRepo, Subsystems: subsystemRepo, Events: hub}
		if err := importTasks(ctx, ingest, cfg.Location(), projectID, *importPath); err != nil {
			log.Fatalf("import: %v", err)
		}
		return
	}

	// services
	subsystems := &service.SubsystemService{Subsystems: subsystemRepo, Events: hub}
	members := &service.MemberService{Members: memberRepo, Events: hub}
	tasks := &service.TaskService{Tasks: taskRepo, Events: hub}

	if *sample {
		sum, err := testdata.Seed(ctx, testdata.Services{Members: members, Subsystems: subsystems, Tasks: tasks},
			projectID, time.Now(), uint64(time.Now().UnixNano()))
		if err != nil {
			log.Fatalf("sample data: %v", err)
		}
		logger.Info("sample data added", "members", sum.Members, "subsystems", sum.Subsystems, "tasks", sum.Tasks)
	}

	restoreTeam(ctx, members, projectID)

	logger.Info("starting", "db", cfg.Database.Path, "project", projectID)

	app := tui.New(ctx, cfg, projectID, tui.Services{
		Subsystems:  subsystems,
		Members:     members,
		Tasks:       tasks,
		Maintenance: &service.MaintenanceService{DB: db, Events: hub},
	}, hub, logger)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	uiLog.SetProgram(p)
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}

	if team, err := members.List(ctx, projectID); err == nil && len(team) > 0 {
		if err := prefs.SaveTeam(team); err != nil {
			logger.Warn("save team roster", "err", err)
		}
	}
}

// restoreTeam refills an empty team from the roster snapshot, e.g. after a
// database reset.
func restoreTeam(ctx context.Context, members *service.MemberService, projectID string) {
	team, err := members.List(ctx, projectID)
	if err != nil || len(team) > 0 {
		return
	}
	saved, err := prefs.LoadTeam()
	if err != nil {
		slog.Warn("load team roster", "err", err)
		return
	}
	for _, m := range saved {
		if m.ProjectID != projectID {
			continue
		}
		if _, err := members.Save(ctx, m); err != nil {
			slog.Warn("restore member", "username", m.Username, "err", err)
		}
	}
}

// resolveProject picks the configured project, falling back to the first
// one in the database.
func resolveProject(ctx context.Context, projects *service.ProjectService, configured string) (string, error) {
	if configured != "" {
		p, err := projects.Get(ctx, configured)
		if err == nil {
			return p.ID, nil
		}
		if !errors.Is(err, service.ErrNotFound) {
			return "", err
		}
		slog.Warn("configured project not found, using default", "project", configured)
	}
	all, err := projects.List(ctx)
	if err != nil {
		return "", err
	}
	if len(all) == 0 {
		return "", errors.New("no project in database")
	}
	return all[0].ID, nil
}

func importTasks(ctx context.Context, ingest *service.IngestService, loc *time.Location, projectID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := ingest.ImportTasksCSV(ctx, f, projectID, loc)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d tasks, skipped %d\n", res.Imported, res.Skipped)
	for _, e := range res.Errors {
		fmt.Printf("  %v\n", e)
	}
	return nil
}
