package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/projdesk/internal/broadcast"
	"github.com/jask/projdesk/internal/database"
)

// MaintenanceService houses destructive/ops actions surfaced through the TUI.
type MaintenanceService struct {
	DB     *sql.DB
	Events broadcast.Publisher
}

// Reset wipes all project data and reseeds the default project. It keeps the
// schema intact so the app can continue running.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		tables := []string{
			"tasks",
			"subsystems",
			"team_members",
			"projects",
		}
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	if err := database.SeedDefaults(ctx, s.DB); err != nil {
		return fmt.Errorf("reseed: %w", err)
	}
	for _, kind := range []string{broadcast.KindProject, broadcast.KindSubsystem, broadcast.KindMember, broadcast.KindTask} {
		publish(s.Events, kind, "", broadcast.OpDeleted)
	}
	return nil
}
