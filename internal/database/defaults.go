package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jask/projdesk/internal/database/repository"
)

// DefaultProjectName names the project created for an empty database.
const DefaultProjectName = "Robot"

// DefaultProjectID is stable across installs so config and tests can refer to it.
var DefaultProjectID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("project:"+DefaultProjectName)).String()

// SeedDefaults ensures a project exists for new databases.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	projects := repository.NewProjectRepo(db)
	existing, err := projects.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	return projects.Upsert(ctx, repository.Project{
		ID:        DefaultProjectID,
		Name:      DefaultProjectName,
		StartDate: Today(),
	})
}
