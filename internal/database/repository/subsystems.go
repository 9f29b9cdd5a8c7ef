package repository

import (
	"context"
	"database/sql"
)

// SubsystemRepo handles subsystems.
type SubsystemRepo struct {
	db *sql.DB
}

func NewSubsystemRepo(db *sql.DB) *SubsystemRepo { return &SubsystemRepo{db: db} }

func (r *SubsystemRepo) Upsert(ctx context.Context, s Subsystem) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO subsystems(id, project_id, name, description, status, responsible_member_id)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 name=excluded.name,
	 description=excluded.description,
	 status=excluded.status,
	 responsible_member_id=excluded.responsible_member_id,
	 updated_at=CURRENT_TIMESTAMP;
	`, s.ID, s.ProjectID, s.Name, s.Description, s.Status, s.ResponsibleMemberID)
	return err
}

const subsystemColumns = `id, project_id, name, description, status, responsible_member_id, created_at, updated_at`

// List returns the subsystems of a project; an empty projectID lists all.
func (r *SubsystemRepo) List(ctx context.Context, projectID string) ([]Subsystem, error) {
	query := `SELECT ` + subsystemColumns + ` FROM subsystems`
	var args []interface{}
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Subsystem
	for rows.Next() {
		s, err := scanSubsystem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Get returns nil when no subsystem has id.
func (r *SubsystemRepo) Get(ctx context.Context, id string) (*Subsystem, error) {
	s, err := scanSubsystem(r.db.QueryRowContext(ctx, `SELECT `+subsystemColumns+` FROM subsystems WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Delete removes the subsystem and its tasks.
func (r *SubsystemRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subsystems WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func scanSubsystem(row scanner) (Subsystem, error) {
	var s Subsystem
	var member sql.NullString
	if err := row.Scan(&s.ID, &s.ProjectID, &s.Name, &s.Description, &s.Status, &member, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return Subsystem{}, err
	}
	if member.Valid {
		s.ResponsibleMemberID = &member.String
	}
	return s, nil
}
