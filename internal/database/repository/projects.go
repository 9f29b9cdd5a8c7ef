package repository

import (
	"context"
	"database/sql"
)

// ProjectRepo handles projects.
type ProjectRepo struct {
	db *sql.DB
}

func NewProjectRepo(db *sql.DB) *ProjectRepo { return &ProjectRepo{db: db} }

func (r *ProjectRepo) Upsert(ctx context.Context, p Project) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO projects(id, name, description, start_date, goal_end_date, hard_deadline)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 name=excluded.name,
	 description=excluded.description,
	 start_date=excluded.start_date,
	 goal_end_date=excluded.goal_end_date,
	 hard_deadline=excluded.hard_deadline,
	 updated_at=CURRENT_TIMESTAMP;
	`, p.ID, p.Name, p.Description, p.StartDate, p.GoalEndDate, p.HardDeadline)
	return err
}

const projectColumns = `id, name, description, start_date, goal_end_date, hard_deadline, created_at, updated_at`

func (r *ProjectRepo) List(ctx context.Context) ([]Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY start_date DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get returns nil when no project has id.
func (r *ProjectRepo) Get(ctx context.Context, id string) (*Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Delete removes the project and, through foreign keys, everything in it.
func (r *ProjectRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func scanProject(row scanner) (Project, error) {
	var p Project
	var goal, hard sql.NullTime
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.StartDate, &goal, &hard, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Project{}, err
	}
	if goal.Valid {
		p.GoalEndDate = &goal.Time
	}
	if hard.Valid {
		p.HardDeadline = &hard.Time
	}
	return p, nil
}
