package repository

import (
	"context"
	"database/sql"
	"strings"
)

// TaskFilters defines list filters.
type TaskFilters struct {
	ProjectID   string
	SubsystemID string
	Search      string
	OpenOnly    bool
}

// TaskRepo handles tasks.
type TaskRepo struct {
	db *sql.DB
}

func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{db: db} }

func (r *TaskRepo) Upsert(ctx context.Context, t Task) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO tasks(id, project_id, subsystem_id, title, description, priority, progress, start_date, end_date, completed)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 subsystem_id=excluded.subsystem_id,
	 title=excluded.title,
	 description=excluded.description,
	 priority=excluded.priority,
	 progress=excluded.progress,
	 start_date=excluded.start_date,
	 end_date=excluded.end_date,
	 completed=excluded.completed,
	 updated_at=CURRENT_TIMESTAMP;
	`, t.ID, t.ProjectID, t.SubsystemID, t.Title, t.Description, t.Priority, t.Progress, t.StartDate, t.EndDate, t.Completed)
	return err
}

const taskColumns = `id, project_id, subsystem_id, title, description, priority, progress, start_date, end_date, completed, created_at, updated_at`

func (r *TaskRepo) List(ctx context.Context, f TaskFilters) ([]Task, error) {
	var where []string
	var args []interface{}

	if f.ProjectID != "" {
		where = append(where, "project_id = ?")
		args = append(args, f.ProjectID)
	}
	if f.SubsystemID != "" {
		where = append(where, "subsystem_id = ?")
		args = append(args, f.SubsystemID)
	}
	if f.Search != "" {
		where = append(where, "title LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}
	if f.OpenOnly {
		where = append(where, "completed = 0")
	}

	query := "SELECT " + taskColumns + " FROM tasks"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY completed, CASE priority WHEN 'critical' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END, title"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Get returns nil when no task has id.
func (r *TaskRepo) Get(ctx context.Context, id string) (*Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ProgressBySubsystem averages task progress per subsystem.
func (r *TaskRepo) ProgressBySubsystem(ctx context.Context, projectID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT subsystem_id, CAST(AVG(progress) AS INTEGER)
	FROM tasks
	WHERE project_id = ?
	GROUP BY subsystem_id;
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var id string
		var avg int
		if err := rows.Scan(&id, &avg); err != nil {
			return nil, err
		}
		out[id] = avg
	}
	return out, rows.Err()
}

func scanTask(row scanner) (Task, error) {
	var t Task
	var start, end sql.NullTime
	if err := row.Scan(&t.ID, &t.ProjectID, &t.SubsystemID, &t.Title, &t.Description, &t.Priority, &t.Progress,
		&start, &end, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Task{}, err
	}
	if start.Valid {
		t.StartDate = &start.Time
	}
	if end.Valid {
		t.EndDate = &end.Time
	}
	return t, nil
}
