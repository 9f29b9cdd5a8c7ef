package repository

import (
	"context"
	"database/sql"
)

// MemberRepo handles team members.
type MemberRepo struct {
	db *sql.DB
}

func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{db: db} }

func (r *MemberRepo) Upsert(ctx context.Context, m Member) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO team_members(id, project_id, username, first_name, last_name, email, leader)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 username=excluded.username,
	 first_name=excluded.first_name,
	 last_name=excluded.last_name,
	 email=excluded.email,
	 leader=excluded.leader,
	 updated_at=CURRENT_TIMESTAMP;
	`, m.ID, m.ProjectID, m.Username, m.FirstName, m.LastName, m.Email, m.Leader)
	return err
}

const memberColumns = `id, project_id, username, first_name, last_name, email, leader, created_at, updated_at`

// List returns the members of a project; an empty projectID lists all.
func (r *MemberRepo) List(ctx context.Context, projectID string) ([]Member, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members`
	var args []interface{}
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY leader DESC, first_name, last_name`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Get returns nil when no member has id.
func (r *MemberRepo) Get(ctx context.Context, id string) (*Member, error) {
	m, err := scanMember(r.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM team_members WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM team_members WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func scanMember(row scanner) (Member, error) {
	var m Member
	if err := row.Scan(&m.ID, &m.ProjectID, &m.Username, &m.FirstName, &m.LastName, &m.Email, &m.Leader, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return Member{}, err
	}
	return m, nil
}
