package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"taskboard/internal/domain"
)

// FindProject loads one project aggregate by id.
func (s Store) FindProject(ctx context.Context, id string) (domain.Project, error) {
	var payload string
	err := s.DB.QueryRowContext(ctx, `SELECT doc_json FROM projects WHERE id=?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return domain.Project{}, ErrNotFound
	}
	if err != nil {
		return domain.Project{}, err
	}
	return decodeProject(payload)
}

// SaveProject replaces the whole aggregate document in one statement.
func (s Store) SaveProject(ctx context.Context, p domain.Project) error {
	if p.ID == "" {
		return fmt.Errorf("project id required")
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}
	_, err = s.DB.ExecContext(ctx, `INSERT INTO projects(id,created_by,doc_json,created_at,updated_at) VALUES (?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET doc_json=excluded.doc_json, updated_at=excluded.updated_at`,
		p.ID, p.CreatedBy, string(payload), p.CreatedAt, p.UpdatedAt)
	return err
}

// DeleteProject removes the aggregate.
func (s Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM projects WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListProjectsByCreator returns a user's own projects, newest first.
func (s Store) ListProjectsByCreator(ctx context.Context, userID string) ([]domain.Project, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT doc_json FROM projects WHERE created_by=? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

// ListProjects returns every project aggregate. Callers filter in memory;
// membership lives inside the document, not in a queryable column.
func (s Store) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT doc_json FROM projects ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

func collectProjects(rows *sql.Rows) ([]domain.Project, error) {
	var res []domain.Project
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		p, err := decodeProject(payload)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func decodeProject(payload string) (domain.Project, error) {
	var p domain.Project
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return p, fmt.Errorf("decode project document: %w", err)
	}
	if p.Members == nil {
		p.Members = []string{}
	}
	if p.Tasks == nil {
		p.Tasks = []domain.Task{}
	}
	return p, nil
}
