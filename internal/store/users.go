package store

import (
	"context"
	"database/sql"

	"taskboard/internal/domain"
)

const userCols = `id, username, email, password_hash, created_at, updated_at`

// InsertUser persists a new account row.
func (s Store) InsertUser(ctx context.Context, u domain.User) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO users(`+userCols+`) VALUES (?,?,?,?,?,?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	return err
}

// GetUser returns one account by id.
func (s Store) GetUser(ctx context.Context, id string) (domain.User, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	return scanUser(row)
}

// GetUserByUsername looks a user up by exact username.
func (s Store) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE username=?`, username)
	return scanUser(row)
}

// GetUserByUsernameOrEmail serves registration duplicate checks.
func (s Store) GetUserByUsernameOrEmail(ctx context.Context, username, email string) (domain.User, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE username=? OR email=? LIMIT 1`, username, email)
	return scanUser(row)
}

// ListUsers returns all accounts ordered by username.
func (s Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+userCols+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

// UsernamesByID resolves a set of user ids to usernames in one query.
// Unknown ids are simply absent from the result map.
func (s Store) UsernamesByID(ctx context.Context, ids []string) (map[string]string, error) {
	res := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	args := make([]any, 0, len(ids))
	q := `SELECT id, username FROM users WHERE id IN (`
	for i, id := range ids {
		if i > 0 {
			q += ","
		}
		q += "?"
		args = append(args, id)
	}
	q += `)`
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, username string
		if err := rows.Scan(&id, &username); err != nil {
			return nil, err
		}
		res[id] = username
	}
	return res, rows.Err()
}

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return domain.User{}, ErrNotFound
	}
	return u, err
}
