package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/volunteer-tracker/pkg/core/model"
	"github.com/jakechorley/volunteer-tracker/pkg/db"
)

const userColumns = `email, name, role, volunteer_sheet_name, created_date, last_login`

// ListUsers retrieves all users in insertion order
func (d *DB) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_date, email`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// GetUserByEmail returns the user with a case-insensitively equal email, or nil
func (d *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// InsertUser inserts a new user with a fresh id
func (d *DB) InsertUser(ctx context.Context, user model.User) error {
	created := parseTimestamp(user.CreatedDate)
	if created == nil {
		now := time.Now().UTC()
		created = &now
	}

	_, err := d.pool.Exec(ctx, `
		INSERT INTO users (id, email, name, role, volunteer_sheet_name, created_date, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.New().String(), user.Email, user.Name, string(user.Role), user.VolunteerSheetName, *created, parseTimestamp(user.LastLogin))
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// UpdateUserRole overwrites the role of an existing user
func (d *DB) UpdateUserRole(ctx context.Context, email string, role model.Role) error {
	tag, err := d.pool.Exec(ctx, `UPDATE users SET role = $2 WHERE LOWER(email) = LOWER($1)`, email, string(role))
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", db.ErrUserNotFound, email)
	}
	return nil
}

// UpdateLastLogin sets last_login; at must be RFC 3339
func (d *DB) UpdateLastLogin(ctx context.Context, email string, at string) error {
	tag, err := d.pool.Exec(ctx, `UPDATE users SET last_login = $2 WHERE LOWER(email) = LOWER($1)`, email, parseTimestamp(at))
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", db.ErrUserNotFound, email)
	}
	return nil
}

// DeleteUser removes a user
func (d *DB) DeleteUser(ctx context.Context, email string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM users WHERE LOWER(email) = LOWER($1)`, email)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", db.ErrUserNotFound, email)
	}
	return nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	var role string
	var created time.Time
	var lastLogin *time.Time
	if err := row.Scan(&u.Email, &u.Name, &role, &u.VolunteerSheetName, &created, &lastLogin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return u, err
		}
		return u, fmt.Errorf("failed to scan user: %w", err)
	}
	u.Role = model.Role(role)
	u.CreatedDate = created.UTC().Format(time.RFC3339)
	if lastLogin != nil {
		u.LastLogin = lastLogin.UTC().Format(time.RFC3339)
	}
	return u, nil
}

// parseTimestamp returns nil for empty or unparseable values
func parseTimestamp(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

var _ db.UserStore = (*DB)(nil)
