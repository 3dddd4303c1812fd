package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/jakechorley/volunteer-tracker/pkg/core/model"
	"github.com/jakechorley/volunteer-tracker/pkg/sheetssql"
	"github.com/jakechorley/volunteer-tracker/pkg/tablestore"
)

// DB provides user directory operations on top of a TableStore
type DB struct {
	store tablestore.Store

	// mu serializes read-modify-write sequences, which address rows by index
	mu sync.Mutex
}

// NewDB creates a new database instance
func NewDB(store tablestore.Store) *DB {
	return &DB{
		store: store,
	}
}

// ListUsers retrieves all directory entries in table order
func (db *DB) ListUsers(ctx context.Context) ([]model.User, error) {
	table, err := db.usersTable(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := sheetssql.DecodeRows[UserRow](table)
	if err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	users := make([]model.User, 0, len(rows))
	for _, row := range rows {
		if row.Email == "" {
			continue
		}
		users = append(users, row.toModel())
	}
	return users, nil
}

// GetUserByEmail returns the first entry whose email matches, or nil
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	table, err := db.usersTable(ctx)
	if err != nil {
		return nil, err
	}

	_, row, err := findUser(table, email)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	user := row.toModel()
	return &user, nil
}

// InsertUser appends a directory entry
func (db *DB) InsertUser(ctx context.Context, user model.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	table, err := db.usersTable(ctx)
	if err != nil {
		return err
	}

	row, err := sheetssql.EncodeRow(table.Header, nil, userRowFrom(user))
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := db.store.AppendRow(ctx, table.Name, row); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// UpdateUserRole overwrites the role of an existing entry in place
func (db *DB) UpdateUserRole(ctx context.Context, email string, role model.Role) error {
	return db.updateUser(ctx, email, func(row *UserRow) {
		row.Role = string(role)
	})
}

// UpdateLastLogin overwrites the last login of an existing entry in place
func (db *DB) UpdateLastLogin(ctx context.Context, email string, at string) error {
	return db.updateUser(ctx, email, func(row *UserRow) {
		row.LastLogin = at
	})
}

// DeleteUser removes the first entry whose email matches
func (db *DB) DeleteUser(ctx context.Context, email string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	table, err := db.usersTable(ctx)
	if err != nil {
		return err
	}

	index, row, err := findUser(table, email)
	if err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}

	if err := db.store.DeleteRow(ctx, table.Name, index); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (db *DB) updateUser(ctx context.Context, email string, apply func(*UserRow)) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	table, err := db.usersTable(ctx)
	if err != nil {
		return err
	}

	index, row, err := findUser(table, email)
	if err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}

	apply(row)

	updated, err := sheetssql.EncodeRow(table.Header, table.Rows[index], *row)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := db.store.UpdateRow(ctx, table.Name, index, updated); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// usersTable reads the Users table, creating it with its header on first use
func (db *DB) usersTable(ctx context.Context) (*tablestore.Table, error) {
	header, err := sheetssql.HeaderOf(UserRow{})
	if err != nil {
		return nil, err
	}

	name, err := tablestore.EnsureTable(ctx, db.store, UsersTable, header)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare users table: %w", err)
	}

	table, err := db.store.GetTable(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read users table: %w", err)
	}
	return table, nil
}

// findUser returns the data row index and decoded row of the first matching email
func findUser(table *tablestore.Table, email string) (int, *UserRow, error) {
	rows, err := sheetssql.DecodeRows[UserRow](table)
	if err != nil {
		return -1, nil, fmt.Errorf("failed to decode users: %w", err)
	}

	for i := range rows {
		if rows[i].Email != "" && model.SameEmail(rows[i].Email, email) {
			return i, &rows[i], nil
		}
	}
	return -1, nil, nil
}
