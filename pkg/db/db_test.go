package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/volunteer-tracker/pkg/core/model"
	"github.com/jakechorley/volunteer-tracker/pkg/tablestore/memstore"
)

var usersHeader = []string{"Email", "Name", "Role", "Volunteer_Sheet_Name", "Created_Date", "Last_Login"}

func TestUsersTable_CreatedOnFirstUse(t *testing.T) {
	store := memstore.New()
	db := NewDB(store)
	ctx := context.Background()

	users, err := db.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	table, err := store.GetTable(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, "Users", table.Name)
	assert.Equal(t, usersHeader, table.Header)
}

func TestInsertAndGetUser(t *testing.T) {
	store := memstore.New()
	db := NewDB(store)
	ctx := context.Background()

	require.NoError(t, db.InsertUser(ctx, model.User{
		Email:              "Asha@Example.com",
		Name:               "Asha Rao",
		Role:               model.RoleVolunteer,
		VolunteerSheetName: "Asha Rao",
		CreatedDate:        "2024-03-01T10:00:00Z",
	}))

	user, err := db.GetUserByEmail(ctx, " asha@example.COM ")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Asha@Example.com", user.Email)
	assert.Equal(t, model.RoleVolunteer, user.Role)
	assert.Equal(t, "", user.LastLogin)

	missing, err := db.GetUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestReadsExistingSheetLayout(t *testing.T) {
	store := memstore.New()
	created := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	store.Seed("USERS", []string{"email", "name", "role", "volunteer_sheet_name", "created_date", "last_login", "Notes"},
		[]interface{}{"admin@x.com", "Admin", "admin", "", created, nil, "founder"},
		[]interface{}{"", "", ""},
		[]interface{}{"vol@x.com", "Vol", "volunteer", "Vol Sheet"},
	)
	db := NewDB(store)
	ctx := context.Background()

	users, err := db.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "2024-01-02T09:00:00Z", users[0].CreatedDate)
	assert.Equal(t, "Vol Sheet", users[1].VolunteerSheetName)

	require.NoError(t, db.UpdateUserRole(ctx, "ADMIN@x.com", model.RoleVolunteer))

	table, err := store.GetTable(ctx, "Users")
	require.NoError(t, err)
	assert.Equal(t, "volunteer", table.Rows[0][2])
	assert.Equal(t, "founder", table.Rows[0][6], "unmapped columns survive updates")
}

func TestUpdateLastLogin(t *testing.T) {
	store := memstore.New()
	store.Seed("Users", usersHeader,
		[]interface{}{"a@x.com", "A", "admin", "", "2024-01-01", ""},
	)
	db := NewDB(store)
	ctx := context.Background()

	require.NoError(t, db.UpdateLastLogin(ctx, "a@x.com", "2024-05-05T10:00:00Z"))

	user, err := db.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-05T10:00:00Z", user.LastLogin)
	assert.Equal(t, "2024-01-01", user.CreatedDate)

	err = db.UpdateLastLogin(ctx, "b@x.com", "now")
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestDeleteUser(t *testing.T) {
	store := memstore.New()
	store.Seed("Users", usersHeader,
		[]interface{}{"a@x.com", "A", "admin"},
		[]interface{}{"b@x.com", "B", "volunteer"},
		[]interface{}{"c@x.com", "C", "volunteer"},
	)
	db := NewDB(store)
	ctx := context.Background()

	require.NoError(t, db.DeleteUser(ctx, "B@X.COM"))

	users, err := db.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a@x.com", users[0].Email)
	assert.Equal(t, "c@x.com", users[1].Email)

	err = db.DeleteUser(ctx, "b@x.com")
	assert.True(t, errors.Is(err, ErrUserNotFound))
}
