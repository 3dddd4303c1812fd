package db

import "github.com/jakechorley/volunteer-tracker/pkg/core/model"

// UsersTable is the name of the user directory table
const UsersTable = "Users"

// UserRow is the stored shape of a directory entry
type UserRow struct {
	Email              string `ssql_header:"Email" ssql_type:"text"`
	Name               string `ssql_header:"Name" ssql_type:"text"`
	Role               string `ssql_header:"Role" ssql_type:"text"`
	VolunteerSheetName string `ssql_header:"Volunteer_Sheet_Name" ssql_type:"text"`
	CreatedDate        string `ssql_header:"Created_Date" ssql_type:"timestamp"`
	LastLogin          string `ssql_header:"Last_Login" ssql_type:"timestamp"`
}

func (r UserRow) toModel() model.User {
	return model.User{
		Email:              r.Email,
		Name:               r.Name,
		Role:               model.Role(r.Role),
		VolunteerSheetName: r.VolunteerSheetName,
		CreatedDate:        r.CreatedDate,
		LastLogin:          r.LastLogin,
	}
}

func userRowFrom(u model.User) UserRow {
	return UserRow{
		Email:              u.Email,
		Name:               u.Name,
		Role:               string(u.Role),
		VolunteerSheetName: u.VolunteerSheetName,
		CreatedDate:        u.CreatedDate,
		LastLogin:          u.LastLogin,
	}
}
