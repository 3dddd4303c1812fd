package model

import "strings"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleVolunteer Role = "volunteer"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleVolunteer
}

// AttendanceRecord is one row of a volunteer's attendance table
type AttendanceRecord struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	ExtraFrom string `json:"extraFrom"`
	ExtraTill string `json:"extraTill"`
	Reason    string `json:"reason"`
	Duty      string `json:"duty"`
	Hours     string `json:"hours"`
	Location  string `json:"location"`
	Remarks   string `json:"remarks"`
}

// SupervisionRecord is one row of a volunteer's <name>_Supervision table
type SupervisionRecord struct {
	SupervisorName string `json:"supervisorName"`
	TimeInHrs      string `json:"timeInHrs"`
	Date           string `json:"date"`
	Remark         string `json:"remark"`
}

// VolunteerData is the merged read model for one volunteer.
// Both slices are always non-nil so they serialize as [].
type VolunteerData struct {
	Attendance  []AttendanceRecord  `json:"attendance"`
	Supervision []SupervisionRecord `json:"supervision"`
}

// AttendanceSubmission is the payload of an attendance write
type AttendanceSubmission struct {
	VolunteerName string `json:"volunteerName"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	ExtraFrom     string `json:"extraFrom"`
	ExtraTill     string `json:"extraTill"`
	Reason        string `json:"reason"`
	Duty          string `json:"duty"`
	Hours         string `json:"hours"`
	DutyFrom      string `json:"dutyFrom"`
	Remarks       string `json:"remarks"`
}

// SupervisionSubmission is the payload of a supervision write
type SupervisionSubmission struct {
	VolunteerName  string `json:"volunteerName"`
	SupervisorName string `json:"supervisorName"`
	TimeInHrs      string `json:"timeInHrs"`
	Date           string `json:"date"`
	Remark         string `json:"remark"`
}

// User is a user directory entry
type User struct {
	Email              string
	Name               string
	Role               Role
	VolunteerSheetName string
	CreatedDate        string
	LastLogin          string
}

// Profile is the public view of a user returned by authentication and listing
type Profile struct {
	Email              string `json:"email"`
	Name               string `json:"name"`
	Role               Role   `json:"role"`
	VolunteerSheetName string `json:"volunteerSheetName"`
}

// Profile strips the timestamps from a user
func (u User) Profile() Profile {
	return Profile{
		Email:              u.Email,
		Name:               u.Name,
		Role:               u.Role,
		VolunteerSheetName: u.VolunteerSheetName,
	}
}

// SameEmail compares emails case-insensitively
func SameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
