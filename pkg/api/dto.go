package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jakechorley/volunteer-tracker/pkg/core/model"
)

const (
	statusSuccess = "success"
	statusError   = "error"
	statusOK      = "ok"
)

// StatusResponse is the shape of every reply that only carries a status and message
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// DataResponse is the legacy getData / getSupervisionData reply
type DataResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// UserResponse is returned by the authenticate actions
type UserResponse struct {
	Status string         `json:"status"`
	User   *model.Profile `json:"user"`
}

// UsersResponse is returned by getUsers
type UsersResponse struct {
	Status string          `json:"status"`
	Users  []model.Profile `json:"users"`
}

// FlexString is a form value that may arrive as a JSON string or number.
// Numbers keep their literal text, so 1.50 stays "1.50".
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected a string or number, got %s", data)
	}
	*f = FlexString(n.String())
	return nil
}

// SubmissionRequest is the POST body. Type "supervision" selects the supervision fields;
// anything else is treated as an attendance entry.
type SubmissionRequest struct {
	Type          string     `json:"type"`
	VolunteerName FlexString `json:"volunteerName"`

	Date      FlexString `json:"date"`
	Time      FlexString `json:"time"`
	ExtraFrom FlexString `json:"extraFrom"`
	ExtraTill FlexString `json:"extraTill"`
	Reason    FlexString `json:"reason"`
	Duty      FlexString `json:"duty"`
	Hours     FlexString `json:"hours"`
	DutyFrom  FlexString `json:"dutyFrom"`
	Remarks   FlexString `json:"remarks"`

	SupervisorName FlexString `json:"supervisorName"`
	TimeInHrs      FlexString `json:"timeInHrs"`
	Remark         FlexString `json:"remark"`
}

func (r SubmissionRequest) attendance() model.AttendanceSubmission {
	return model.AttendanceSubmission{
		VolunteerName: string(r.VolunteerName),
		Date:          string(r.Date),
		Time:          string(r.Time),
		ExtraFrom:     string(r.ExtraFrom),
		ExtraTill:     string(r.ExtraTill),
		Reason:        string(r.Reason),
		Duty:          string(r.Duty),
		Hours:         string(r.Hours),
		DutyFrom:      string(r.DutyFrom),
		Remarks:       string(r.Remarks),
	}
}

func (r SubmissionRequest) supervision() model.SupervisionSubmission {
	return model.SupervisionSubmission{
		VolunteerName:  string(r.VolunteerName),
		SupervisorName: string(r.SupervisorName),
		TimeInHrs:      string(r.TimeInHrs),
		Date:           string(r.Date),
		Remark:         string(r.Remark),
	}
}
