package services

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DutyHours is the total logged against one duty
type DutyHours struct {
	Duty    string          `json:"duty"`
	Hours   decimal.Decimal `json:"hours"`
	Entries int             `json:"entries"`
}

// HoursSummary totals the hours a volunteer has logged
type HoursSummary struct {
	Volunteer        string          `json:"volunteer"`
	AttendanceHours  decimal.Decimal `json:"attendanceHours"`
	SupervisionHours decimal.Decimal `json:"supervisionHours"`
	ByDuty           []DutyHours     `json:"byDuty"`
	// Unparsed counts entries whose hours cell was not a number
	Unparsed int `json:"unparsed"`
}

// SummarizeHours aggregates a volunteer's records and totals the hours columns.
// Entries with blank hours are ignored; entries with non-numeric hours are counted in Unparsed.
func (s *VolunteerDataService) SummarizeHours(ctx context.Context, volunteerName string) (*HoursSummary, error) {
	data, err := s.aggregate(ctx, volunteerName)
	if err != nil {
		return nil, err
	}

	summary := &HoursSummary{
		Volunteer:        strings.TrimSpace(volunteerName),
		AttendanceHours:  decimal.Zero,
		SupervisionHours: decimal.Zero,
		ByDuty:           []DutyHours{},
	}

	byDuty := make(map[string]*DutyHours)
	for _, rec := range data.Attendance {
		hours, ok := parseHours(rec.Hours)
		if !ok {
			if strings.TrimSpace(rec.Hours) != "" {
				summary.Unparsed++
			}
			continue
		}

		summary.AttendanceHours = summary.AttendanceHours.Add(hours)

		duty := strings.TrimSpace(rec.Duty)
		entry, exists := byDuty[duty]
		if !exists {
			entry = &DutyHours{Duty: duty, Hours: decimal.Zero}
			byDuty[duty] = entry
		}
		entry.Hours = entry.Hours.Add(hours)
		entry.Entries++
	}

	for _, rec := range data.Supervision {
		hours, ok := parseHours(rec.TimeInHrs)
		if !ok {
			if strings.TrimSpace(rec.TimeInHrs) != "" {
				summary.Unparsed++
			}
			continue
		}
		summary.SupervisionHours = summary.SupervisionHours.Add(hours)
	}

	for _, entry := range byDuty {
		summary.ByDuty = append(summary.ByDuty, *entry)
	}
	sort.Slice(summary.ByDuty, func(i, j int) bool {
		return summary.ByDuty[i].Duty < summary.ByDuty[j].Duty
	})

	if summary.Unparsed > 0 {
		s.logger.Warn("Some hours entries could not be parsed",
			zap.String("volunteer", summary.Volunteer),
			zap.Int("unparsed", summary.Unparsed))
	}

	return summary, nil
}

func parseHours(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
