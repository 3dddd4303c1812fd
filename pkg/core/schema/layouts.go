package schema

// Header rows written when the tracker creates a volunteer's tables
var (
	AttendanceHeader = []string{
		"Timestamp",
		"Date",
		"Time",
		"Extra Time From",
		"Extra Time Till",
		"Reason for Other",
		"Duty",
		"No of Hours",
		"Duty From",
		"Remarks",
	}

	SupervisionHeader = []string{
		"Timestamp",
		"Supervisor Name",
		"Time (in hrs)",
		"Date",
		"Remark",
	}
)

// AttendanceDefaults matches the column order of AttendanceHeader
var AttendanceDefaults = map[Role]int{
	RoleTimestamp: 0,
	RoleDate:      1,
	RoleTime:      2,
	RoleExtraFrom: 3,
	RoleExtraTill: 4,
	RoleReason:    5,
	RoleDuty:      6,
	RoleHours:     7,
	RoleLocation:  8,
	RoleRemarks:   9,
}

// SupervisionDefaults matches the column order of SupervisionHeader
var SupervisionDefaults = map[Role]int{
	RoleTimestamp:  0,
	RoleSupervisor: 1,
	RoleTime:       2,
	RoleDate:       3,
	RoleRemark:     4,
}

// AttendanceRules is evaluated top to bottom.
// Exact matches come first, then specific substrings, then the generic "date" and "time" catch-alls.
var AttendanceRules = []Rule{
	{RoleTimestamp, ContainsAny("timestamp")},
	{RoleDate, Equals("date")},
	{RoleTime, Equals("time")},
	{RoleExtraFrom, ContainsAll("extra", "from")},
	{RoleExtraTill, func(h string) bool {
		return ContainsAll("extra", "till")(h) || ContainsAll("extra", "until")(h)
	}},
	{RoleReason, ContainsAny("reason")},
	{RoleLocation, ContainsAny("duty from", "location", "centre", "center")},
	{RoleHours, ContainsAny("hour", "hrs")},
	{RoleDuty, ContainsAny("duty")},
	{RoleRemarks, ContainsAny("remark")},
	{RoleDate, ContainsAny("date")},
	{RoleTime, ContainsAny("time")},
}

// SupervisionRules is evaluated top to bottom
var SupervisionRules = []Rule{
	{RoleTimestamp, ContainsAny("timestamp")},
	{RoleDate, Equals("date")},
	{RoleSupervisor, ContainsAny("supervisor")},
	{RoleTime, ContainsAny("hrs", "hour")},
	{RoleRemark, ContainsAny("remark")},
	{RoleDate, ContainsAny("date")},
	{RoleTime, ContainsAny("time")},
}

// ResolveAttendance resolves an attendance table header
func ResolveAttendance(header []string) RoleMap {
	return Resolve(header, AttendanceRules, AttendanceDefaults)
}

// ResolveSupervision resolves a supervision table header
func ResolveSupervision(header []string) RoleMap {
	return Resolve(header, SupervisionRules, SupervisionDefaults)
}
