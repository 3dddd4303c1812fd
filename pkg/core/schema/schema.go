package schema

import (
	"sort"
	"strings"
)

// Role is a semantic column role
type Role string

// Attendance roles
const (
	RoleTimestamp Role = "timestamp"
	RoleDate      Role = "date"
	RoleTime      Role = "time"
	RoleExtraFrom Role = "extraFrom"
	RoleExtraTill Role = "extraTill"
	RoleReason    Role = "reason"
	RoleDuty      Role = "duty"
	RoleHours     Role = "hours"
	RoleLocation  Role = "location"
	RoleRemarks   Role = "remarks"
)

// Supervision roles (timestamp, time and date are shared with attendance)
const (
	RoleSupervisor Role = "supervisor"
	RoleRemark     Role = "remark"
)

// Rule assigns Role to a header cell when Match returns true.
// Match receives the trimmed, lower-cased header.
type Rule struct {
	Role  Role
	Match func(header string) bool
}

// RoleMap is the resolved role -> column index mapping for one table read
type RoleMap struct {
	index     map[Role]int
	defaulted map[Role]bool
}

// Index returns the column index for role, or -1 when the role is unknown
func (m RoleMap) Index(role Role) int {
	if i, ok := m.index[role]; ok {
		return i
	}
	return -1
}

// Defaulted reports whether role fell back to its positional default
func (m RoleMap) Defaulted(role Role) bool {
	return m.defaulted[role]
}

// Indexes returns a copy of the mapping
func (m RoleMap) Indexes() map[Role]int {
	out := make(map[Role]int, len(m.index))
	for role, i := range m.index {
		out[role] = i
	}
	return out
}

// Collision is a defaulted role that landed on a column already claimed by a header match
type Collision struct {
	Defaulted Role
	Matched   Role
	Index     int
}

// Collisions lists defaulted roles whose index equals a header-matched role's index.
// These are reported, not resolved.
func (m RoleMap) Collisions() []Collision {
	var out []Collision
	for role, i := range m.index {
		if !m.defaulted[role] {
			continue
		}
		for other, j := range m.index {
			if other != role && !m.defaulted[other] && i == j {
				out = append(out, Collision{Defaulted: role, Matched: other, Index: i})
			}
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Index != out[b].Index {
			return out[a].Index < out[b].Index
		}
		return out[a].Defaulted < out[b].Defaulted
	})
	return out
}

// Resolve maps header cells to roles.
// Each header is checked against rules in order and the first match wins, so a column takes at most one role.
// When several columns match the same role the later column wins.
// Roles no header matched take their index from defaults.
func Resolve(header []string, rules []Rule, defaults map[Role]int) RoleMap {
	m := RoleMap{
		index:     make(map[Role]int, len(defaults)),
		defaulted: make(map[Role]bool),
	}

	for col, cell := range header {
		h := strings.ToLower(strings.TrimSpace(cell))
		if h == "" {
			continue
		}
		for _, rule := range rules {
			if rule.Match(h) {
				m.index[rule.Role] = col
				break
			}
		}
	}

	for role, i := range defaults {
		if _, ok := m.index[role]; !ok {
			m.index[role] = i
			m.defaulted[role] = true
		}
	}

	return m
}

// Equals matches a header exactly
func Equals(words ...string) func(string) bool {
	return func(h string) bool {
		for _, w := range words {
			if h == w {
				return true
			}
		}
		return false
	}
}

// ContainsAny matches a header containing any of the substrings
func ContainsAny(subs ...string) func(string) bool {
	return func(h string) bool {
		for _, s := range subs {
			if strings.Contains(h, s) {
				return true
			}
		}
		return false
	}
}

// ContainsAll matches a header containing every substring
func ContainsAll(subs ...string) func(string) bool {
	return func(h string) bool {
		for _, s := range subs {
			if !strings.Contains(h, s) {
				return false
			}
		}
		return true
	}
}
