package format

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// isoTime matches the time component of an ISO 8601 date-time, e.g. 1899-12-30T09:30:00.000Z
var isoTime = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T(\d{2}):(\d{2})`)

// FormatDate renders a cell as D/M/YYYY when it is date typed, otherwise as its string form.
// The calendar fields stored in the value are used as-is; no time zone conversion happens.
func FormatDate(value interface{}) string {
	if isBlank(value) {
		return ""
	}
	if t, ok := value.(time.Time); ok {
		return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
	}
	return String(value)
}

// FormatTime renders a cell as HH:MM when it is date typed or an ISO-like date-time string,
// otherwise as its string form
func FormatTime(value interface{}) string {
	if isBlank(value) {
		return ""
	}
	switch v := value.(type) {
	case time.Time:
		return v.Format("15:04")
	case string:
		if m := isoTime.FindStringSubmatch(v); m != nil {
			return m[1] + ":" + m[2]
		}
		return v
	}
	return String(value)
}

// String renders a plain cell. Numbers drop trailing zeros (2 -> "2", 1.5 -> "1.5").
func String(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(value)
}

// isBlank reports falsy cells: nil, "", 0 and false
func isBlank(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case float64:
		return v == 0
	case int:
		return v == 0
	case bool:
		return !v
	}
	return false
}
