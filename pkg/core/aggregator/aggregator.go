package aggregator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-tracker/pkg/core/format"
	"github.com/jakechorley/volunteer-tracker/pkg/core/model"
	"github.com/jakechorley/volunteer-tracker/pkg/core/schema"
	"github.com/jakechorley/volunteer-tracker/pkg/tablestore"
)

// SupervisionSuffix is appended to a volunteer's name to find their supervision table
const SupervisionSuffix = "_supervision"

// Aggregator assembles a volunteer's attendance and supervision records
type Aggregator struct {
	store  tablestore.Store
	logger *zap.Logger
}

// New creates an aggregator reading from store
func New(store tablestore.Store, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		store:  store,
		logger: logger,
	}
}

// Aggregate reads both tables for volunteerName.
// A missing table yields an empty slice for that half, never an error.
func (a *Aggregator) Aggregate(ctx context.Context, volunteerName string) (*model.VolunteerData, error) {
	key := tablestore.NormalizeName(volunteerName)
	result := &model.VolunteerData{
		Attendance:  []model.AttendanceRecord{},
		Supervision: []model.SupervisionRecord{},
	}
	if key == "" {
		return result, nil
	}

	names, err := a.store.ListTableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	if name, ok := tablestore.ResolveName(names, key); ok {
		table, err := a.readTable(ctx, name)
		if err != nil {
			return nil, err
		}
		if table != nil {
			result.Attendance = a.attendanceRecords(table)
		}
	}

	if name, ok := tablestore.ResolveName(names, key+SupervisionSuffix); ok {
		table, err := a.readTable(ctx, name)
		if err != nil {
			return nil, err
		}
		if table != nil {
			result.Supervision = a.supervisionRecords(table)
		}
	}

	a.logger.Debug("Aggregated volunteer data",
		zap.String("volunteer", key),
		zap.Int("attendance", len(result.Attendance)),
		zap.Int("supervision", len(result.Supervision)))

	return result, nil
}

// readTable returns nil when the table disappeared between listing and reading
func (a *Aggregator) readTable(ctx context.Context, name string) (*tablestore.Table, error) {
	table, err := a.store.GetTable(ctx, name)
	if errors.Is(err, tablestore.ErrTableNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", name, err)
	}
	return table, nil
}

func (a *Aggregator) attendanceRecords(table *tablestore.Table) []model.AttendanceRecord {
	roles := schema.ResolveAttendance(table.Header)
	a.logCollisions(table.Name, roles)

	cell := func(row []interface{}, role schema.Role) interface{} {
		return tablestore.CellAt(row, roles.Index(role))
	}

	records := make([]model.AttendanceRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		if isBlankRow(row) {
			continue
		}
		records = append(records, model.AttendanceRecord{
			Date:      format.FormatDate(cell(row, schema.RoleDate)),
			Time:      format.FormatTime(cell(row, schema.RoleTime)),
			ExtraFrom: format.FormatTime(cell(row, schema.RoleExtraFrom)),
			ExtraTill: format.FormatTime(cell(row, schema.RoleExtraTill)),
			Reason:    plain(cell(row, schema.RoleReason)),
			Duty:      plain(cell(row, schema.RoleDuty)),
			Hours:     plain(cell(row, schema.RoleHours)),
			Location:  plain(cell(row, schema.RoleLocation)),
			Remarks:   plain(cell(row, schema.RoleRemarks)),
		})
	}
	return records
}

func (a *Aggregator) supervisionRecords(table *tablestore.Table) []model.SupervisionRecord {
	roles := schema.ResolveSupervision(table.Header)
	a.logCollisions(table.Name, roles)

	cell := func(row []interface{}, role schema.Role) interface{} {
		return tablestore.CellAt(row, roles.Index(role))
	}

	records := make([]model.SupervisionRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		if isBlankRow(row) {
			continue
		}
		records = append(records, model.SupervisionRecord{
			SupervisorName: plain(cell(row, schema.RoleSupervisor)),
			TimeInHrs:      plain(cell(row, schema.RoleTime)),
			Date:           format.FormatDate(cell(row, schema.RoleDate)),
			Remark:         plain(cell(row, schema.RoleRemark)),
		})
	}
	return records
}

func (a *Aggregator) logCollisions(tableName string, roles schema.RoleMap) {
	for _, c := range roles.Collisions() {
		a.logger.Warn("Defaulted column collides with a matched header",
			zap.String("table", tableName),
			zap.String("defaulted_role", string(c.Defaulted)),
			zap.String("matched_role", string(c.Matched)),
			zap.Int("index", c.Index))
	}
}

// isBlankRow skips rows whose first three cells are all empty
func isBlankRow(row []interface{}) bool {
	for i := 0; i < 3; i++ {
		if !tablestore.IsEmpty(tablestore.CellAt(row, i)) {
			return false
		}
	}
	return true
}

func plain(v interface{}) string {
	if tablestore.IsEmpty(v) {
		return ""
	}
	return format.String(v)
}
