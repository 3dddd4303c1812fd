package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-tracker/pkg/apperrors"
	"github.com/jakechorley/volunteer-tracker/pkg/core/model"
	"github.com/jakechorley/volunteer-tracker/pkg/core/schema"
	"github.com/jakechorley/volunteer-tracker/pkg/tablestore"
)

// SupervisionTableSuffix is appended to a volunteer's name for their supervision table
const SupervisionTableSuffix = "_Supervision"

// SaveAttendance appends an attendance entry to the volunteer's table (creating it if needed),
// mirrors it to the master attendance table when that exists, then invalidates the volunteer's cache entry
func (s *VolunteerDataService) SaveAttendance(ctx context.Context, sub model.AttendanceSubmission) error {
	name := strings.TrimSpace(sub.VolunteerName)
	if name == "" {
		return apperrors.New(apperrors.ErrInvalidArgument, "volunteerName is required")
	}
	if err := s.checkReserved(name); err != nil {
		return err
	}

	s.logger.Info("Saving attendance", zap.String("volunteer", name), zap.String("date", sub.Date))

	tableName, err := tablestore.EnsureTable(ctx, s.store, name, schema.AttendanceHeader)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to prepare attendance table: %w", err))
	}

	now := s.now()
	row := []interface{}{
		now,
		sub.Date,
		sub.Time,
		sub.ExtraFrom,
		sub.ExtraTill,
		sub.Reason,
		sub.Duty,
		sub.Hours,
		sub.DutyFrom,
		sub.Remarks,
	}
	if err := s.store.AppendRow(ctx, tableName, row); err != nil {
		return apperrors.Internal(fmt.Errorf("failed to append attendance row: %w", err))
	}

	// The volunteer table is the source of truth; invalidate before anything else can fail
	s.invalidate(name)

	masterRow := append([]interface{}{now, name}, row[1:]...)
	s.mirror(ctx, s.masterAttendanceTable, masterRow)

	s.logger.Info("Attendance saved", zap.String("volunteer", name), zap.String("table", tableName))
	return nil
}

// SaveSupervision appends a supervision entry to <volunteer>_Supervision (creating it if needed),
// mirrors it to the master supervision table when that exists, then invalidates the volunteer's cache entry
func (s *VolunteerDataService) SaveSupervision(ctx context.Context, sub model.SupervisionSubmission) error {
	name := strings.TrimSpace(sub.VolunteerName)
	if name == "" {
		return apperrors.New(apperrors.ErrInvalidArgument, "volunteerName is required")
	}
	if err := s.checkReserved(name); err != nil {
		return err
	}

	s.logger.Info("Saving supervision", zap.String("volunteer", name), zap.String("supervisor", sub.SupervisorName))

	tableName, err := tablestore.EnsureTable(ctx, s.store, name+SupervisionTableSuffix, schema.SupervisionHeader)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to prepare supervision table: %w", err))
	}

	now := s.now()
	row := []interface{}{
		now,
		sub.SupervisorName,
		sub.TimeInHrs,
		sub.Date,
		sub.Remark,
	}
	if err := s.store.AppendRow(ctx, tableName, row); err != nil {
		return apperrors.Internal(fmt.Errorf("failed to append supervision row: %w", err))
	}

	s.invalidate(name)

	masterRow := append([]interface{}{now, name}, row[1:]...)
	s.mirror(ctx, s.masterSupervisionTable, masterRow)

	s.logger.Info("Supervision saved", zap.String("volunteer", name), zap.String("table", tableName))
	return nil
}

// mirror appends row to a master log table if it is configured and exists.
// Failures are logged; the primary write has already succeeded.
func (s *VolunteerDataService) mirror(ctx context.Context, table string, row []interface{}) {
	if table == "" {
		return
	}

	resolved, ok, err := tablestore.Lookup(ctx, s.store, table)
	if err != nil {
		s.logger.Warn("Failed to look up master table", zap.String("table", table), zap.Error(err))
		return
	}
	if !ok {
		return
	}

	if err := s.store.AppendRow(ctx, resolved, row); err != nil {
		s.logger.Warn("Failed to append to master table", zap.String("table", resolved), zap.Error(err))
	}
}
