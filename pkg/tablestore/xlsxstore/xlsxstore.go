package xlsxstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-tracker/pkg/tablestore"
)

// defaultSheet is the tab every new workbook starts with
const defaultSheet = "Sheet1"

// Store is a tablestore.Store backed by a local .xlsx workbook, one tab per table.
// The workbook is opened and saved on every call so edits made in a spreadsheet app are picked up.
type Store struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// New creates a store for the workbook at path. The file is created on the first write.
func New(path string, logger *zap.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// workbook is an open file plus whether it only exists in memory so far
type workbook struct {
	*excelize.File
	fresh bool
}

func (s *Store) open() (*workbook, error) {
	f, err := excelize.OpenFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &workbook{File: excelize.NewFile(), fresh: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", s.path, err)
	}
	return &workbook{File: f}, nil
}

func (s *Store) save(wb *workbook) error {
	if err := wb.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", s.path, err)
	}
	return nil
}

func (wb *workbook) names() []string {
	if wb.fresh {
		return []string{}
	}
	return wb.GetSheetList()
}

func (wb *workbook) resolve(name string) (string, error) {
	resolved, ok := tablestore.ResolveName(wb.names(), name)
	if !ok {
		return "", fmt.Errorf("%w: %s", tablestore.ErrTableNotFound, name)
	}
	return resolved, nil
}

func (s *Store) ListTableNames(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wb, err := s.open()
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	return wb.names(), nil
}

func (s *Store) GetTable(ctx context.Context, name string) (*tablestore.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wb, err := s.open()
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheet, err := wb.resolve(name)
	if err != nil {
		return nil, err
	}

	rows, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %s: %w", sheet, err)
	}

	table := &tablestore.Table{Name: sheet, Header: []string{}, Rows: [][]interface{}{}}
	for r, raw := range rows {
		if r == 0 {
			for _, h := range raw {
				table.Header = append(table.Header, h)
			}
			continue
		}

		row := make([]interface{}, len(raw))
		for c, value := range raw {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			row[c] = wb.typedValue(sheet, cell, value)
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func (s *Store) CreateTable(ctx context.Context, name string, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wb, err := s.open()
	if err != nil {
		return err
	}
	defer wb.Close()

	if _, err := wb.resolve(name); err == nil {
		return fmt.Errorf("%w: %s", tablestore.ErrTableExists, name)
	}

	if wb.fresh {
		err = wb.SetSheetName(defaultSheet, name)
	} else {
		_, err = wb.NewSheet(name)
	}
	if err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}

	values := make([]interface{}, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := wb.SetSheetRow(name, "A1", &values); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", name, err)
	}

	if err := s.save(wb); err != nil {
		return err
	}

	s.logger.Info("Created sheet", zap.String("sheet", name), zap.String("workbook", s.path))
	return nil
}

func (s *Store) AppendRow(ctx context.Context, name string, row []interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wb, err := s.open()
	if err != nil {
		return err
	}
	defer wb.Close()

	sheet, err := wb.resolve(name)
	if err != nil {
		return err
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read rows of %s: %w", sheet, err)
	}
	next := len(rows) + 1
	if next < 2 {
		next = 2
	}

	if err := wb.writeRow(sheet, next, row, 0); err != nil {
		return err
	}
	return s.save(wb)
}

func (s *Store) UpdateRow(ctx context.Context, name string, index int, row []interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wb, err := s.open()
	if err != nil {
		return err
	}
	defer wb.Close()

	sheet, err := wb.resolve(name)
	if err != nil {
		return err
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read rows of %s: %w", sheet, err)
	}
	if index < 0 || index+1 >= len(rows) {
		return fmt.Errorf("%w: %d", tablestore.ErrRowOutOfRange, index)
	}

	if err := wb.writeRow(sheet, index+2, row, len(rows[index+1])); err != nil {
		return err
	}
	return s.save(wb)
}

func (s *Store) DeleteRow(ctx context.Context, name string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wb, err := s.open()
	if err != nil {
		return err
	}
	defer wb.Close()

	sheet, err := wb.resolve(name)
	if err != nil {
		return err
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read rows of %s: %w", sheet, err)
	}
	if index < 0 || index+1 >= len(rows) {
		return fmt.Errorf("%w: %d", tablestore.ErrRowOutOfRange, index)
	}

	if err := wb.RemoveRow(sheet, index+2); err != nil {
		return fmt.Errorf("failed to delete row of %s: %w", sheet, err)
	}
	return s.save(wb)
}

// writeRow writes row at the 1-based rowNumber, blanking any of the first clearTo cells it does not cover
func (wb *workbook) writeRow(sheet string, rowNumber int, row []interface{}, clearTo int) error {
	values := make([]interface{}, len(row))
	copy(values, row)
	for len(values) < clearTo {
		values = append(values, nil)
	}

	cell, err := excelize.CoordinatesToCellName(1, rowNumber)
	if err != nil {
		return err
	}
	if err := wb.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", rowNumber, sheet, err)
	}
	return nil
}

// typedValue converts a raw cell string back to the value it was written as
func (wb *workbook) typedValue(sheet, cell, raw string) interface{} {
	if raw == "" {
		return nil
	}

	cellType, err := wb.GetCellType(sheet, cell)
	if err != nil {
		return raw
	}

	switch cellType {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return raw
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return t.UTC()
		}
	}

	number, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	if wb.isDateCell(sheet, cell) {
		if t, err := excelize.ExcelDateToTime(number, false); err == nil {
			return t.Round(time.Second)
		}
	}
	return number
}

func (wb *workbook) isDateCell(sheet, cell string) bool {
	styleID, err := wb.GetCellStyle(sheet, cell)
	if err != nil || styleID == 0 {
		return false
	}
	style, err := wb.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	return IsDateFormat(style.NumFmt, style.CustomNumFmt)
}

// IsDateFormat reports whether a number format renders a date or time
func IsDateFormat(numFmt int, custom *string) bool {
	switch {
	case numFmt >= 14 && numFmt <= 22, numFmt >= 45 && numFmt <= 47:
		return true
	}
	if custom == nil {
		return false
	}

	inQuotes, inBrackets := false, false
	for _, r := range strings.ToLower(*custom) {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case inQuotes:
		case r == '[':
			inBrackets = true
		case r == ']':
			inBrackets = false
		case inBrackets:
		case strings.ContainsRune("ydhs", r):
			return true
		}
	}
	return false
}

var _ tablestore.Store = (*Store)(nil)
