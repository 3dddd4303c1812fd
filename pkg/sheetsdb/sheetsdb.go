package sheetsdb

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/sheets/v4"

	"github.com/jakechorley/volunteer-tracker/pkg/clients/sheetsclient"
	"github.com/jakechorley/volunteer-tracker/pkg/core/format"
	"github.com/jakechorley/volunteer-tracker/pkg/tablestore"
)

// WriteTimeLayout is how time.Time cells are sent; USER_ENTERED parsing turns it back into a date cell
const WriteTimeLayout = "2006-01-02 15:04:05"

// serialEpoch is day zero of spreadsheet serial dates
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// SheetsAPI is the subset of the sheets client the store needs
type SheetsAPI interface {
	ListSheets(ctx context.Context, spreadsheetID string) ([]sheetsclient.SheetInfo, error)
	GetGrid(ctx context.Context, spreadsheetID, title string) ([]*sheets.RowData, error)
	AppendRows(ctx context.Context, spreadsheetID, title string, values [][]interface{}) error
	UpdateRow(ctx context.Context, spreadsheetID, title string, rowNumber int, values []interface{}) error
	DeleteRow(ctx context.Context, spreadsheetID string, sheetID int64, rowIndex int) error
	CreateSheet(ctx context.Context, spreadsheetID, title string) (int64, error)
}

// Store is a tablestore.Store backed by the tabs of one spreadsheet
type Store struct {
	api           SheetsAPI
	spreadsheetID string
	logger        *zap.Logger
}

// New creates a store over a spreadsheet
func New(api SheetsAPI, spreadsheetID string, logger *zap.Logger) *Store {
	return &Store{
		api:           api,
		spreadsheetID: spreadsheetID,
		logger:        logger,
	}
}

func (s *Store) ListTableNames(ctx context.Context) ([]string, error) {
	infos, err := s.api.ListSheets(ctx, s.spreadsheetID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Title
	}
	return names, nil
}

func (s *Store) GetTable(ctx context.Context, name string) (*tablestore.Table, error) {
	info, err := s.resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	grid, err := s.api.GetGrid(ctx, s.spreadsheetID, info.Title)
	if err != nil {
		return nil, err
	}

	table := &tablestore.Table{Name: info.Title, Header: []string{}, Rows: [][]interface{}{}}
	for i, rowData := range grid {
		row := rowValues(rowData)
		if i == 0 {
			for _, cell := range row {
				table.Header = append(table.Header, format.String(cell))
			}
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	s.logger.Debug("Read sheet", zap.String("sheet", info.Title), zap.Int("rows", len(table.Rows)))
	return table, nil
}

func (s *Store) CreateTable(ctx context.Context, name string, header []string) error {
	if _, err := s.resolve(ctx, name); err == nil {
		return fmt.Errorf("%w: %s", tablestore.ErrTableExists, name)
	}

	if _, err := s.api.CreateSheet(ctx, s.spreadsheetID, name); err != nil {
		return err
	}

	values := make([]interface{}, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := s.api.UpdateRow(ctx, s.spreadsheetID, name, 1, values); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", name, err)
	}

	s.logger.Info("Created sheet", zap.String("sheet", name))
	return nil
}

func (s *Store) AppendRow(ctx context.Context, name string, row []interface{}) error {
	info, err := s.resolve(ctx, name)
	if err != nil {
		return err
	}
	return s.api.AppendRows(ctx, s.spreadsheetID, info.Title, [][]interface{}{toWireRow(row)})
}

func (s *Store) UpdateRow(ctx context.Context, name string, index int, row []interface{}) error {
	table, err := s.GetTable(ctx, name)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(table.Rows) {
		return fmt.Errorf("%w: %d", tablestore.ErrRowOutOfRange, index)
	}

	// Data row 0 is sheet row 2
	return s.api.UpdateRow(ctx, s.spreadsheetID, table.Name, index+2, toWireRow(row))
}

func (s *Store) DeleteRow(ctx context.Context, name string, index int) error {
	info, err := s.resolve(ctx, name)
	if err != nil {
		return err
	}

	table, err := s.GetTable(ctx, info.Title)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(table.Rows) {
		return fmt.Errorf("%w: %d", tablestore.ErrRowOutOfRange, index)
	}

	// Grid row 0 is the header
	return s.api.DeleteRow(ctx, s.spreadsheetID, info.ID, index+1)
}

func (s *Store) resolve(ctx context.Context, name string) (sheetsclient.SheetInfo, error) {
	infos, err := s.api.ListSheets(ctx, s.spreadsheetID)
	if err != nil {
		return sheetsclient.SheetInfo{}, err
	}

	titles := make([]string, len(infos))
	for i, info := range infos {
		titles[i] = info.Title
	}
	resolved, ok := tablestore.ResolveName(titles, name)
	if !ok {
		return sheetsclient.SheetInfo{}, fmt.Errorf("%w: %s", tablestore.ErrTableNotFound, name)
	}
	for _, info := range infos {
		if info.Title == resolved {
			return info, nil
		}
	}
	return sheetsclient.SheetInfo{}, fmt.Errorf("%w: %s", tablestore.ErrTableNotFound, name)
}

func rowValues(rowData *sheets.RowData) []interface{} {
	if rowData == nil {
		return []interface{}{}
	}
	row := make([]interface{}, len(rowData.Values))
	for i, cell := range rowData.Values {
		row[i] = cellValue(cell)
	}
	return row
}

// cellValue converts a grid cell into a table cell. Numbers formatted as dates or times
// become time.Time in UTC holding the wall-clock value shown in the sheet.
func cellValue(cell *sheets.CellData) interface{} {
	if cell == nil || cell.EffectiveValue == nil {
		return nil
	}

	v := cell.EffectiveValue
	switch {
	case v.NumberValue != nil:
		if isDateFormat(cell.EffectiveFormat) {
			return SerialToTime(*v.NumberValue)
		}
		return *v.NumberValue
	case v.StringValue != nil:
		return *v.StringValue
	case v.BoolValue != nil:
		return *v.BoolValue
	case v.ErrorValue != nil:
		return cell.FormattedValue
	}
	return nil
}

func isDateFormat(f *sheets.CellFormat) bool {
	if f == nil || f.NumberFormat == nil {
		return false
	}
	switch f.NumberFormat.Type {
	case "DATE", "TIME", "DATE_TIME":
		return true
	}
	return false
}

// SerialToTime converts a spreadsheet serial number (days since 1899-12-30) to a time, to the second
func SerialToTime(serial float64) time.Time {
	seconds := math.Round(serial * 24 * 60 * 60)
	return serialEpoch.Add(time.Duration(seconds) * time.Second)
}

func toWireRow(row []interface{}) []interface{} {
	out := make([]interface{}, len(row))
	for i, cell := range row {
		switch v := cell.(type) {
		case time.Time:
			out[i] = v.Format(WriteTimeLayout)
		case nil:
			out[i] = ""
		default:
			out[i] = v
		}
	}
	return out
}

var _ tablestore.Store = (*Store)(nil)
