package sheetsclient

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client wraps the Google Sheets API client
type Client struct {
	service *sheets.Service
}

// SheetInfo identifies one tab of a spreadsheet
type SheetInfo struct {
	ID    int64
	Title string
}

// NewClient creates a Sheets client authorised by ts
func NewClient(ctx context.Context, ts oauth2.TokenSource) (*Client, error) {
	return NewClientWithOptions(ctx, option.WithTokenSource(ts))
}

// NewClientWithOptions creates a Sheets client from raw client options
func NewClientWithOptions(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		service: service,
	}, nil
}

// ListSheets returns the tabs of a spreadsheet in display order
func (c *Client) ListSheets(ctx context.Context, spreadsheetID string) ([]SheetInfo, error) {
	resp, err := c.service.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties(sheetId,title)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	infos := make([]SheetInfo, 0, len(resp.Sheets))
	for _, sheet := range resp.Sheets {
		if sheet.Properties == nil {
			continue
		}
		infos = append(infos, SheetInfo{ID: sheet.Properties.SheetId, Title: sheet.Properties.Title})
	}
	return infos, nil
}

// GetGrid reads every cell of a tab with its effective value and number format.
// Reading the grid rather than plain values keeps dates distinguishable from numbers.
func (c *Client) GetGrid(ctx context.Context, spreadsheetID, title string) ([]*sheets.RowData, error) {
	resp, err := c.service.Spreadsheets.Get(spreadsheetID).
		Ranges(QuoteTitle(title)).
		IncludeGridData(true).
		Fields("sheets(properties(title),data(rowData(values(effectiveValue,effectiveFormat/numberFormat,formattedValue))))").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get grid for %s: %w", title, err)
	}

	var rows []*sheets.RowData
	for _, sheet := range resp.Sheets {
		for _, data := range sheet.Data {
			rows = append(rows, data.RowData...)
		}
	}
	return rows, nil
}

// AppendRows appends rows after the last row of a tab.
// Values are USER_ENTERED so date strings become date cells, as a manual entry would.
func (c *Client) AppendRows(ctx context.Context, spreadsheetID, title string, values [][]interface{}) error {
	valueRange := &sheets.ValueRange{
		Values: values,
	}

	_, err := c.service.Spreadsheets.Values.Append(spreadsheetID, QuoteTitle(title), valueRange).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append rows: %w", err)
	}

	return nil
}

// UpdateRow overwrites one row; rowNumber is 1-based as shown in the sheet
func (c *Client) UpdateRow(ctx context.Context, spreadsheetID, title string, rowNumber int, values []interface{}) error {
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{values},
	}

	sheetRange := fmt.Sprintf("%s!A%d", QuoteTitle(title), rowNumber)
	_, err := c.service.Spreadsheets.Values.Update(spreadsheetID, sheetRange, valueRange).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update row %d: %w", rowNumber, err)
	}

	return nil
}

// DeleteRow removes one row and shifts the rows below it up; rowIndex is 0-based
func (c *Client) DeleteRow(ctx context.Context, spreadsheetID string, sheetID int64, rowIndex int) error {
	req := &sheets.Request{
		DeleteDimension: &sheets.DeleteDimensionRequest{
			Range: &sheets.DimensionRange{
				SheetId:    sheetID,
				Dimension:  "ROWS",
				StartIndex: int64(rowIndex),
				EndIndex:   int64(rowIndex + 1),
			},
		},
	}

	return c.batchUpdate(ctx, spreadsheetID, req)
}

// CreateSheet creates a new sheet/tab in the spreadsheet
func (c *Client) CreateSheet(ctx context.Context, spreadsheetID, sheetTitle string) (int64, error) {
	req := &sheets.Request{
		AddSheet: &sheets.AddSheetRequest{
			Properties: &sheets.SheetProperties{
				Title: sheetTitle,
			},
		},
	}

	batchUpdateRequest := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{req},
	}

	resp, err := c.service.Spreadsheets.BatchUpdate(spreadsheetID, batchUpdateRequest).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to create sheet: %w", err)
	}

	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		return 0, fmt.Errorf("unexpected response from create sheet")
	}

	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

func (c *Client) batchUpdate(ctx context.Context, spreadsheetID string, requests ...*sheets.Request) error {
	batchUpdateRequest := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}

	if _, err := c.service.Spreadsheets.BatchUpdate(spreadsheetID, batchUpdateRequest).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to batch update: %w", err)
	}
	return nil
}

// QuoteTitle turns a tab title into an A1 range reference
func QuoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
