package sheetsclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

func newTestClient(t *testing.T, respond func(r *http.Request) string) (*Client, *[]recordedRequest) {
	t.Helper()
	var recorded []recordedRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		recorded = append(recorded, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   string(body),
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(respond(r)))
	}))
	t.Cleanup(server.Close)

	client, err := NewClientWithOptions(context.Background(),
		option.WithHTTPClient(server.Client()),
		option.WithEndpoint(server.URL+"/"),
	)
	require.NoError(t, err)
	return client, &recorded
}

func TestQuoteTitle(t *testing.T) {
	assert.Equal(t, "'Asha Rao'", QuoteTitle("Asha Rao"))
	assert.Equal(t, "'O''Neil_Supervision'", QuoteTitle("O'Neil_Supervision"))
}

func TestListSheets(t *testing.T) {
	client, recorded := newTestClient(t, func(r *http.Request) string {
		return `{"sheets":[{"properties":{"sheetId":0,"title":"Users"}},{"properties":{"sheetId":42,"title":"Asha"}}]}`
	})

	infos, err := client.ListSheets(context.Background(), "sheet-1")
	require.NoError(t, err)
	assert.Equal(t, []SheetInfo{{ID: 0, Title: "Users"}, {ID: 42, Title: "Asha"}}, infos)

	require.Len(t, *recorded, 1)
	assert.Equal(t, http.MethodGet, (*recorded)[0].Method)
	assert.True(t, strings.HasSuffix((*recorded)[0].Path, "/v4/spreadsheets/sheet-1"))
}

func TestGetGrid(t *testing.T) {
	client, recorded := newTestClient(t, func(r *http.Request) string {
		return `{"sheets":[{"data":[{"rowData":[
			{"values":[{"effectiveValue":{"stringValue":"Date"}}]},
			{"values":[{"effectiveValue":{"numberValue":45356},"effectiveFormat":{"numberFormat":{"type":"DATE"}}}]}
		]}]}]}`
	})

	rows, err := client.GetGrid(context.Background(), "sheet-1", "Asha")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Date", *rows[0].Values[0].EffectiveValue.StringValue)
	assert.Equal(t, "DATE", rows[1].Values[0].EffectiveFormat.NumberFormat.Type)

	assert.Contains(t, (*recorded)[0].Query, "includeGridData=true")
	assert.Contains(t, (*recorded)[0].Query, "ranges=%27Asha%27")
}

func TestAppendRows(t *testing.T) {
	client, recorded := newTestClient(t, func(r *http.Request) string { return `{}` })

	err := client.AppendRows(context.Background(), "sheet-1", "Asha", [][]interface{}{{"2024-03-04 10:00:00", "4/3/2024"}})
	require.NoError(t, err)

	req := (*recorded)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Contains(t, req.Path, ":append")
	assert.Contains(t, req.Query, "valueInputOption=USER_ENTERED")
	assert.Contains(t, req.Query, "insertDataOption=INSERT_ROWS")

	var body struct {
		Values [][]interface{} `json:"values"`
	}
	require.NoError(t, json.Unmarshal([]byte(req.Body), &body))
	assert.Equal(t, [][]interface{}{{"2024-03-04 10:00:00", "4/3/2024"}}, body.Values)
}

func TestDeleteRow(t *testing.T) {
	client, recorded := newTestClient(t, func(r *http.Request) string { return `{"replies":[{}]}` })

	require.NoError(t, client.DeleteRow(context.Background(), "sheet-1", 42, 3))

	req := (*recorded)[0]
	assert.Contains(t, req.Path, ":batchUpdate")
	assert.Contains(t, req.Body, `"dimension":"ROWS"`)
	assert.Contains(t, req.Body, `"startIndex":3`)
	assert.Contains(t, req.Body, `"endIndex":4`)
	assert.Contains(t, req.Body, `"sheetId":42`)
}

func TestCreateSheet(t *testing.T) {
	client, _ := newTestClient(t, func(r *http.Request) string {
		return `{"replies":[{"addSheet":{"properties":{"sheetId":7,"title":"Ravi"}}}]}`
	})

	id, err := client.CreateSheet(context.Background(), "sheet-1", "Ravi")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}
