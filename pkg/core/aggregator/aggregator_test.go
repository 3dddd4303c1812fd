package aggregator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-tracker/pkg/core/model"
	"github.com/jakechorley/volunteer-tracker/pkg/core/schema"
	"github.com/jakechorley/volunteer-tracker/pkg/tablestore"
	"github.com/jakechorley/volunteer-tracker/pkg/tablestore/memstore"
)

func seededStore() *memstore.Store {
	store := memstore.New()
	store.Seed("Asha Rao", schema.AttendanceHeader,
		[]interface{}{
			time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			time.Date(1899, 12, 30, 9, 30, 0, 0, time.UTC),
			"", "", "", "Reception", float64(4), "Centre", "",
		},
		[]interface{}{"", "", ""},
		[]interface{}{
			"2024-03-05T10:00:00Z", "5/3/2024", "1899-12-30T14:00:00.000Z",
			"1899-12-30T18:00:00.000Z", "1899-12-30T19:30:00.000Z", "Event", "Kitchen", "5.5", "Home", "late shift",
		},
	)
	store.Seed("Asha Rao_Supervision", schema.SupervisionHeader,
		[]interface{}{"2024-03-06T10:00:00Z", "Meera", float64(1), time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), "good"},
	)
	return store
}

func TestAggregate_MergesBothTables(t *testing.T) {
	agg := New(seededStore(), zap.NewNop())

	data, err := agg.Aggregate(context.Background(), "Asha Rao")
	require.NoError(t, err)

	require.Len(t, data.Attendance, 2)
	assert.Equal(t, model.AttendanceRecord{
		Date:     "4/3/2024",
		Time:     "09:30",
		Duty:     "Reception",
		Hours:    "4",
		Location: "Centre",
	}, data.Attendance[0])
	assert.Equal(t, model.AttendanceRecord{
		Date:      "5/3/2024",
		Time:      "14:00",
		ExtraFrom: "18:00",
		ExtraTill: "19:30",
		Reason:    "Event",
		Duty:      "Kitchen",
		Hours:     "5.5",
		Location:  "Home",
		Remarks:   "late shift",
	}, data.Attendance[1])

	require.Len(t, data.Supervision, 1)
	assert.Equal(t, model.SupervisionRecord{
		SupervisorName: "Meera",
		TimeInHrs:      "1",
		Date:           "6/3/2024",
		Remark:         "good",
	}, data.Supervision[0])
}

func TestAggregate_NormalizesName(t *testing.T) {
	agg := New(seededStore(), zap.NewNop())
	ctx := context.Background()

	expected, err := agg.Aggregate(ctx, "Asha Rao")
	require.NoError(t, err)

	for _, name := range []string{"asha rao", "  ASHA RAO ", "\tAsha Rao\n"} {
		got, err := agg.Aggregate(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, expected, got, name)
	}
}

func TestAggregate_NoTables(t *testing.T) {
	agg := New(memstore.New(), zap.NewNop())

	data, err := agg.Aggregate(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.NotNil(t, data.Attendance)
	assert.NotNil(t, data.Supervision)
	assert.Empty(t, data.Attendance)
	assert.Empty(t, data.Supervision)
}

func TestAggregate_EmptyName(t *testing.T) {
	agg := New(seededStore(), zap.NewNop())

	data, err := agg.Aggregate(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, data.Attendance)
	assert.Empty(t, data.Supervision)
}

func TestAggregate_OnlySupervision(t *testing.T) {
	store := memstore.New()
	store.Seed("ravi_SUPERVISION", schema.SupervisionHeader,
		[]interface{}{"ts", "Meera", "2", "1/1/2024", ""},
	)
	agg := New(store, zap.NewNop())

	data, err := agg.Aggregate(context.Background(), "Ravi")
	require.NoError(t, err)
	assert.Empty(t, data.Attendance)
	require.Len(t, data.Supervision, 1)
	assert.Equal(t, "1/1/2024", data.Supervision[0].Date)
}

func TestAggregate_SupervisionTableIsNotAttendance(t *testing.T) {
	store := memstore.New()
	store.Seed("Ravi_Supervision", schema.SupervisionHeader,
		[]interface{}{"ts", "Meera", "2", "1/1/2024", ""},
	)
	agg := New(store, zap.NewNop())

	data, err := agg.Aggregate(context.Background(), "Ravi_Supervision")
	require.NoError(t, err)
	// Looked up as an attendance table named "ravi_supervision"
	assert.Len(t, data.Attendance, 1)
	assert.Empty(t, data.Supervision)
}

func TestAggregate_HeaderlessLayoutUsesDefaults(t *testing.T) {
	store := memstore.New()
	store.Seed("Old Sheet", []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"},
		[]interface{}{"ts", "1/2/2024", "10:00", "", "", "", "Desk", "3", "Centre", "ok"},
	)
	agg := New(store, zap.NewNop())

	data, err := agg.Aggregate(context.Background(), "old sheet")
	require.NoError(t, err)
	require.Len(t, data.Attendance, 1)
	assert.Equal(t, model.AttendanceRecord{
		Date:     "1/2/2024",
		Time:     "10:00",
		Duty:     "Desk",
		Hours:    "3",
		Location: "Centre",
		Remarks:  "ok",
	}, data.Attendance[0])
}

func TestAggregate_ShortRowsAndOrder(t *testing.T) {
	store := memstore.New()
	store.Seed("V", []string{"Date", "Duty"},
		[]interface{}{"first"},
		[]interface{}{nil, nil, nil, "ignored"},
		[]interface{}{"second", "Desk"},
		[]interface{}{"third"},
	)
	agg := New(store, zap.NewNop())

	data, err := agg.Aggregate(context.Background(), "v")
	require.NoError(t, err)
	require.Len(t, data.Attendance, 3)
	assert.Equal(t, "first", data.Attendance[0].Date)
	assert.Equal(t, "second", data.Attendance[1].Date)
	assert.Equal(t, "Desk", data.Attendance[1].Duty)
	assert.Equal(t, "third", data.Attendance[2].Date)
}

type failingStore struct {
	tablestore.Store
	listErr error
	getErr  error
}

func (f *failingStore) ListTableNames(ctx context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []string{"Asha"}, nil
}

func (f *failingStore) GetTable(ctx context.Context, name string) (*tablestore.Table, error) {
	return nil, f.getErr
}

func TestAggregate_StorageErrors(t *testing.T) {
	ctx := context.Background()

	agg := New(&failingStore{listErr: errors.New("quota exceeded")}, zap.NewNop())
	_, err := agg.Aggregate(ctx, "Asha")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list tables")

	agg = New(&failingStore{getErr: errors.New("503")}, zap.NewNop())
	_, err = agg.Aggregate(ctx, "Asha")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read table Asha")

	agg = New(&failingStore{getErr: tablestore.ErrTableNotFound}, zap.NewNop())
	data, err := agg.Aggregate(ctx, "Asha")
	require.NoError(t, err)
	assert.Empty(t, data.Attendance)
}
