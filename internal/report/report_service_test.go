package report

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go-asistencia/internal/attendance"
	reporterrors "go-asistencia/internal/report/errors"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type fakeRepo struct {
	countByStatusFn func(ctx context.Context, workerID string, from, to time.Time) ([]StatusCount, error)
	findRecordsFn       func(ctx context.Context, workerID string, from, to time.Time) ([]attendance.Record, error)
	findRecordsByUnitFn func(ctx context.Context, unitID string, from, to time.Time) ([]attendance.Record, error)
}

func (f *fakeRepo) CountByStatus(ctx context.Context, workerID string, from, to time.Time) ([]StatusCount, error) {
	return f.countByStatusFn(ctx, workerID, from, to)
}
func (f *fakeRepo) FindRecords(ctx context.Context, workerID string, from, to time.Time) ([]attendance.Record, error) {
	return f.findRecordsFn(ctx, workerID, from, to)
}
func (f *fakeRepo) FindRecordsByUnit(ctx context.Context, unitID string, from, to time.Time) ([]attendance.Record, error) {
	return f.findRecordsByUnitFn(ctx, unitID, from, to)
}

func date(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func str(s string) *string { return &s }

func newTestService(repo Repository, rdb *redis.Client) *service {
	svc := NewService(repo, rdb).(*service)
	svc.now = func() time.Time { return date("2024-04-01").Add(9 * time.Hour) }
	return svc
}

func TestService_Summarize_Percentage(t *testing.T) {
	workerID := uuid.NewString()
	repo := &fakeRepo{
		countByStatusFn: func(ctx context.Context, wid string, from, to time.Time) ([]StatusCount, error) {
			assert.Equal(t, workerID, wid)
			return []StatusCount{
				{Status: "ON_TIME", Count: 20},
				{Status: "LATE", Count: 3, LateMinutes: 74},
				{Status: "ABSENT", Count: 2},
				{Status: "EXCUSED", Count: 5},
			}, nil
		},
	}

	resp, err := newTestService(repo, nil).Summarize(context.Background(), workerID, "2024-03-01", "2024-03-30")

	assert.NoError(t, err)
	assert.Equal(t, 30, resp.TotalDays)
	assert.Equal(t, 20, resp.OnTime)
	assert.Equal(t, 3, resp.Late)
	assert.Equal(t, 2, resp.Absent)
	assert.Equal(t, 5, resp.Excused)
	assert.Equal(t, 74, resp.TotalLateMinutes)
	// 23 present out of 25 owed; excused days are out of the base.
	assert.Equal(t, 92.0, resp.AttendancePercentage)
}

func TestService_Summarize_RoundsToTwoDecimals(t *testing.T) {
	repo := &fakeRepo{
		countByStatusFn: func(ctx context.Context, wid string, from, to time.Time) ([]StatusCount, error) {
			return []StatusCount{
				{Status: "ON_TIME", Count: 1},
				{Status: "ABSENT", Count: 2},
			}, nil
		},
	}

	resp, err := newTestService(repo, nil).Summarize(context.Background(), uuid.NewString(), "2024-03-01", "2024-03-03")

	assert.NoError(t, err)
	assert.Equal(t, 33.33, resp.AttendancePercentage)
}

func TestService_Summarize_ZeroOwedDays(t *testing.T) {
	repo := &fakeRepo{
		countByStatusFn: func(ctx context.Context, wid string, from, to time.Time) ([]StatusCount, error) {
			return []StatusCount{{Status: "EXCUSED", Count: 5}}, nil
		},
	}

	resp, err := newTestService(repo, nil).Summarize(context.Background(), uuid.NewString(), "2024-03-01", "2024-03-05")

	assert.NoError(t, err)
	assert.Equal(t, 5, resp.Excused)
	assert.Equal(t, 0.0, resp.AttendancePercentage)
}

func TestService_Summarize_ValidatesInput(t *testing.T) {
	svc := newTestService(&fakeRepo{}, nil)

	_, err := svc.Summarize(context.Background(), "", "2024-03-01", "2024-03-05")
	assert.ErrorIs(t, err, reporterrors.ErrWorkerRequired)

	_, err = svc.Summarize(context.Background(), uuid.NewString(), "03/01/2024", "2024-03-05")
	assert.ErrorIs(t, err, reporterrors.ErrInvalidDate)

	_, err = svc.Summarize(context.Background(), uuid.NewString(), "2024-03-05", "2024-03-01")
	assert.ErrorIs(t, err, reporterrors.ErrEndBeforeStart)
}

func TestService_Summarize_ServesFromCache(t *testing.T) {
	workerID := uuid.NewString()
	cached := SummaryResponse{WorkerID: workerID, OnTime: 7, AttendancePercentage: 100}
	payload, _ := json.Marshal(cached)

	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(summaryKeyPrefix + workerID + ":2024-03-01:2024-03-05").SetVal(string(payload))

	// The repository must not be consulted on a cache hit.
	repo := &fakeRepo{
		countByStatusFn: func(ctx context.Context, wid string, from, to time.Time) ([]StatusCount, error) {
			t.Fatal("unexpected aggregation query")
			return nil, nil
		},
	}

	resp, err := newTestService(repo, rdb).Summarize(context.Background(), workerID, "2024-03-01", "2024-03-05")

	assert.NoError(t, err)
	assert.Equal(t, cached, resp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_ExportCSV(t *testing.T) {
	workerID := uuid.New()
	repo := &fakeRepo{
		findRecordsFn: func(ctx context.Context, wid string, from, to time.Time) ([]attendance.Record, error) {
			return []attendance.Record{
				{WorkerID: workerID, Date: date("2024-03-04"), EntryTime: str("08:05:00"), ExitTime: str("16:02:00"), Status: attendance.StatusOnTime},
				{WorkerID: workerID, Date: date("2024-03-05"), EntryTime: str("08:25:00"), Status: attendance.StatusLate, LateMinutes: 25},
				{WorkerID: workerID, Date: date("2024-03-06"), Status: attendance.StatusAbsent},
			}, nil
		},
	}

	data, filename, err := newTestService(repo, nil).ExportCSV(context.Background(), workerID.String(), "2024-03-04", "2024-03-06")

	assert.NoError(t, err)
	assert.Equal(t, "attendance_"+workerID.String()+"_20240401_090000.csv", filename)

	wid := workerID.String()
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, 4, len(lines))
	assert.Equal(t, "worker_id,date,entry_time,exit_time,status,late_minutes", lines[0])
	assert.Equal(t, wid+",2024-03-04,08:05:00,16:02:00,ON_TIME,0", lines[1])
	assert.Equal(t, wid+",2024-03-05,08:25:00,-,LATE,25", lines[2])
	assert.Equal(t, wid+",2024-03-06,-,-,ABSENT,0", lines[3])
}

func TestService_ExportUnitCSV_RequiresUnit(t *testing.T) {
	_, _, err := newTestService(&fakeRepo{}, nil).ExportUnitCSV(context.Background(), "", "2024-03-04", "2024-03-06")
	assert.ErrorIs(t, err, reporterrors.ErrUnitRequired)
}
