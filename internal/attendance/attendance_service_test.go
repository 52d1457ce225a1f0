package attendance

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	attendanceerrors "go-asistencia/internal/attendance/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	withTxFn              func(tx *sql.Tx) Repository
	createFn              func(ctx context.Context, r *Record) error
	updateFn              func(ctx context.Context, r *Record) error
	findByIDFn            func(ctx context.Context, id string) (*Record, error)
	findByWorkerAndDateFn func(ctx context.Context, workerID string, date time.Time) (*Record, error)
	findByWorkerRangeFn   func(ctx context.Context, workerID string, from, to time.Time) ([]Record, error)
	findAllFn             func(ctx context.Context, unitID string, page, limit int) ([]Record, int64, error)
	workerActiveFn        func(ctx context.Context, workerID string) (bool, error)
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}
func (f *fakeRepo) Create(ctx context.Context, r *Record) error { return f.createFn(ctx, r) }
func (f *fakeRepo) Update(ctx context.Context, r *Record) error { return f.updateFn(ctx, r) }
func (f *fakeRepo) FindByID(ctx context.Context, id string) (*Record, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeRepo) FindByWorkerAndDate(ctx context.Context, workerID string, date time.Time) (*Record, error) {
	return f.findByWorkerAndDateFn(ctx, workerID, date)
}
func (f *fakeRepo) FindByWorkerRange(ctx context.Context, workerID string, from, to time.Time) ([]Record, error) {
	return f.findByWorkerRangeFn(ctx, workerID, from, to)
}
func (f *fakeRepo) FindAll(ctx context.Context, unitID string, page, limit int) ([]Record, int64, error) {
	return f.findAllFn(ctx, unitID, page, limit)
}
func (f *fakeRepo) WorkerActive(ctx context.Context, workerID string) (bool, error) {
	return f.workerActiveFn(ctx, workerID)
}

func newTestService(t *testing.T, repo Repository, shifts *fakeSchedules, now time.Time) (*service, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, _ := sqlmock.New()
	svc := NewService(db, repo, NewEvaluator(shifts)).(*service)
	svc.now = func() time.Time { return now }
	return svc, mock, func() { db.Close() }
}

func TestService_Create_ClassifiesAndStores(t *testing.T) {
	workerID := uuid.New()
	monday := date("2024-03-04")

	var saved Record
	repo := &fakeRepo{
		createFn:       func(ctx context.Context, r *Record) error { saved = *r; return nil },
		workerActiveFn: func(ctx context.Context, id string) (bool, error) { return true, nil },
	}

	svc, mock, closeDB := newTestService(t, repo, &fakeSchedules{shift: morningShift()}, date("2024-03-10"))
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.Create(context.Background(), CreateRecordRequest{
		WorkerID:  workerID.String(),
		Date:      "2024-03-04",
		EntryTime: "08:25",
		ExitTime:  "16:05",
	})

	assert.NoError(t, err)
	assert.Equal(t, string(StatusLate), resp.Status)
	assert.Equal(t, 25, resp.LateMinutes)
	assert.Equal(t, monday, saved.Date)
	assert.Equal(t, "08:25:00", *saved.EntryTime)
	assert.Equal(t, "16:05:00", *saved.ExitTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Create_ReturnsAllViolations(t *testing.T) {
	repo := &fakeRepo{
		workerActiveFn: func(ctx context.Context, id string) (bool, error) { return false, nil },
	}

	svc, _, closeDB := newTestService(t, repo, &fakeSchedules{}, date("2024-03-10"))
	defer closeDB()

	_, err := svc.Create(context.Background(), CreateRecordRequest{
		WorkerID: uuid.New().String(),
		Date:     "2024-03-12",
		ExitTime: "17:00",
	})

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Messages, 3)
}

func TestService_Create_DuplicateDateConflict(t *testing.T) {
	repo := &fakeRepo{
		createFn: func(ctx context.Context, r *Record) error {
			return errors.New(`ERROR: duplicate key value violates unique constraint "idx_attendance_worker_date"`)
		},
		workerActiveFn: func(ctx context.Context, id string) (bool, error) { return true, nil },
	}

	svc, mock, closeDB := newTestService(t, repo, &fakeSchedules{shift: morningShift()}, date("2024-03-10"))
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), CreateRecordRequest{
		WorkerID:  uuid.New().String(),
		Date:      "2024-03-04",
		EntryTime: "08:00",
	})
	assert.ErrorIs(t, err, attendanceerrors.ErrRecordAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Clock_EntryThenExitThenRejected(t *testing.T) {
	workerID := uuid.New()
	now := time.Date(2024, 3, 4, 8, 5, 0, 0, time.UTC)

	var saved *Record
	repo := &fakeRepo{
		createFn: func(ctx context.Context, r *Record) error { c := *r; saved = &c; return nil },
		updateFn: func(ctx context.Context, r *Record) error { c := *r; saved = &c; return nil },
		findByWorkerAndDateFn: func(ctx context.Context, id string, d time.Time) (*Record, error) {
			if saved == nil {
				return nil, gorm.ErrRecordNotFound
			}
			c := *saved
			return &c, nil
		},
	}

	svc, mock, closeDB := newTestService(t, repo, &fakeSchedules{shift: morningShift()}, now)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.Clock(context.Background(), workerID.String())
	assert.NoError(t, err)
	assert.Equal(t, "entry", resp.Action)
	assert.Equal(t, "08:05:00", *resp.Record.EntryTime)
	assert.Equal(t, string(StatusOnTime), resp.Record.Status)

	svc.now = func() time.Time { return time.Date(2024, 3, 4, 16, 1, 30, 0, time.UTC) }
	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err = svc.Clock(context.Background(), workerID.String())
	assert.NoError(t, err)
	assert.Equal(t, "exit", resp.Action)
	assert.Equal(t, "16:01:30", *resp.Record.ExitTime)
	// Exit never re-classifies.
	assert.Equal(t, string(StatusOnTime), resp.Record.Status)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = svc.Clock(context.Background(), workerID.String())
	assert.ErrorIs(t, err, attendanceerrors.ErrDayComplete)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Clock_RequiresLinkedWorker(t *testing.T) {
	svc, _, closeDB := newTestService(t, &fakeRepo{}, &fakeSchedules{}, time.Now())
	defer closeDB()

	_, err := svc.Clock(context.Background(), "")
	assert.ErrorIs(t, err, attendanceerrors.ErrWorkerNotLinked)
}

func TestService_MarkExcused(t *testing.T) {
	workerID := uuid.New()

	existing := map[string]*Record{
		"2024-03-04": {ID: uuid.New(), WorkerID: workerID, Date: date("2024-03-04"), Status: StatusAbsent, LateMinutes: 0},
		"2024-03-05": {ID: uuid.New(), WorkerID: workerID, Date: date("2024-03-05"), Status: StatusOnTime},
	}

	created := 0
	updated := map[string]Status{}
	repo := &fakeRepo{
		findByWorkerAndDateFn: func(ctx context.Context, id string, d time.Time) (*Record, error) {
			if r, ok := existing[d.Format("2006-01-02")]; ok {
				c := *r
				return &c, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
		createFn: func(ctx context.Context, r *Record) error {
			created++
			assert.Equal(t, StatusExcused, r.Status)
			return nil
		},
		updateFn: func(ctx context.Context, r *Record) error {
			updated[r.Date.Format("2006-01-02")] = r.Status
			return nil
		},
	}

	svc, _, closeDB := newTestService(t, repo, &fakeSchedules{shift: morningShift()}, time.Now())
	defer closeDB()

	touched, err := svc.MarkExcused(context.Background(), workerID.String(), date("2024-03-04"), date("2024-03-10"))
	assert.NoError(t, err)
	// ABSENT flipped, missing working days created; ON_TIME left alone
	// and the weekend gets no rows.
	assert.Equal(t, 4, touched)
	assert.Equal(t, 3, created)
	assert.Equal(t, StatusExcused, updated["2024-03-04"])
	_, touchedOnTime := updated["2024-03-05"]
	assert.False(t, touchedOnTime)
}
