package attendance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-asistencia/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type fakeService struct {
	clockFn func(ctx context.Context, workerID string) (ClockResponse, error)
}

func (f *fakeService) Create(ctx context.Context, req CreateRecordRequest) (RecordResponse, error) {
	return RecordResponse{}, nil
}
func (f *fakeService) Update(ctx context.Context, id string, req UpdateRecordRequest) (RecordResponse, error) {
	return RecordResponse{}, nil
}
func (f *fakeService) Clock(ctx context.Context, workerID string) (ClockResponse, error) {
	return f.clockFn(ctx, workerID)
}
func (f *fakeService) GetAll(ctx context.Context, unitID string, page, limit int) ([]RecordResponse, int64, error) {
	return nil, 0, nil
}
func (f *fakeService) GetByWorker(ctx context.Context, workerID, from, to string) ([]RecordResponse, error) {
	return nil, nil
}
func (f *fakeService) MarkExcused(ctx context.Context, workerID string, from, to time.Time) (int, error) {
	return 0, nil
}

func clockRouter(h *Handler, rdb *redis.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/attendance/clock", func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Set("worker_id", "worker-1")
	}, middleware.Idempotency(rdb), h.Clock)
	return router
}

func TestHandler_Clock_ReplaysSameKey(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()

	calls := 0
	resp := ClockResponse{Action: "entry", Record: RecordResponse{
		ID: "rec-1", WorkerID: "worker-1", Date: "2024-03-04", Status: string(StatusOnTime),
	}}
	svc := &fakeService{
		clockFn: func(ctx context.Context, workerID string) (ClockResponse, error) {
			calls++
			return resp, nil
		},
	}

	router := clockRouter(NewHandlerWithRedis(svc, rdb), rdb)

	cacheKey := "idemp:/attendance/clock:user-1:tap-1"
	lockKey := cacheKey + ":lock"
	payload, _ := json.Marshal(resp)

	// First tap runs the service, fills the response cache and frees
	// the in-flight lock.
	rmock.ExpectGet(cacheKey).RedisNil()
	rmock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(true)
	rmock.ExpectSet(cacheKey, payload, 24*time.Hour).SetVal("OK")
	rmock.ExpectDel(lockKey).SetVal(1)

	req := httptest.NewRequest(http.MethodPost, "/attendance/clock", nil)
	req.Header.Set("Idempotency-Key", "tap-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, calls)

	// Second tap with the same key replays the cached response instead
	// of flipping entry into exit.
	rmock.ExpectGet(cacheKey).SetVal(string(payload))

	req = httptest.NewRequest(http.MethodPost, "/attendance/clock", nil)
	req.Header.Set("Idempotency-Key", "tap-1")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, calls)

	var envelope struct {
		Ok   bool          `json:"ok"`
		Data ClockResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Ok)
	assert.Equal(t, "entry", envelope.Data.Action)
	assert.Equal(t, "rec-1", envelope.Data.Record.ID)

	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestHandler_Clock_ReleasesLockOnServiceError(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()

	svc := &fakeService{
		clockFn: func(ctx context.Context, workerID string) (ClockResponse, error) {
			return ClockResponse{}, assert.AnError
		},
	}

	router := clockRouter(NewHandlerWithRedis(svc, rdb), rdb)

	cacheKey := "idemp:/attendance/clock:user-1:tap-2"
	lockKey := cacheKey + ":lock"

	// The lock is deleted even when clocking fails, so a retry is not
	// stuck behind the 30s expiry. Nothing is cached.
	rmock.ExpectGet(cacheKey).RedisNil()
	rmock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(true)
	rmock.ExpectDel(lockKey).SetVal(1)

	req := httptest.NewRequest(http.MethodPost, "/attendance/clock", nil)
	req.Header.Set("Idempotency-Key", "tap-2")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NoError(t, rmock.ExpectationsWereMet())
}
