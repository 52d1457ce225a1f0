package attendance

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go-asistencia/internal/domain"
	"go-asistencia/internal/shared/apperror"
	"go-asistencia/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	service Service
	rdb     *redis.Client
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func NewHandlerWithRedis(service Service, rdb *redis.Client) *Handler {
	return &Handler{service: service, rdb: rdb}
}

// writeServiceError maps service errors to the envelope. Validation
// failures carry the full violation list in details.
func writeServiceError(c *gin.Context, err error) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput,
			"Attendance record is invalid", vErr.Messages)
		return
	}

	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

// Clock records entry or exit for the worker linked to the caller's
// account. It completes the idempotency contract: the in-flight lock is
// released when the request finishes, and a successful response is
// cached so a replayed key returns the same result.
func (h *Handler) Clock(c *gin.Context) {
	lockKey, _ := c.Get("idempotency_lock_key")
	cacheKey, _ := c.Get("idempotency_cache_key")

	if h.rdb != nil {
		if lk, ok := lockKey.(string); ok && lk != "" {
			defer h.rdb.Del(c.Request.Context(), lk)
		}
	}

	resp, err := h.service.Clock(c.Request.Context(), c.GetString("worker_id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if h.rdb != nil {
		if ck, ok := cacheKey.(string); ok && ck != "" {
			if payload, marshalErr := json.Marshal(resp); marshalErr == nil {
				_ = h.rdb.Set(c.Request.Context(), ck, payload, 24*time.Hour).Err()
			}
		}
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	unitID := ""
	if c.GetString("role") == domain.RoleSupervisor {
		unitID = c.GetString("unit_id")
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)

	resp, total, err := h.service.GetAll(c.Request.Context(), unitID, page, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	meta := response.NewPaginationMeta(total, page, limit)
	response.Success(c, http.StatusOK, resp, &meta)
}

func (h *Handler) GetByWorker(c *gin.Context) {
	resp, err := h.service.GetByWorker(c.Request.Context(),
		c.Param("worker_id"), c.Query("from"), c.Query("to"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

// GetMine lists the caller's own records for a range.
func (h *Handler) GetMine(c *gin.Context) {
	workerID := c.GetString("worker_id")
	if workerID == "" {
		writeServiceError(c, apperror.ErrForbidden)
		return
	}

	resp, err := h.service.GetByWorker(c.Request.Context(),
		workerID, c.Query("from"), c.Query("to"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}
