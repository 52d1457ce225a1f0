package report

import (
	"net/http"

	"go-asistencia/internal/domain"
	"go-asistencia/internal/shared/apperror"
	"go-asistencia/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// targetWorkerID resolves whose report is being asked for. Workers
// always get their own, whatever the query says.
func targetWorkerID(c *gin.Context) string {
	if c.GetString("role") == domain.RoleWorker {
		return c.GetString("worker_id")
	}
	return c.Query("worker_id")
}

func (h *Handler) GetSummary(c *gin.Context) {
	resp, err := h.service.Summarize(
		c.Request.Context(),
		targetWorkerID(c),
		c.Query("start_date"),
		c.Query("end_date"),
	)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ExportCSV(c *gin.Context) {
	data, filename, err := h.service.ExportCSV(
		c.Request.Context(),
		targetWorkerID(c),
		c.Query("start_date"),
		c.Query("end_date"),
	)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}

func (h *Handler) ExportUnitCSV(c *gin.Context) {
	unitID := c.Query("unit_id")
	if c.GetString("role") == domain.RoleSupervisor {
		unitID = c.GetString("unit_id")
	}

	data, filename, err := h.service.ExportUnitCSV(
		c.Request.Context(),
		unitID,
		c.Query("start_date"),
		c.Query("end_date"),
	)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}
