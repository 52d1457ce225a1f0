package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"go-asistencia/internal/attendance"
	reporterrors "go-asistencia/internal/report/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	summaryKeyPrefix = "report:summary:"
	summaryCacheTTL  = 5 * time.Minute
)

//go:generate mockgen -source=report_service.go -destination=mock/report_service_mock.go -package=mock
type Service interface {
	Summarize(ctx context.Context, workerID, startDate, endDate string) (SummaryResponse, error)
	ExportCSV(ctx context.Context, workerID, startDate, endDate string) ([]byte, string, error)
	ExportUnitCSV(ctx context.Context, unitID, startDate, endDate string) ([]byte, string, error)
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("report.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.service")
	}
	return &service{
		repo:   repo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
		now:    time.Now,
	}
}

// Summarize aggregates a worker's stored records over an inclusive
// date range. Excused days do not count against the attendance
// percentage.
func (s *service) Summarize(ctx context.Context, workerID, startDate, endDate string) (SummaryResponse, error) {
	start, end, err := parseRange(workerID, startDate, endDate)
	if err != nil {
		return SummaryResponse{}, err
	}

	cacheKey := summaryKeyPrefix + workerID + ":" + startDate + ":" + endDate

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp SummaryResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		counts, err := s.repo.CountByStatus(ctx, workerID, start, end)
		if err != nil {
			s.logger.Error("summarize aggregation failed",
				zap.Error(err),
				zap.String("worker_id", workerID),
			)
			return nil, err
		}

		resp := buildSummary(workerID, start, end, counts)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, cacheKey, jsonData, summaryCacheTTL)
			}
		}

		return resp, nil
	})
	if err != nil {
		return SummaryResponse{}, err
	}

	return v.(SummaryResponse), nil
}

// ExportCSV renders the raw records for the range as a CSV download
// and returns the bytes plus a timestamped filename.
func (s *service) ExportCSV(ctx context.Context, workerID, startDate, endDate string) ([]byte, string, error) {
	start, end, err := parseRange(workerID, startDate, endDate)
	if err != nil {
		return nil, "", err
	}

	records, err := s.repo.FindRecords(ctx, workerID, start, end)
	if err != nil {
		s.logger.Error("export records fetch failed",
			zap.Error(err),
			zap.String("worker_id", workerID),
		)
		return nil, "", err
	}

	data, err := renderCSV(records)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("attendance_%s_%s.csv", workerID, s.now().Format("20060102_150405"))

	s.logger.Info("attendance export generated",
		zap.String("worker_id", workerID),
		zap.Int("rows", len(records)),
	)
	return data, filename, nil
}

// ExportUnitCSV is the same download over every worker in a unit.
func (s *service) ExportUnitCSV(ctx context.Context, unitID, startDate, endDate string) ([]byte, string, error) {
	if unitID == "" {
		return nil, "", reporterrors.ErrUnitRequired
	}
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, "", reporterrors.ErrInvalidDate
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, "", reporterrors.ErrInvalidDate
	}
	if end.Before(start) {
		return nil, "", reporterrors.ErrEndBeforeStart
	}

	records, err := s.repo.FindRecordsByUnit(ctx, unitID, start, end)
	if err != nil {
		s.logger.Error("unit export records fetch failed",
			zap.Error(err),
			zap.String("unit_id", unitID),
		)
		return nil, "", err
	}

	data, err := renderCSV(records)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("attendance_unit_%s_%s.csv", unitID, s.now().Format("20060102_150405"))

	s.logger.Info("unit attendance export generated",
		zap.String("unit_id", unitID),
		zap.Int("rows", len(records)),
	)
	return data, filename, nil
}

func renderCSV(records []attendance.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"worker_id", "date", "entry_time", "exit_time", "status", "late_minutes"}); err != nil {
		return nil, err
	}
	for _, r := range records {
		row := []string{
			r.WorkerID.String(),
			r.Date.Format("2006-01-02"),
			timeOrDash(r.EntryTime),
			timeOrDash(r.ExitTime),
			string(r.Status),
			strconv.Itoa(r.LateMinutes),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildSummary(workerID string, start, end time.Time, counts []StatusCount) SummaryResponse {
	resp := SummaryResponse{
		WorkerID:  workerID,
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		TotalDays: int(end.Sub(start).Hours()/24) + 1,
	}

	for _, c := range counts {
		switch attendance.Status(c.Status) {
		case attendance.StatusOnTime:
			resp.OnTime = c.Count
		case attendance.StatusLate:
			resp.Late = c.Count
			resp.TotalLateMinutes = c.LateMinutes
		case attendance.StatusAbsent:
			resp.Absent = c.Count
		case attendance.StatusExcused:
			resp.Excused = c.Count
		}
	}

	owed := resp.OnTime + resp.Late + resp.Absent
	if owed > 0 {
		pct := float64(resp.OnTime+resp.Late) / float64(owed) * 100
		resp.AttendancePercentage = math.Round(pct*100) / 100
	}
	return resp
}

func parseRange(workerID, startStr, endStr string) (time.Time, time.Time, error) {
	if workerID == "" {
		return time.Time{}, time.Time{}, reporterrors.ErrWorkerRequired
	}
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, reporterrors.ErrInvalidDate
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, reporterrors.ErrInvalidDate
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, reporterrors.ErrEndBeforeStart
	}
	return start, end, nil
}

func timeOrDash(t *string) string {
	if t == nil {
		return "-"
	}
	return *t
}
