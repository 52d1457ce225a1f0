package consumer

import (
	"context"
	"encoding/json"
	"time"

	"go-asistencia/internal/attendance"
	"go-asistencia/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeIncidenceAuthorized justifies absences when an incidence is
// authorized. Undecodable messages are committed and skipped; failed
// service calls leave the message uncommitted so it is retried.
func ConsumeIncidenceAuthorized(
	ctx context.Context,
	reader *kafkago.Reader,
	attendanceService attendance.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.incidence_authorized")
	log.Info("incidence authorized consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("incidence authorized consumer stopped")
				return
			}
			log.Error("fetch incidence_authorized message failed", zap.Error(err))
			continue
		}

		var event events.IncidenceAuthorizedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode incidence_authorized event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		from, to, err := parseEventRange(event)
		if err != nil {
			log.Error("incidence_authorized event has invalid dates",
				zap.String("incidence_id", event.IncidenceID),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		touched, err := attendanceService.MarkExcused(ctx, event.WorkerID, from, to)
		if err != nil {
			log.Error("mark excused from incidence_authorized failed",
				zap.String("incidence_id", event.IncidenceID),
				zap.String("worker_id", event.WorkerID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit incidence_authorized message failed", zap.Error(err))
			continue
		}

		log.Info("absences excused from incidence_authorized event",
			zap.String("incidence_id", event.IncidenceID),
			zap.String("worker_id", event.WorkerID),
			zap.Int("records_touched", touched),
		)
	}
}

func parseEventRange(event events.IncidenceAuthorizedEvent) (time.Time, time.Time, error) {
	from, err := time.Parse("2006-01-02", event.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := time.Parse("2006-01-02", event.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
