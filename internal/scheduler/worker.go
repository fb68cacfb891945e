package scheduler

import (
	"context"
	"fmt"
	"strings"

	"meetingease_backend/internal/email"
	meetingsrepo "meetingease_backend/internal/meetings/repository"
	"meetingease_backend/platform/config"
	"meetingease_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *meetingsrepo.Repository
	sender email.Sender
	log    *logger.Logger
}

func NewWorker(cfg config.RedisConfig, pool *pgxpool.Pool, sender email.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   meetingsrepo.New(pool),
		sender: sender,
		log:    log,
	}

	mux.HandleFunc(TaskMeetingReminder, w.handleMeetingReminder)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleMeetingReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseMeetingReminderPayload(task)
	if err != nil {
		return err
	}

	meetingID, err := uuid.Parse(payload.MeetingID)
	if err != nil {
		return err
	}

	meeting, err := w.repo.GetByID(ctx, meetingID)
	if err != nil {
		return err
	}

	// Cancelled or completed meetings need no reminder.
	if meeting.Status != meetingsrepo.StatusInWaiting {
		return nil
	}

	address := fmt.Sprintf("%s, %s %s", meeting.City, meeting.Street, meeting.HouseNumber)
	when := meeting.Date.Format("02.01.2006 15:04")

	// One SMTP round trip per participant, bounded fan-out.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, participant := range meeting.Clients {
		if participant.Email == "" {
			continue
		}
		g.Go(func() error {
			name := strings.TrimSpace(fmt.Sprintf("%s %s", participant.Name, participant.Surname))
			if err := w.sender.SendMeetingReminderEmail(gctx, participant.Email, name, when, address); err != nil {
				w.log.Warn("meeting reminder email failed",
					"meeting_id", meeting.ID,
					"email", participant.Email,
					"error", err)
			}
			return nil
		})
	}

	return g.Wait()
}
