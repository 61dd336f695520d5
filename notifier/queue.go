// Package notifier delivers outbound email through a persisted job table,
// a pool of workers and a periodic sweeper that retries failed deliveries.
package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Kariqs/smartbite-api/models"
	"github.com/Kariqs/smartbite-api/utils"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	sendTimeout    = 30 * time.Second
	sweepBatchSize = 100

	// A claim older than this belongs to a worker that died mid-send.
	claimLease = 2 * sendTimeout
)

var ErrAlreadyStarted = errors.New("notifier: queue already started")

type Config struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	SweepSpec   string
}

type Queue struct {
	db     *gorm.DB
	mailer utils.Mailer
	log    logrus.FieldLogger
	cfg    Config

	jobs chan uint

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	cron    *cron.Cron
	wg      sync.WaitGroup
}

func New(db *gorm.DB, mailer utils.Mailer, log logrus.FieldLogger, cfg Config) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.SweepSpec == "" {
		cfg.SweepSpec = "@every 1m"
	}

	return &Queue{
		db:     db,
		mailer: mailer,
		log:    log.WithField("component", "notifier"),
		cfg:    cfg,
		jobs:   make(chan uint, cfg.QueueSize),
	}
}

// Enqueue persists the job as pending and hands it to the workers. When the
// in-memory queue is full the job stays pending until the next sweep.
func (q *Queue) Enqueue(ctx context.Context, job *models.NotificationJob) error {
	job.Status = models.NotificationStatusPending
	job.Attempts = 0
	job.LastError = ""
	job.SentAt = nil

	if err := q.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("persist notification job: %w", err)
	}

	q.dispatch(job.ID)
	return nil
}

func (q *Queue) dispatch(id uint) bool {
	select {
	case q.jobs <- id:
		return true
	default:
		q.log.WithField("job_id", id).Warn("Notification queue full, leaving job for the sweeper")
		return false
	}
}

// Start launches the workers and the retry sweeper.
func (q *Queue) Start(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.started {
		return ErrAlreadyStarted
	}

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(q.cfg.SweepSpec, func() { q.Sweep(ctx) }); err != nil {
		return fmt.Errorf("schedule notification sweep %q: %w", q.cfg.SweepSpec, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.cron = sweeper

	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
	sweeper.Start()
	q.started = true

	q.log.WithFields(logrus.Fields{
		"workers":    q.cfg.Workers,
		"sweep_spec": q.cfg.SweepSpec,
	}).Info("Notification queue started")
	return nil
}

// Stop halts the sweeper and waits for in-flight deliveries to finish.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.started {
		return
	}
	<-q.cron.Stop().Done()
	q.cancel()
	q.wg.Wait()
	q.started = false
	q.log.Info("Notification queue stopped")
}

func (q *Queue) worker(ctx context.Context, n int) {
	defer q.wg.Done()
	log := q.log.WithField("worker", n)

	for {
		select {
		case <-ctx.Done():
			return
		case id := <-q.jobs:
			if err := q.Process(ctx, id); err != nil {
				log.WithError(err).WithField("job_id", id).Warn("Notification delivery failed")
			}
		}
	}
}

// Process delivers one job. A job that is already sent, exhausted, or
// claimed by another worker is skipped without error.
func (q *Queue) Process(ctx context.Context, id uint) error {
	var job models.NotificationJob
	if err := q.db.WithContext(ctx).First(&job, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("load notification job %d: %w", id, err)
	}

	if job.Status == models.NotificationStatusSent || job.Attempts >= q.cfg.MaxAttempts {
		return nil
	}

	now := time.Now()
	claim := q.db.WithContext(ctx).Model(&models.NotificationJob{}).
		Where("id = ? AND attempts = ?", job.ID, job.Attempts).
		Where(q.claimable(now)).
		Updates(map[string]any{
			"attempts":   job.Attempts + 1,
			"status":     models.NotificationStatusInProgress,
			"claimed_at": &now,
		})
	if claim.Error != nil {
		return fmt.Errorf("claim notification job %d: %w", id, claim.Error)
	}
	if claim.RowsAffected == 0 {
		return nil
	}

	msg, err := messageFor(job)
	if err == nil {
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err = q.mailer.Send(sendCtx, msg)
		cancel()
	}

	if err != nil {
		if uerr := q.db.Model(&models.NotificationJob{}).Where("id = ?", job.ID).Updates(map[string]any{
			"status":     models.NotificationStatusFailed,
			"last_error": err.Error(),
			"claimed_at": nil,
		}).Error; uerr != nil {
			q.log.WithError(uerr).WithField("job_id", job.ID).Error("Unable to record notification failure")
		}
		return err
	}

	sentAt := time.Now()
	if err := q.db.Model(&models.NotificationJob{}).Where("id = ?", job.ID).Updates(map[string]any{
		"status":     models.NotificationStatusSent,
		"last_error": "",
		"claimed_at": nil,
		"sent_at":    &sentAt,
	}).Error; err != nil {
		return fmt.Errorf("mark notification job %d sent: %w", job.ID, err)
	}

	q.log.WithFields(logrus.Fields{"job_id": job.ID, "kind": job.Kind}).Debug("Notification sent")
	return nil
}

// claimable matches jobs waiting for delivery, including in-progress jobs
// whose claim has outlived the lease.
func (q *Queue) claimable(now time.Time) *gorm.DB {
	return q.db.
		Where("status IN ?", []string{models.NotificationStatusPending, models.NotificationStatusFailed}).
		Or("status = ? AND claimed_at < ?", models.NotificationStatusInProgress, now.Add(-claimLease))
}

// Sweep re-dispatches pending, failed and abandoned jobs that still have
// attempts left and returns how many were handed to the workers.
func (q *Queue) Sweep(ctx context.Context) int {
	var ids []uint
	err := q.db.WithContext(ctx).Model(&models.NotificationJob{}).
		Where("attempts < ?", q.cfg.MaxAttempts).
		Where(q.claimable(time.Now())).
		Order("id").
		Limit(sweepBatchSize).
		Pluck("id", &ids).Error
	if err != nil {
		q.log.WithError(err).Error("Notification sweep query failed")
		return 0
	}

	dispatched := 0
	for _, id := range ids {
		if !q.dispatch(id) {
			break
		}
		dispatched++
	}
	if dispatched > 0 {
		q.log.WithField("count", dispatched).Info("Re-queued notification jobs")
	}
	return dispatched
}

// Stats counts jobs per status.
func (q *Queue) Stats(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := q.db.WithContext(ctx).Model(&models.NotificationJob{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := map[string]int64{
		models.NotificationStatusPending:    0,
		models.NotificationStatusInProgress: 0,
		models.NotificationStatusSent:       0,
		models.NotificationStatusFailed:     0,
	}
	for _, row := range rows {
		stats[row.Status] = row.Count
	}
	return stats, nil
}

func messageFor(job models.NotificationJob) (utils.EmailMessage, error) {
	data := map[string]any{}
	if len(job.Payload) > 0 {
		if err := json.Unmarshal(job.Payload, &data); err != nil {
			return utils.EmailMessage{}, fmt.Errorf("decode payload: %w", err)
		}
	}
	return utils.EmailMessage{
		To:       job.Recipient,
		Subject:  job.Subject,
		Template: job.Kind,
		Data:     data,
	}, nil
}
