package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studyhub-labs/librarypro-api/internal/dto"
	"github.com/studyhub-labs/librarypro-api/internal/models"
	"github.com/studyhub-labs/librarypro-api/pkg/config"
	"github.com/studyhub-labs/librarypro-api/pkg/jobs"
)

const syncSource = "librarypro-api"

type syncEnvelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// SyncService pushes membership events to the main library system over a
// webhook. Deliveries run on a background queue with retries; enqueue
// failures are logged and never surfaced to the caller, so a webhook outage
// cannot roll back a recorded payment.
type SyncService struct {
	cfg     config.SyncConfig
	queue   *jobs.Queue
	client  *http.Client
	metrics *MetricsService
	logger  *zap.Logger
}

// NewSyncService constructs the sync service and its delivery queue.
func NewSyncService(cfg config.SyncConfig, metrics *MetricsService, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SyncService{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		metrics: metrics,
		logger:  logger,
	}
	s.queue = jobs.NewQueue("sync", s.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the delivery workers.
func (s *SyncService) Start(ctx context.Context) {
	if !s.cfg.Enabled {
		s.logger.Info("sync disabled, events will be dropped")
		return
	}
	s.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (s *SyncService) Stop() {
	if !s.cfg.Enabled {
		return
	}
	s.queue.Stop()
}

// NotifyPayment emits a payment.recorded event. Fire-and-forget.
func (s *SyncService) NotifyPayment(payment models.Payment, studentName string) {
	event := dto.PaymentSyncEvent{
		PaymentID:   payment.ID,
		StudentID:   payment.StudentID,
		StudentName: studentName,
		Amount:      payment.Amount,
		Date:        payment.Date,
		Period:      payment.Period,
		NextDue:     payment.NextDue,
		Method:      payment.Method,
		Source:      syncSource,
		EmittedAt:   time.Now().UTC(),
	}
	s.emit(dto.SyncEventPayment, event)
}

// NotifyStudent emits a student.created event. Fire-and-forget.
func (s *SyncService) NotifyStudent(student models.Student) {
	event := dto.StudentSyncEvent{
		StudentID: student.ID,
		Name:      student.Name,
		Phone:     student.Phone,
		Email:     student.Email,
		JoinDate:  student.JoinDate,
		DueDate:   student.DueDate,
		Amount:    student.Amount,
		Status:    string(student.Status),
		Source:    syncSource,
		EmittedAt: time.Now().UTC(),
	}
	s.emit(dto.SyncEventNewStudent, event)
}

func (s *SyncService) emit(eventType string, payload interface{}) {
	if !s.cfg.Enabled {
		return
	}
	job := jobs.Job{ID: uuid.NewString(), Type: eventType, Payload: payload}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Error("failed to enqueue sync event",
			zap.String("event", eventType), zap.Error(err))
	}
}

func (s *SyncService) deliver(ctx context.Context, job jobs.Job) error {
	body, err := json.Marshal(syncEnvelope{Event: job.Type, Data: job.Payload})
	if err != nil {
		return fmt.Errorf("marshal sync event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Sync-Source", syncSource)

	resp, err := s.client.Do(req)
	if err != nil {
		s.metrics.RecordSyncEvent(job.Type, false)
		return fmt.Errorf("deliver sync event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.metrics.RecordSyncEvent(job.Type, false)
		return fmt.Errorf("sync webhook returned %d", resp.StatusCode)
	}

	s.metrics.RecordSyncEvent(job.Type, true)
	s.logger.Debug("sync event delivered",
		zap.String("event", job.Type), zap.String("job_id", job.ID))
	return nil
}
