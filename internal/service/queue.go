// 알림 처리 큐 (FIFO, 단일 워커)
//
// 처리 흐름:
//  1. Webhook 핸들러가 firing 알림을 Enqueue (즉시 반환)
//  2. 워커 1개가 도착 순서대로 꺼내서 파이프라인 실행
//     - 알림 간 처리는 직렬, 한 알림 실패가 다음 알림 처리를 막지 않음
//  3. 종료 시 처리 중인 알림은 끝까지 처리, 대기 중인 알림은 버림
//
// 큐 깊이 = 대기 중 + 처리 중 (처리가 끝난 뒤에 감소)

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kube-rca/aiops-processor/internal/logging"
	"github.com/kube-rca/aiops-processor/internal/metrics"
	"github.com/kube-rca/aiops-processor/internal/model"
)

// 워커 상태
const (
	WorkerNotStarted = "not_started"
	WorkerIdle       = "idle"
	WorkerProcessing = "processing"
	WorkerStopped    = "stopped"
)

var (
	ErrQueueStopped  = errors.New("alert queue is stopped")
	ErrWorkerRunning = errors.New("alert queue worker is already running")
)

type alertProcessor interface {
	Process(ctx context.Context, alert model.Alert) error
}

type queuedAlert struct {
	id         string
	alert      model.Alert
	enqueuedAt time.Time
}

// AlertQueue 구조체 정의
type AlertQueue struct {
	processor alertProcessor
	logger    *zap.Logger

	mu         sync.Mutex
	items      []queuedAlert
	inFlight   *queuedAlert
	state      string
	processed  uint64
	failed     uint64
	lastActive time.Time

	signal chan struct{}
	done   chan struct{}
}

// AlertQueue 객체 생성
func NewAlertQueue(processor alertProcessor, logger *zap.Logger) *AlertQueue {
	return &AlertQueue{
		processor: processor,
		logger:    logger,
		state:     WorkerNotStarted,
		signal:    make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// Enqueue - 알림 추가 후 현재 큐 깊이 반환
func (q *AlertQueue) Enqueue(alert model.Alert) (int, error) {
	q.mu.Lock()
	if q.state == WorkerStopped {
		q.mu.Unlock()
		return 0, ErrQueueStopped
	}
	item := queuedAlert{
		id:         uuid.NewString(),
		alert:      alert,
		enqueuedAt: time.Now(),
	}
	q.items = append(q.items, item)
	depth := q.depthLocked()
	q.mu.Unlock()

	metrics.AlertsQueuedTotal.Inc()
	metrics.QueueDepth.Set(float64(depth))

	// 워커가 이미 깨어 있으면 신호는 버려짐
	select {
	case q.signal <- struct{}{}:
	default:
	}

	q.logger.Debug("Alert enqueued",
		append(logging.AlertFields(alert.AlertName(), alert.Fingerprint),
			zap.String("queue_id", item.id),
			zap.Int("queue_size", depth),
		)...,
	)
	return depth, nil
}

// Depth - 대기 중 + 처리 중인 알림 수
func (q *AlertQueue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.depthLocked()
}

func (q *AlertQueue) depthLocked() int {
	n := len(q.items)
	if q.inFlight != nil {
		n++
	}
	return n
}

// Status - 큐 상태 스냅샷
func (q *AlertQueue) Status() model.QueueStatus {
	q.mu.Lock()
	defer q.mu.Unlock()

	status := model.QueueStatus{
		Depth:       q.depthLocked(),
		Pending:     len(q.items),
		Status:      q.state,
		WorkerAlive: q.state == WorkerIdle || q.state == WorkerProcessing,
		Processed:   q.processed,
		Failed:      q.failed,
	}
	if q.inFlight != nil {
		status.InFlight = q.inFlight.alert.Fingerprint
	}
	if !q.lastActive.IsZero() {
		last := q.lastActive
		status.LastActive = &last
	}
	return status
}

// Start - 워커를 백그라운드 goroutine으로 실행
func (q *AlertQueue) Start(ctx context.Context) {
	go func() {
		if err := q.Run(ctx); err != nil {
			q.logger.Error("Alert queue worker exited", zap.Error(err))
		}
	}()
}

// Done - 워커 종료 시 닫히는 채널
func (q *AlertQueue) Done() <-chan struct{} {
	return q.done
}

// Run - ctx가 취소될 때까지 큐 처리 (워커는 1개만 허용)
func (q *AlertQueue) Run(ctx context.Context) error {
	q.mu.Lock()
	if q.state != WorkerNotStarted {
		state := q.state
		q.mu.Unlock()
		if state == WorkerStopped {
			return ErrQueueStopped
		}
		return ErrWorkerRunning
	}
	q.state = WorkerIdle
	q.mu.Unlock()

	q.logger.Info("Alert queue worker started")
	defer close(q.done)
	defer q.stop()

	for {
		if ctx.Err() != nil {
			return nil
		}

		item, ok := q.next()
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-q.signal:
			}
			continue
		}

		// 처리 중인 알림은 종료 신호와 무관하게 끝까지 진행
		q.process(context.WithoutCancel(ctx), item)
	}
}

// next - 맨 앞 알림을 꺼내 처리 중으로 표시 (깊이는 아직 유지)
func (q *AlertQueue) next() (queuedAlert, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return queuedAlert{}, false
	}
	item := q.items[0]
	q.items[0] = queuedAlert{}
	q.items = q.items[1:]
	q.inFlight = &item
	q.state = WorkerProcessing
	return item, true
}

func (q *AlertQueue) process(ctx context.Context, item queuedAlert) {
	alert := item.alert
	logger := q.logger.With(logging.AlertFields(alert.AlertName(), alert.Fingerprint)...)
	logger.Info("Processing alert",
		zap.String("queue_id", item.id),
		zap.Duration("waited", time.Since(item.enqueuedAt)),
	)

	err := q.safeProcess(ctx, alert)

	q.mu.Lock()
	q.inFlight = nil
	q.state = WorkerIdle
	q.lastActive = time.Now()
	if err != nil {
		q.failed++
	} else {
		q.processed++
	}
	depth := q.depthLocked()
	q.mu.Unlock()

	metrics.QueueDepth.Set(float64(depth))
	if err != nil {
		logger.Warn("Alert processing failed", zap.String("queue_id", item.id), zap.Error(err))
		return
	}
	logger.Info("Alert processed", zap.String("queue_id", item.id), zap.Int("queue_size", depth))
}

// safeProcess - panic이 워커를 죽이지 않도록 에러로 변환
func (q *AlertQueue) safeProcess(ctx context.Context, alert model.Alert) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing alert: %v", r)
		}
	}()
	return q.processor.Process(ctx, alert)
}

// stop - 워커 종료 처리, 남은 알림은 버림
func (q *AlertQueue) stop() {
	q.mu.Lock()
	dropped := q.items
	q.items = nil
	q.state = WorkerStopped
	q.mu.Unlock()

	metrics.QueueDepth.Set(0)
	if len(dropped) > 0 {
		metrics.AlertsDroppedTotal.Add(float64(len(dropped)))
		fingerprints := make([]string, 0, len(dropped))
		for _, item := range dropped {
			fingerprints = append(fingerprints, item.alert.Fingerprint)
		}
		q.logger.Warn("Dropping pending alerts on shutdown",
			zap.Int("dropped", len(dropped)),
			zap.Strings("fingerprints", fingerprints),
		)
	}
	q.logger.Info("Alert queue worker stopped")
}
