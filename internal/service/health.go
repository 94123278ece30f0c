// 헬스체크 로직
// Prometheus, Loki, LLM 도달 가능 여부를 동시에 확인하고 큐 상태와 함께 반환
// 하나라도 도달 불가하면 degraded (LLM 미설정은 degraded로 보지 않음)

package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kube-rca/aiops-processor/internal/client"
	"github.com/kube-rca/aiops-processor/internal/model"
)

const (
	HealthHealthy  = "healthy"
	HealthDegraded = "degraded"
)

const defaultProbeTimeout = 3 * time.Second

// Prober - 외부 백엔드 도달 가능 여부 확인
type Prober interface {
	Ping(ctx context.Context) error
}

// HealthTarget - 헬스체크 대상 백엔드
type HealthTarget struct {
	Name    string
	URL     string
	Model   string
	Enabled bool
	Prober  Prober
}

type queueStatuser interface {
	Status() model.QueueStatus
}

// HealthService 구조체 정의
type HealthService struct {
	targets []HealthTarget
	queue   queueStatuser
	timeout time.Duration
}

// HealthService 객체 생성
func NewHealthService(targets []HealthTarget, queue queueStatuser) *HealthService {
	return &HealthService{
		targets: targets,
		queue:   queue,
		timeout: defaultProbeTimeout,
	}
}

// Check - 모든 대상 동시 확인
func (s *HealthService) Check(ctx context.Context) model.HealthResponse {
	var (
		mu       sync.Mutex
		services = make(map[string]model.BackendHealth, len(s.targets))
		degraded bool
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, target := range s.targets {
		g.Go(func() error {
			health := s.probe(gctx, target)
			mu.Lock()
			services[target.Name] = health
			if health.Enabled && !health.Reachable {
				degraded = true
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	resp := model.HealthResponse{
		Status:   HealthHealthy,
		Services: services,
	}
	if degraded {
		resp.Status = HealthDegraded
	}
	if s.queue != nil {
		resp.Queue = s.queue.Status()
	}
	return resp
}

func (s *HealthService) probe(ctx context.Context, target HealthTarget) model.BackendHealth {
	health := model.BackendHealth{
		URL:     target.URL,
		Model:   target.Model,
		Enabled: target.Enabled,
	}
	if !target.Enabled || target.Prober == nil {
		return health
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := target.Prober.Ping(ctx); err != nil {
		if errors.Is(err, client.ErrLLMNotConfigured) {
			health.Enabled = false
			return health
		}
		health.Error = err.Error()
		return health
	}
	health.Reachable = true
	return health
}
