package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kube-rca/aiops-processor/internal/config"
	"github.com/kube-rca/aiops-processor/internal/model"
)

// DATABASE_URL이 있을 때만 실제 PostgreSQL에 대해 실행
func newTestPostgres(t *testing.T) *Postgres {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := NewPostgresPool(ctx, config.PostgresConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	pg := &Postgres{Pool: pool}
	require.NoError(t, pg.EnsureAnalysisSchema(ctx))
	// 두 번 호출해도 안전해야 함
	require.NoError(t, pg.EnsureAnalysisSchema(ctx))
	return pg
}

func testAnalysisResult(fingerprint string, analyzedAt time.Time) *model.AnalysisResult {
	return &model.AnalysisResult{
		AnalysisID:        uuid.NewString(),
		AlertName:         "HighCPUUsage",
		Fingerprint:       fingerprint,
		Summary:           "CPU pinned on api pods",
		RootCause:         "CPU saturation",
		Evidence:          []string{"cpu 97%", "throttling"},
		RemediationSteps:  []string{"scale up", "tune limits"},
		Severity:          model.SeverityWarning,
		Confidence:        0.8,
		AnalysisAvailable: true,
		Labels:            map[string]string{"alertname": "HighCPUUsage", "namespace": "prod"},
		Annotations:       map[string]string{"summary": "CPU high"},
		Model:             "test-model",
		AnalyzedAt:        analyzedAt,
	}
}

func TestAnalysisStoreRoundTrip(t *testing.T) {
	pg := newTestPostgres(t)
	ctx := context.Background()

	fingerprint := "test-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = pg.Pool.Exec(context.Background(), `DELETE FROM alert_analyses WHERE fingerprint = $1`, fingerprint)
	})

	// 다른 데이터보다 최신이 되도록 미래 시각 사용
	base := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Millisecond)
	older := testAnalysisResult(fingerprint, base)
	newer := testAnalysisResult(fingerprint, base.Add(time.Minute))
	newer.RootCause = "memory leak"
	newer.Severity = model.SeverityCritical

	require.NoError(t, pg.InsertAnalysis(ctx, older))
	require.NoError(t, pg.InsertAnalysis(ctx, newer))

	t.Run("latest by fingerprint", func(t *testing.T) {
		got, err := pg.GetLatestAnalysisByFingerprint(ctx, fingerprint)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, newer.AnalysisID, got.AnalysisID)
		assert.Equal(t, "memory leak", got.RootCause)
		assert.Equal(t, model.SeverityCritical, got.Severity)
		assert.Equal(t, []string{"cpu 97%", "throttling"}, got.Evidence)
		assert.Equal(t, []string{"scale up", "tune limits"}, got.RemediationSteps)
		assert.Equal(t, "prod", got.Labels["namespace"])
		assert.InDelta(t, 0.8, got.Confidence, 1e-9)
		assert.True(t, got.AnalysisAvailable)
		assert.WithinDuration(t, newer.AnalyzedAt, got.AnalyzedAt, time.Millisecond)
	})

	t.Run("duplicate id ignored", func(t *testing.T) {
		dup := *newer
		dup.RootCause = "overwritten"
		require.NoError(t, pg.InsertAnalysis(ctx, &dup))

		got, err := pg.GetLatestAnalysisByFingerprint(ctx, fingerprint)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "memory leak", got.RootCause)
	})

	t.Run("recent list newest first", func(t *testing.T) {
		list, err := pg.ListRecentAnalyses(ctx, 2)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, newer.AnalysisID, list[0].AnalysisID)
		assert.Equal(t, older.AnalysisID, list[1].AnalysisID)
	})

	t.Run("unknown fingerprint", func(t *testing.T) {
		got, err := pg.GetLatestAnalysisByFingerprint(ctx, "missing-"+uuid.NewString())
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
