package db

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/kube-rca/aiops-processor/internal/model"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// EnsureAnalysisSchema - alert_analyses 테이블 생성
// 조회용 컬럼 외 전체 결과는 result(JSONB)에 보관
func (db *Postgres) EnsureAnalysisSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS alert_analyses (
			analysis_id UUID PRIMARY KEY,
			fingerprint TEXT NOT NULL DEFAULT '',
			alert_name TEXT NOT NULL,
			severity TEXT NOT NULL DEFAULT 'unknown',
			root_cause TEXT NOT NULL DEFAULT '',
			analysis_available BOOLEAN NOT NULL DEFAULT FALSE,
			model TEXT NOT NULL DEFAULT '',
			result JSONB NOT NULL DEFAULT '{}',
			analyzed_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS alert_analyses_fingerprint_idx ON alert_analyses(fingerprint, analyzed_at DESC)`,
		`CREATE INDEX IF NOT EXISTS alert_analyses_alert_name_idx ON alert_analyses(alert_name)`,
		`CREATE INDEX IF NOT EXISTS alert_analyses_analyzed_at_idx ON alert_analyses(analyzed_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// InsertAnalysis - 분석 결과 저장
func (db *Postgres) InsertAnalysis(ctx context.Context, result *model.AnalysisResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO alert_analyses (
			analysis_id, fingerprint, alert_name, severity, root_cause,
			analysis_available, model, result, analyzed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9)
		ON CONFLICT (analysis_id) DO NOTHING
	`

	_, err = db.Pool.Exec(ctx, query,
		result.AnalysisID,
		result.Fingerprint,
		result.AlertName,
		result.Severity,
		result.RootCause,
		result.AnalysisAvailable,
		result.Model,
		resultJSON,
		result.AnalyzedAt,
	)
	return err
}

// GetLatestAnalysisByFingerprint - fingerprint 기준 최신 분석 1건 조회 (없으면 nil)
func (db *Postgres) GetLatestAnalysisByFingerprint(ctx context.Context, fingerprint string) (*model.AnalysisResult, error) {
	query := `
		SELECT result
		FROM alert_analyses
		WHERE fingerprint = $1
		ORDER BY analyzed_at DESC
		LIMIT 1
	`

	var raw []byte
	if err := db.Pool.QueryRow(ctx, query, fingerprint).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var result model.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListRecentAnalyses - 최신순 분석 목록 조회
func (db *Postgres) ListRecentAnalyses(ctx context.Context, limit int) ([]model.AnalysisResult, error) {
	query := `
		SELECT result
		FROM alert_analyses
		ORDER BY analyzed_at DESC
		LIMIT $1
	`

	rows, err := db.Pool.Query(ctx, query, ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.AnalysisResult{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var result model.AnalysisResult
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, err
		}
		list = append(list, result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// ClampLimit - 목록 조회 개수 보정 (기본 20, 최대 100)
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}
