// Prometheus / Loki 조회 결과 구조체
// 쿼리 규칙 순서를 유지하기 위해 map 대신 slice로 보관

package model

import "time"

// TimeWindow - 알림 시작 시각 기준 [start-W, start+W] 조회 구간
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// WindowAround - 기준 시각 앞뒤로 width만큼의 구간 생성
func WindowAround(at time.Time, width time.Duration) TimeWindow {
	return TimeWindow{
		Start: at.Add(-width),
		End:   at.Add(width),
	}
}

// NamedQuery - 규칙 테이블이 생성한 쿼리
type NamedQuery struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

type MetricPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

type MetricSeries struct {
	Labels map[string]string `json:"labels"`
	Points []MetricPoint     `json:"points"`
}

type MetricResult struct {
	Name   string         `json:"name"`
	Query  string         `json:"query"`
	Series []MetricSeries `json:"series"`
}

// MetricsDataset - 쿼리 이름별 시계열 (실패한 쿼리는 포함되지 않음)
type MetricsDataset []MetricResult

func (d MetricsDataset) SeriesCount() int {
	n := 0
	for _, r := range d {
		n += len(r.Series)
	}
	return n
}

type LogEntry struct {
	Timestamp time.Time         `json:"timestamp"`
	Line      string            `json:"line"`
	Labels    map[string]string `json:"labels,omitempty"`
}

type LogResult struct {
	Name    string     `json:"name"`
	Query   string     `json:"query"`
	Entries []LogEntry `json:"entries"`
}

// LogsDataset - 쿼리 이름별 로그 라인 (실패하거나 비어 있는 쿼리는 포함되지 않음)
type LogsDataset []LogResult

func (d LogsDataset) LineCount() int {
	n := 0
	for _, r := range d {
		n += len(r.Entries)
	}
	return n
}
