package model

import "time"

type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Service string `json:"service"`
	Status  string `json:"status"`
	Version string `json:"version"`
}

// WebhookAcceptedResponse - POST /webhook/alerts 응답 (202)
type WebhookAcceptedResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Received  int    `json:"received"`
	Queued    int    `json:"queued"`
	QueueSize int    `json:"queue_size"`
}

// QueueStatus - 큐 깊이와 워커 상태
// Depth는 대기 중 + 처리 중인 알림 수
type QueueStatus struct {
	Depth       int        `json:"queue_size"`
	Pending     int        `json:"pending"`
	InFlight    string     `json:"in_flight,omitempty"`
	Status      string     `json:"status"`
	WorkerAlive bool       `json:"worker_alive"`
	Processed   uint64     `json:"processed"`
	Failed      uint64     `json:"failed"`
	LastActive  *time.Time `json:"last_active,omitempty"`
}

type BackendHealth struct {
	URL       string `json:"url,omitempty"`
	Model     string `json:"model,omitempty"`
	Enabled   bool   `json:"enabled"`
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status   string                   `json:"status"`
	Services map[string]BackendHealth `json:"services"`
	Queue    QueueStatus              `json:"queue"`
}

type AnalysisListResponse struct {
	Status string           `json:"status"`
	Data   []AnalysisResult `json:"data"`
}
