package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kube-rca/aiops-processor/internal/model"
)

var (
	thinkBlockRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

	errNoJSONObject = errors.New("no JSON object in response")
	errNoRootCause  = errors.New("root_cause missing from response")
)

const percentScaleThreshold = 1.5

// llmAnswer - 모델 출력 스키마 (필드 타입이 조금씩 달라도 허용)
type llmAnswer struct {
	Summary            string          `json:"summary"`
	RootCause          json.RawMessage `json:"root_cause"`
	Evidence           json.RawMessage `json:"evidence"`
	RemediationSteps   json.RawMessage `json:"remediation_steps"`
	Severity           string          `json:"severity"`
	SeverityAssessment string          `json:"severity_assessment"`
	Confidence         json.RawMessage `json:"confidence"`
}

// ParseAnalysis - LLM 응답 텍스트에서 구조화된 분석 결과 추출
//
// 허용하는 형식:
//   - 순수 JSON
//   - <think>...</think> 추론 블록이 앞에 붙은 JSON
//   - ```json 코드 펜스로 감싼 JSON
//   - 앞뒤에 설명 문장이나 다른 코드 블록이 붙은 JSON
//
// 문자열 값 안의 ``` 나 중괄호는 그대로 보존
func ParseAnalysis(raw string) (*model.LLMAnalysis, error) {
	text := thinkBlockRe.ReplaceAllString(raw, "")
	// 닫히지 않은 think 블록
	if idx := strings.LastIndex(text, "</think>"); idx >= 0 {
		text = text[idx+len("</think>"):]
	}

	obj, err := extractJSONObject(text)
	if err != nil {
		return nil, err
	}

	var answer llmAnswer
	if err := json.Unmarshal([]byte(obj), &answer); err != nil {
		return nil, fmt.Errorf("invalid analysis JSON: %w", err)
	}

	rootCause := strings.TrimSpace(rawToString(answer.RootCause))
	if rootCause == "" {
		return nil, errNoRootCause
	}

	severity := NormalizeSeverity(answer.Severity)
	if severity == model.SeverityUnknown {
		severity = NormalizeSeverity(answer.SeverityAssessment)
	}

	return &model.LLMAnalysis{
		Summary:            strings.TrimSpace(answer.Summary),
		RootCause:          rootCause,
		Evidence:           rawToStrings(answer.Evidence),
		RemediationSteps:   rawToStrings(answer.RemediationSteps),
		Severity:           severity,
		SeverityAssessment: strings.TrimSpace(answer.SeverityAssessment),
		Confidence:         rawToConfidence(answer.Confidence),
	}, nil
}

// extractJSONObject - 유효한 JSON이 되는 첫 번째 객체 반환
// '{' 위치마다 짝이 맞는 '}'까지 잘라보고 (문자열 내부 괄호 무시) 파싱 가능한 것을 선택
func extractJSONObject(text string) (string, error) {
	for offset := 0; offset < len(text); {
		idx := strings.IndexByte(text[offset:], '{')
		if idx < 0 {
			break
		}
		start := offset + idx
		if end, ok := matchBrace(text, start); ok && json.Valid([]byte(text[start:end])) {
			return text[start:end], nil
		}
		offset = start + 1
	}
	return "", errNoJSONObject
}

// matchBrace - text[start]의 '{'와 짝이 맞는 '}' 다음 위치
func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// NormalizeSeverity - 자유 형식 심각도를 critical/warning/info/unknown으로 정규화
//   - critical, high -> critical
//   - warning, medium -> warning
//   - info, low -> info
//
// "High - justification" 처럼 설명이 붙은 경우 첫 단어 기준
func NormalizeSeverity(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return model.SeverityUnknown
	}
	word := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '/' || r == ':' || r == ',' || r == '.'
	})
	if len(word) == 0 {
		return model.SeverityUnknown
	}
	switch word[0] {
	case "critical", "high", "severe", "page":
		return model.SeverityCritical
	case "warning", "warn", "medium", "moderate":
		return model.SeverityWarning
	case "info", "informational", "low", "none":
		return model.SeverityInfo
	default:
		return model.SeverityUnknown
	}
}

func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// rawToStrings - 배열이면 원소 순서대로, 문자열이면 단일 원소 목록
func rawToStrings(raw json.RawMessage) []string {
	out := []string{}
	if len(raw) == 0 || string(raw) == "null" {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		if s := strings.TrimSpace(rawToString(raw)); s != "" {
			out = append(out, s)
		}
		return out
	}
	for _, item := range items {
		if s := strings.TrimSpace(rawToString(item)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// rawToConfidence - 0~1 범위로 보정
//   - "85%" 형식은 백분율
//   - 숫자가 percentScaleThreshold 초과면 0~100 척도로 간주 (85 -> 0.85)
//   - 그 사이 값(1.2 등)은 1로 제한
func rawToConfidence(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return clampConfidence(f)
	}
	s := strings.TrimSpace(rawToString(raw))
	if trimmed, ok := strings.CutSuffix(s, "%"); ok {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(trimmed), 64)
		if err != nil {
			return 0
		}
		return clampUnit(parsed / 100)
	}
	parsed, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return clampConfidence(parsed)
}

func clampConfidence(f float64) float64 {
	if f > percentScaleThreshold {
		f /= 100
	}
	return clampUnit(f)
}

func clampUnit(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
