// 알림 라벨 기반 쿼리 규칙 테이블
//
// 규칙은 (라벨 조건 -> 쿼리 템플릿) 쌍의 순서 있는 목록
// 새 쿼리는 분기 추가 대신 테이블에 규칙을 덧붙이는 방식으로 확장
// Fallback 규칙은 Rules 중 하나도 매칭되지 않았을 때만 평가

package client

import (
	"regexp"
	"strings"

	"github.com/kube-rca/aiops-processor/internal/model"
)

// QueryRule - 라벨 조건과 쿼리 생성 함수
type QueryRule struct {
	Name  string
	When  func(labels map[string]string) bool
	Query func(labels map[string]string) string
}

type RuleSet struct {
	Rules    []QueryRule
	Fallback []QueryRule
}

// Build - 규칙 순서대로 매칭된 쿼리 목록 생성 (같은 이름은 먼저 매칭된 규칙 우선)
func (s RuleSet) Build(labels map[string]string) []model.NamedQuery {
	queries := evalRules(s.Rules, labels)
	if len(queries) == 0 {
		queries = evalRules(s.Fallback, labels)
	}
	return queries
}

func evalRules(rules []QueryRule, labels map[string]string) []model.NamedQuery {
	var out []model.NamedQuery
	seen := map[string]struct{}{}
	for _, rule := range rules {
		if _, ok := seen[rule.Name]; ok {
			continue
		}
		if rule.When != nil && !rule.When(labels) {
			continue
		}
		seen[rule.Name] = struct{}{}
		out = append(out, model.NamedQuery{Name: rule.Name, Query: rule.Query(labels)})
	}
	return out
}

// 조건 헬퍼

func hasLabel(keys ...string) func(map[string]string) bool {
	return func(labels map[string]string) bool {
		for _, key := range keys {
			if labels[key] == "" {
				return false
			}
		}
		return true
	}
}

// matchesTopic - component 라벨이 일치하거나 alertname에 키워드 포함 (대소문자 무시)
func matchesTopic(topic string) func(map[string]string) bool {
	return func(labels map[string]string) bool {
		if strings.EqualFold(labels["component"], topic) {
			return true
		}
		return strings.Contains(strings.ToLower(labels["alertname"]), topic)
	}
}

func and(preds ...func(map[string]string) bool) func(map[string]string) bool {
	return func(labels map[string]string) bool {
		for _, p := range preds {
			if !p(labels) {
				return false
			}
		}
		return true
	}
}

func not(pred func(map[string]string) bool) func(map[string]string) bool {
	return func(labels map[string]string) bool {
		return !pred(labels)
	}
}

// escapeLabelValue - PromQL/LogQL 문자열 리터럴 이스케이프
func escapeLabelValue(v string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(v)
}

// regexLabelValue - 정규식 매처(=~)에 넣을 리터럴 부분 문자열
func regexLabelValue(v string) string {
	return escapeLabelValue(regexp.QuoteMeta(v))
}

func instanceHost(instance string) string {
	host, _, _ := strings.Cut(instance, ":")
	return host
}
