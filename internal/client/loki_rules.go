package client

import "fmt"

const (
	errorPattern   = `(?i)(error|exception|fatal|critical)`
	warningPattern = `(?i)(warn|warning)`
)

// LokiRules - 알림 라벨로부터 LogQL 쿼리 생성 규칙
var LokiRules = RuleSet{
	Rules: []QueryRule{
		{
			Name: "service_all_logs",
			When: hasLabel("service"),
			Query: func(l map[string]string) string {
				return fmt.Sprintf(`{service="%s"}`, lbl(l, "service"))
			},
		},
		{
			Name: "service_errors",
			When: hasLabel("service"),
			Query: func(l map[string]string) string {
				return fmt.Sprintf(`{service="%s"} |~ "%s"`, lbl(l, "service"), errorPattern)
			},
		},
		{
			Name: "service_warnings",
			When: hasLabel("service"),
			Query: func(l map[string]string) string {
				return fmt.Sprintf(`{service="%s"} |~ "%s"`, lbl(l, "service"), warningPattern)
			},
		},
		{
			Name: "job_logs",
			When: hasLabel("job"),
			Query: func(l map[string]string) string {
				return fmt.Sprintf(`{job="%s"}`, lbl(l, "job"))
			},
		},
		{
			Name: "job_errors",
			When: hasLabel("job"),
			Query: func(l map[string]string) string {
				return fmt.Sprintf(`{job="%s"} |~ "(?i)(error|exception|fatal)"`, lbl(l, "job"))
			},
		},
		{
			Name: "container_logs",
			When: hasLabel("service"),
			Query: func(l map[string]string) string {
				return fmt.Sprintf(`{container=~".*%s.*"}`, regexLabelValue(l["service"]))
			},
		},
		{
			Name: "container_errors",
			When: hasLabel("service"),
			Query: func(l map[string]string) string {
				return fmt.Sprintf(`{container=~".*%s.*"} |~ "(?i)(error|exception|failed|fatal)"`, regexLabelValue(l["service"]))
			},
		},
		{
			Name: "pod_logs",
			When: hasLabel("namespace", "pod"),
			Query: func(l map[string]string) string {
				return fmt.Sprintf(`{namespace="%s",pod="%s"}`, lbl(l, "namespace"), lbl(l, "pod"))
			},
		},
		{
			Name: "pod_errors",
			When: hasLabel("namespace", "pod"),
			Query: func(l map[string]string) string {
				return fmt.Sprintf(`{namespace="%s",pod="%s"} |~ "%s"`, lbl(l, "namespace"), lbl(l, "pod"), errorPattern)
			},
		},
		{
			Name: "instance_logs",
			When: and(hasLabel("instance"), not(func(l map[string]string) bool { return instanceHost(l["instance"]) == "" })),
			Query: func(l map[string]string) string {
				return fmt.Sprintf(`{instance=~".*%s.*"}`, regexLabelValue(instanceHost(l["instance"])))
			},
		},
	},
	Fallback: []QueryRule{
		{
			Name: "all_errors",
			Query: func(map[string]string) string {
				return fmt.Sprintf(`{job=~".+"} |~ "%s"`, errorPattern)
			},
		},
		{
			Name: "all_warnings",
			Query: func(map[string]string) string {
				return fmt.Sprintf(`{job=~".+"} |~ "%s"`, warningPattern)
			},
		},
	},
}
