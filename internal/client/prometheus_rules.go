package client

import (
	"fmt"
)

func lbl(labels map[string]string, key string) string {
	return escapeLabelValue(labels[key])
}

// PrometheusRules - 알림 라벨로부터 PromQL range 쿼리 생성 규칙
var PrometheusRules = RuleSet{
	Rules: []QueryRule{
		{
			Name: "cpu_usage",
			When: and(matchesTopic("cpu"), hasLabel("instance")),
			Query: func(l map[string]string) string {
				return fmt.Sprintf(`100 - (avg by(instance) (irate(node_cpu_seconds_total{mode="idle",instance="%s"}[5m])) * 100)`, lbl(l, "instance"))
			},
		},
		{
			Name: "cpu_usage",
			When: matchesTopic("cpu"),
			Query: func(map[string]string) string {
				return `100 - (avg by(instance) (irate(node_cpu_seconds_total{mode="idle"}[5m])) * 100)`
			},
		},
		{
			Name: "cpu_by_mode",
			When: and(matchesTopic("cpu"), hasLabel("instance")),
			Query: func(l map[string]string) string {
				return fmt.Sprintf(`irate(node_cpu_seconds_total{instance="%s"}[5m])`, lbl(l, "instance"))
			},
		},
		{
			Name: "memory_usage",
			When: and(matchesTopic("memory"), hasLabel("instance")),
			Query: func(l map[string]string) string {
				i := lbl(l, "instance")
				return fmt.Sprintf(`(1 - (node_memory_MemAvailable_bytes{instance="%s"} / node_memory_MemTotal_bytes{instance="%s"})) * 100`, i, i)
			},
		},
		{
			Name: "memory_usage",
			When: matchesTopic("memory"),
			Query: func(map[string]string) string {
				return `(1 - (node_memory_MemAvailable_bytes / node_memory_MemTotal_bytes)) * 100`
			},
		},
		{
			Name: "memory_details",
			When: and(matchesTopic("memory"), hasLabel("instance")),
			Query: func(l map[string]string) string {
				return fmt.Sprintf(`node_memory_MemAvailable_bytes{instance="%s"}`, lbl(l, "instance"))
			},
		},
		{
			Name: "disk_usage",
			When: and(matchesTopic("disk"), hasLabel("instance")),
			Query: func(l map[string]string) string {
				i := lbl(l, "instance")
				return fmt.Sprintf(`(1 - (node_filesystem_avail_bytes{instance="%s",fstype!="tmpfs"} / node_filesystem_size_bytes{instance="%s",fstype!="tmpfs"})) * 100`, i, i)
			},
		},
		{
			Name: "disk_usage",
			When: matchesTopic("disk"),
			Query: func(map[string]string) string {
				return `(1 - (node_filesystem_avail_bytes{fstype!="tmpfs"} / node_filesystem_size_bytes{fstype!="tmpfs"})) * 100`
			},
		},
		{
			Name: "instance_up",
			When: hasLabel("job"),
			Query: func(l map[string]string) string {
				return fmt.Sprintf(`up{job="%s"}`, lbl(l, "job"))
			},
		},
		{
			Name: "instance_up",
			When: hasLabel("instance"),
			Query: func(l map[string]string) string {
				return fmt.Sprintf(`up{instance="%s"}`, lbl(l, "instance"))
			},
		},
		{
			Name: "load_average",
			When: hasLabel("instance"),
			Query: func(l map[string]string) string {
				return fmt.Sprintf(`node_load1{instance="%s"}`, lbl(l, "instance"))
			},
		},
		{
			Name: "network_receive",
			When: hasLabel("instance"),
			Query: func(l map[string]string) string {
				return fmt.Sprintf(`irate(node_network_receive_bytes_total{instance="%s"}[5m])`, lbl(l, "instance"))
			},
		},
		{
			Name: "network_transmit",
			When: hasLabel("instance"),
			Query: func(l map[string]string) string {
				return fmt.Sprintf(`irate(node_network_transmit_bytes_total{instance="%s"}[5m])`, lbl(l, "instance"))
			},
		},
		{
			Name: "disk_read",
			When: hasLabel("instance"),
			Query: func(l map[string]string) string {
				return fmt.Sprintf(`irate(node_disk_read_bytes_total{instance="%s"}[5m])`, lbl(l, "instance"))
			},
		},
		{
			Name: "disk_write",
			When: hasLabel("instance"),
			Query: func(l map[string]string) string {
				return fmt.Sprintf(`irate(node_disk_written_bytes_total{instance="%s"}[5m])`, lbl(l, "instance"))
			},
		},
		{
			Name: "pod_cpu",
			When: hasLabel("namespace", "pod"),
			Query: func(l map[string]string) string {
				return fmt.Sprintf(`sum by(pod) (rate(container_cpu_usage_seconds_total{namespace="%s",pod="%s",container!=""}[5m]))`, lbl(l, "namespace"), lbl(l, "pod"))
			},
		},
		{
			Name: "pod_memory",
			When: hasLabel("namespace", "pod"),
			Query: func(l map[string]string) string {
				return fmt.Sprintf(`sum by(pod) (container_memory_working_set_bytes{namespace="%s",pod="%s",container!=""})`, lbl(l, "namespace"), lbl(l, "pod"))
			},
		},
	},
}
