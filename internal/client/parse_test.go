package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kube-rca/aiops-processor/internal/model"
)

func TestParseAnalysisFormats(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "plain json",
			raw:  `{"summary":"s","root_cause":"CPU saturation","evidence":["e1","e2"],"remediation_steps":["scale up","tune limits"],"severity":"warning","confidence":0.8}`,
		},
		{
			name: "think block prefix",
			raw:  "<think>\nLet me look at {the data}.\n</think>\n{\"summary\":\"s\",\"root_cause\":\"CPU saturation\",\"evidence\":[\"e1\",\"e2\"],\"remediation_steps\":[\"scale up\",\"tune limits\"],\"severity\":\"warning\",\"confidence\":0.8}",
		},
		{
			name: "code fence",
			raw:  "Here is the analysis:\n```json\n{\"summary\":\"s\",\"root_cause\":\"CPU saturation\",\"evidence\":[\"e1\",\"e2\"],\"remediation_steps\":[\"scale up\",\"tune limits\"],\"severity\":\"warning\",\"confidence\":0.8}\n```",
		},
		{
			name: "shell fence before json",
			raw:  "Check with:\n```bash\nkubectl top pods -n ${NS}\n```\n{\"summary\":\"s\",\"root_cause\":\"CPU saturation\",\"evidence\":[\"e1\",\"e2\"],\"remediation_steps\":[\"scale up\",\"tune limits\"],\"severity\":\"warning\",\"confidence\":0.8}",
		},
		{
			name: "surrounding prose",
			raw:  "Analysis follows {\"summary\":\"s\",\"root_cause\":\"CPU saturation\",\"evidence\":[\"e1\",\"e2\"],\"remediation_steps\":[\"scale up\",\"tune limits\"],\"severity_assessment\":\"Medium - moderate impact\",\"confidence\":\"80%\"} hope it helps",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseAnalysis(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, "s", a.Summary)
			assert.Equal(t, "CPU saturation", a.RootCause)
			assert.Equal(t, []string{"e1", "e2"}, a.Evidence)
			assert.Equal(t, []string{"scale up", "tune limits"}, a.RemediationSteps)
			assert.Equal(t, model.SeverityWarning, a.Severity)
			assert.InDelta(t, 0.8, a.Confidence, 1e-9)
		})
	}
}

func TestParseAnalysisKeepsBackticksInStrings(t *testing.T) {
	raw := "{\"root_cause\": \"CPU saturation\", \"severity\": \"warning\", \"remediation_steps\": [\"Run ```kubectl top pods``` then scale\", \"scale up\"]}"

	a, err := ParseAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, "CPU saturation", a.RootCause)
	assert.Equal(t, model.SeverityWarning, a.Severity)
	assert.Equal(t, []string{"Run ```kubectl top pods``` then scale", "scale up"}, a.RemediationSteps)

	fenced := "```json\n" + raw + "\n```"
	a, err = ParseAnalysis(fenced)
	require.NoError(t, err)
	assert.Equal(t, "Run ```kubectl top pods``` then scale", a.RemediationSteps[0])
}

func TestParseAnalysisConfidence(t *testing.T) {
	tests := map[string]float64{
		`0.8`:     0.8,
		`1`:       1,
		`1.5`:     1,
		`85`:      0.85,
		`"85%"`:   0.85,
		`"150%"`:  1,
		`"0.4"`:   0.4,
		`-0.2`:    0,
		`"high"`:  0,
		`null`:    0,
		`"12 %"`:  0.12,
		`"250 %"`: 1,
	}

	for raw, want := range tests {
		t.Run(raw, func(t *testing.T) {
			a, err := ParseAnalysis(`{"root_cause":"x","confidence":` + raw + `}`)
			require.NoError(t, err)
			assert.InDelta(t, want, a.Confidence, 1e-9)
		})
	}
}

func TestParseAnalysisBracesInsideStrings(t *testing.T) {
	a, err := ParseAnalysis(`{"root_cause":"template {{x}} broke }","remediation_steps":"restart"}`)
	require.NoError(t, err)
	assert.Equal(t, "template {{x}} broke }", a.RootCause)
	assert.Equal(t, []string{"restart"}, a.RemediationSteps)
	assert.Equal(t, model.SeverityUnknown, a.Severity)
	assert.Empty(t, a.Evidence)
}

func TestParseAnalysisFailures(t *testing.T) {
	_, err := ParseAnalysis("no json here")
	assert.ErrorIs(t, err, errNoJSONObject)

	_, err = ParseAnalysis(`{"summary":"missing root cause"}`)
	assert.ErrorIs(t, err, errNoRootCause)

	_, err = ParseAnalysis(`{"root_cause": }`)
	assert.Error(t, err)
}

func TestNormalizeSeverity(t *testing.T) {
	tests := map[string]string{
		"critical":                 model.SeverityCritical,
		"High - customer impact":   model.SeverityCritical,
		"WARNING":                  model.SeverityWarning,
		"medium":                   model.SeverityWarning,
		"Low":                      model.SeverityInfo,
		"info":                     model.SeverityInfo,
		"Critical/High/Medium/Low": model.SeverityCritical,
		"":                         model.SeverityUnknown,
		"whatever":                 model.SeverityUnknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeSeverity(in), in)
	}
}
