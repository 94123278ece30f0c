package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kube-rca/aiops-processor/internal/service"
)

func TestTokenCommand(t *testing.T) {
	t.Setenv("WEBHOOK_JWT_SECRET", "test-secret")

	cmd := tokenCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--subject", "alertmanager", "--ttl", "1h"})
	require.NoError(t, cmd.Execute())

	tokens, err := service.NewTokenService("test-secret")
	require.NoError(t, err)
	subject, err := tokens.ParseToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "alertmanager", subject)
}

func TestTokenCommandRequiresSecret(t *testing.T) {
	t.Setenv("WEBHOOK_JWT_SECRET", "")

	cmd := tokenCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--subject", "alertmanager"})
	assert.ErrorIs(t, cmd.Execute(), service.ErrMisconfigured)
}

func TestAnalyzeCommandRequiresFile(t *testing.T) {
	cmd := analyzeCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())
}

func TestRootRegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range Root().Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["analyze"])
	assert.True(t, names["token"])
}
