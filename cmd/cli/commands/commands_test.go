package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/quill/internal/auth"
	"github.com/celestiaorg/quill/internal/types"
	"github.com/celestiaorg/quill/test"
)

func findCommand(cmds []*cobra.Command, name string) *cobra.Command {
	for _, c := range cmds {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// execute runs the root command with args and returns its output
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	for _, name := range []string{"content", "run", "jobs", "cron", "demo", "websites", "settings", "token"} {
		assert.NotNil(t, findCommand(RootCmd.Commands(), name), "missing %s command", name)
	}

	content := findCommand(RootCmd.Commands(), "content")
	for _, name := range []string{"schedule", "list", "delete"} {
		assert.NotNil(t, findCommand(content.Commands(), name), "missing content %s command", name)
	}

	limit, err := listContentCmd.Flags().GetInt(flagLimit)
	require.NoError(t, err)
	assert.Equal(t, 50, limit)
}

func TestTokenMint(t *testing.T) {
	out, err := execute(t, "token", "mint", "--user-id", "user-1", "--email", "a@example.com", "--secret", "s3cret")
	require.NoError(t, err)

	claims, err := auth.NewAuthenticator("s3cret", "").ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
}

func TestScheduleAndRun(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()

	_, userClient := suite.CreateUser("google-key")
	website := suite.CreateWebsite(userClient)

	apiClient = userClient
	defer func() { apiClient = nil }()

	at := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	out, err := execute(t, "content", "schedule", "--website", website.ID, "--topic", "CLI topic", "--at", at)
	require.NoError(t, err)

	var item struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &item))
	assert.Equal(t, "scheduled", item.Status)

	out, err = execute(t, "run", item.ID)
	require.NoError(t, err)
	var run types.RunAgentResponse
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	require.NotEmpty(t, run.JobID)

	out, err = execute(t, "jobs", "get", run.JobID, "--watch", "--interval", "10ms")
	require.NoError(t, err)
	var job types.JobStatusResponse
	require.NoError(t, json.Unmarshal([]byte(extractJSON(out)), &job))
	assert.True(t, job.IsFinished())

	_, err = execute(t, "content", "schedule", "--website", website.ID, "--topic", "bad", "--at", "tomorrow")
	assert.Error(t, err)
}

// extractJSON drops the progress lines jobs get --watch prints before the
// final document
func extractJSON(out string) string {
	if i := strings.Index(out, "{"); i >= 0 {
		return out[i:]
	}
	return out
}
