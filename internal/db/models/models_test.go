package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatus(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      JobStatus
		wantErr   bool
		wantAlive bool
	}{
		{name: "Pending status", input: "pending", want: JobStatusPending, wantAlive: true},
		{name: "Running status", input: "running", want: JobStatusRunning, wantAlive: true},
		{name: "Completed status", input: "completed", want: JobStatusCompleted},
		{name: "Failed status", input: "FAILED", want: JobStatusFailed},
		{name: "Invalid status", input: "terminated", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := ParseJobStatus(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
			assert.Equal(t, tt.wantAlive, status.IsActive())

			var decoded JobStatus
			require.NoError(t, json.Unmarshal([]byte(`"`+tt.input+`"`), &decoded))
			assert.Equal(t, tt.want, decoded)
		})
	}
}

func TestContentStatus(t *testing.T) {
	for _, s := range []ContentStatus{
		ContentStatusDraft,
		ContentStatusScheduled,
		ContentStatusRunning,
		ContentStatusPublished,
		ContentStatusFailed,
	} {
		parsed, err := ParseContentStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseContentStatus("archived")
	assert.Error(t, err)

	var decoded ContentStatus
	assert.Error(t, json.Unmarshal([]byte(`"archived"`), &decoded))
}

func TestContentItem_IsDue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name string
		item ContentItem
		want bool
	}{
		{"scheduled in the past", ContentItem{Status: ContentStatusScheduled, ScheduledFor: &past}, true},
		{"scheduled exactly now", ContentItem{Status: ContentStatusScheduled, ScheduledFor: &now}, true},
		{"scheduled in the future", ContentItem{Status: ContentStatusScheduled, ScheduledFor: &future}, false},
		{"scheduled without time", ContentItem{Status: ContentStatusScheduled}, false},
		{"draft in the past", ContentItem{Status: ContentStatusDraft, ScheduledFor: &past}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.IsDue(now))
		})
	}
}

func TestContentItem_BeforeCreate(t *testing.T) {
	item := &ContentItem{Topic: "Agentic AI"}
	require.NoError(t, item.BeforeCreate(nil))
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Agentic AI", item.Title)
	assert.Equal(t, ContentStatusDraft, item.Status)

	running := &ContentItem{Topic: "x", Status: ContentStatusRunning}
	assert.Error(t, running.BeforeCreate(nil))

	empty := &ContentItem{}
	assert.Error(t, empty.BeforeCreate(nil))
}

func TestWebsite_HasCredentials(t *testing.T) {
	site := Website{URL: "https://blog.example.com", Username: "editor", AppPassword: "abcd efgh"}
	assert.True(t, site.HasCredentials())

	site.AppPassword = "  "
	assert.False(t, site.HasCredentials())
}

func TestSecretsAreNotSerialized(t *testing.T) {
	raw, err := json.Marshal(User{Email: "a@example.com", GoogleAPIKey: "secret-key"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-key")

	raw, err = json.Marshal(Website{URL: "https://x", AppPassword: "secret-pass"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-pass")
}
