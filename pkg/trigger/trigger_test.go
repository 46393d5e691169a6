package trigger_test

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentscout/talentscout-api/pkg/logger"
	"github.com/talentscout/talentscout-api/pkg/trigger"
)

func init() {
	// Initialize logger for tests
	if err := logger.Initialize(logger.Config{
		Level:       "debug",
		Environment: "development",
	}); err != nil {
		panic(err)
	}
}

type recordedPost struct {
	url         string
	contentType string
	body        string
}

// recordingClient captures the single POST the trigger makes
type recordingClient struct {
	posts chan recordedPost
}

func newRecordingClient() *recordingClient {
	return &recordingClient{posts: make(chan recordedPost, 1)}
}

func (c *recordingClient) Post(url, contentType string, body io.Reader) (*http.Response, error) {
	payload, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	c.posts <- recordedPost{url: url, contentType: contentType, body: string(payload)}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil
}

func TestCallAsyncWithPayload(t *testing.T) {
	client := newRecordingClient()

	trigger.CallAsyncWithPayload("https://hooks.example.com/screening-finished", map[string]string{
		"conversation_id": "conv-1",
		"decision":        "advance",
	}, client)

	select {
	case post := <-client.posts:
		assert.Equal(t, "https://hooks.example.com/screening-finished", post.url)
		assert.Equal(t, "application/json", post.contentType)
		assert.Contains(t, post.body, `"conversation_id":"conv-1"`)
		assert.Contains(t, post.body, `"decision":"advance"`)
	case <-time.After(2 * time.Second):
		require.Fail(t, "trigger was never delivered")
	}
}

func TestCallAsyncWithPayload_NoURLConfigured(t *testing.T) {
	client := newRecordingClient()

	trigger.CallAsyncWithPayload("", map[string]string{"conversation_id": "conv-1"}, client)

	select {
	case <-client.posts:
		require.Fail(t, "no delivery expected without a trigger URL")
	case <-time.After(50 * time.Millisecond):
	}
}
