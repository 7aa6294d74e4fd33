package streams_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamkit/streamkit/modules/streams"
	"github.com/streamkit/streamkit/pkg/consumer"
	"github.com/streamkit/streamkit/pkg/stream"
	"github.com/streamkit/streamkit/pkg/streamhub"
)

type testEnv struct {
	server *httptest.Server
	hub    *streamhub.Hub[any]
	pool   *consumer.Pool[any]
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hub := streamhub.New(context.Background(), streamhub.WithStreamOptions[any](
		stream.WithIdleInterval(5*time.Millisecond),
		stream.WithPushInterval(time.Millisecond),
	))
	t.Cleanup(hub.Close)

	pool, err := consumer.New[any](hub)
	require.NoError(t, err)
	require.NoError(t, pool.Start(context.Background()))
	t.Cleanup(func() { _ = pool.Stop() })

	srv := httptest.NewServer(streams.Router(streams.RouterOptions{
		Hub:  hub,
		Pool: pool,
	}))
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, hub: hub, pool: pool}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequest(method, e.server.URL+path, reqBody)
	require.NoError(t, err)

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

func dataField(t *testing.T, envelope map[string]any, key string) any {
	t.Helper()

	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok, "missing data field in %v", envelope)
	return data[key]
}

func (e *testEnv) createStream(t *testing.T) uint64 {
	t.Helper()

	status, envelope := e.do(t, http.MethodPost, "/", nil)
	require.Equal(t, http.StatusOK, status)
	return uint64(dataField(t, envelope, "stream_id").(float64))
}

func (e *testEnv) subscribe(t *testing.T, streamID uint64) uint64 {
	t.Helper()

	status, envelope := e.do(t, http.MethodPost, fmt.Sprintf("/%d/subscriptions", streamID), nil)
	require.Equal(t, http.StatusOK, status)
	return uint64(dataField(t, envelope, "subscription_id").(float64))
}

func TestRouter_StreamLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	streamID := env.createStream(t)
	subID := env.subscribe(t, streamID)

	status, envelope := env.do(t, http.MethodGet, fmt.Sprintf("/%d/subscribers", streamID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), dataField(t, envelope, "count"))

	status, _ = env.do(t, http.MethodPost, fmt.Sprintf("/%d/data", streamID), map[string]any{"data": "hello"})
	require.Equal(t, http.StatusOK, status)

	status, envelope = env.do(t, http.MethodGet, fmt.Sprintf("/%d/subscriptions/%d/next", streamID, subID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hello", dataField(t, envelope, "item"))

	require.Eventually(t, func() bool {
		status, envelope := env.do(t, http.MethodGet, fmt.Sprintf("/%d/subscriptions/%d/empty", streamID, subID), nil)
		return status == http.StatusOK && dataField(t, envelope, "empty") == true
	}, time.Second, 10*time.Millisecond)
}

// A created stream must stay alive after the create request completes; its
// producer loop runs under the hub's lifecycle context, not the handler's
// request context.
func TestRouter_StreamOutlivesCreateRequest(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	streamID := env.createStream(t)

	// Give a request-scoped producer loop ample time to die, were it one.
	time.Sleep(200 * time.Millisecond)

	subID := env.subscribe(t, streamID)

	status, _ := env.do(t, http.MethodPost, fmt.Sprintf("/%d/data", streamID), map[string]any{"data": "later"})
	require.Equal(t, http.StatusOK, status)

	status, envelope := env.do(t, http.MethodGet, fmt.Sprintf("/%d/subscriptions/%d/next", streamID, subID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "later", dataField(t, envelope, "item"))
}

func TestRouter_NotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	status, envelope := env.do(t, http.MethodPost, "/999/data", map[string]any{"data": "x"})
	assert.Equal(t, http.StatusNotFound, status)
	errDetail, ok := envelope["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "stream_not_found", errDetail["code"])

	streamID := env.createStream(t)

	status, envelope = env.do(t, http.MethodGet, fmt.Sprintf("/%d/subscriptions/999/empty", streamID), nil)
	assert.Equal(t, http.StatusNotFound, status)
	errDetail, ok = envelope["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "subscription_not_found", errDetail["code"])
}

func TestRouter_BadIdentifiers(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	status, _ := env.do(t, http.MethodPost, "/not-a-number/data", map[string]any{"data": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_SubscribeClosedStreamConflicts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	streamID := env.createStream(t)

	status, _ := env.do(t, http.MethodDelete, fmt.Sprintf("/%d", streamID), nil)
	require.Equal(t, http.StatusOK, status)

	status, envelope := env.do(t, http.MethodPost, fmt.Sprintf("/%d/subscriptions", streamID), nil)
	assert.Equal(t, http.StatusConflict, status)
	errDetail, ok := envelope["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "stream_closed", errDetail["code"])
}

func TestRouter_ConsumerControl(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	streamID := env.createStream(t)
	subID := env.subscribe(t, streamID)

	consumerPath := fmt.Sprintf("/%d/subscriptions/%d/consumer", streamID, subID)

	status, _ := env.do(t, http.MethodPost, consumerPath, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, env.pool.TaskCount())

	// Starting the same consumer twice keeps exactly one task.
	status, _ = env.do(t, http.MethodPost, consumerPath, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, env.pool.TaskCount())

	status, _ = env.do(t, http.MethodDelete, consumerPath, nil)
	require.Equal(t, http.StatusOK, status)
	require.Eventually(t, func() bool { return env.pool.TaskCount() == 0 }, time.Second, 5*time.Millisecond)

	// Unknown pair is rejected before reaching the pool.
	status, _ = env.do(t, http.MethodPost, fmt.Sprintf("/%d/subscriptions/999/consumer", streamID), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRouter_Unsubscribe(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	streamID := env.createStream(t)
	subID := env.subscribe(t, streamID)

	status, _ := env.do(t, http.MethodDelete, fmt.Sprintf("/%d/subscriptions/%d", streamID, subID), nil)
	require.Equal(t, http.StatusOK, status)

	status, envelope := env.do(t, http.MethodGet, fmt.Sprintf("/%d/subscribers", streamID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), dataField(t, envelope, "count"))

	status, _ = env.do(t, http.MethodGet, fmt.Sprintf("/%d/subscriptions/%d/empty", streamID, subID), nil)
	assert.Equal(t, http.StatusNotFound, status)
}
