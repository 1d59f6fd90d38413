package datadog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yggdrasil/internal/metrics"
)

type call struct {
	kind  string
	name  string
	value float64
	tags  []string
}

type fakeClient struct {
	calls  []call
	closed int
}

func (f *fakeClient) Count(name string, value int64, tags []string, _ float64) error {
	f.calls = append(f.calls, call{"count", name, float64(value), tags})
	return nil
}

func (f *fakeClient) Histogram(name string, value float64, tags []string, _ float64) error {
	f.calls = append(f.calls, call{"histogram", name, value, tags})
	return nil
}

func (f *fakeClient) Close() error {
	f.closed++
	return nil
}

func TestNewBackend(t *testing.T) {
	_, err := NewBackend(Config{})
	assert.ErrorContains(t, err, "Addr is required")

	// statsd.New resolves but does not connect for UDP.
	b, err := NewBackend(Config{Addr: "127.0.0.1:8125", Namespace: "odcs.", GlobalTags: []string{"env:test"}})
	require.NoError(t, err)
	require.NotNil(t, b.client)
	assert.NoError(t, b.Flush())
}

func TestBackend_ForwardsToClient(t *testing.T) {
	fc := &fakeClient{}
	b := &Backend{client: fc}

	b.IncCounter(metrics.ValidationsTotal, 2, metrics.Labels{"status": "success", "command": "validate"})
	b.ObserveHistogram(metrics.ValidationDurationSeconds, 0.25, metrics.Labels{"command": "validate"})
	require.NoError(t, b.Flush())

	require.Len(t, fc.calls, 2)
	assert.Equal(t, call{"count", metrics.ValidationsTotal, 2, []string{"command:validate", "status:success"}}, fc.calls[0])
	assert.Equal(t, call{"histogram", metrics.ValidationDurationSeconds, 0.25, []string{"command:validate"}}, fc.calls[1])
	assert.Equal(t, 1, fc.closed)
}

func TestBackend_NilClient(t *testing.T) {
	b := &Backend{}
	assert.NotPanics(t, func() {
		b.IncCounter("x", 1, nil)
		b.ObserveHistogram("x", 1, nil)
	})
	assert.NoError(t, b.Flush())
}

func TestLabelsToTags(t *testing.T) {
	assert.Nil(t, labelsToTags(nil))
	assert.Equal(t, []string{"a:1", "b:2"}, labelsToTags(metrics.Labels{"b": "2", "a": "1"}))
}
