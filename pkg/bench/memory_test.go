package bench

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnavailableSampler_LogsOnce_When_SampledRepeatedly(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := NewUnavailableSampler(logger)

	calls := 0
	for range 5 {
		mem, err := s.Sample(func() error { calls++; return nil })
		assert.NoError(t, err)
		assert.False(t, mem.Measured)
		assert.Zero(t, mem.MB)
	}
	assert.Equal(t, 5, calls)
	assert.False(t, s.Available())
	assert.Equal(t, 1, strings.Count(buf.String(), "memory introspection unavailable"))
}

func TestUnavailableSampler_ReturnsFunctionError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := NewUnavailableSampler(nil).Sample(func() error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestNewMemorySampler_ReturnsUnavailable_When_Disabled(t *testing.T) {
	t.Parallel()

	s := NewMemorySampler(false, nil)
	assert.False(t, s.Available())
}

func TestNewMemorySampler_MeasuresRSS_When_Enabled(t *testing.T) {
	t.Parallel()

	s := NewMemorySampler(true, nil)
	if !s.Available() {
		t.Skip("process memory introspection not supported on this host")
	}
	var sink []byte
	mem, err := s.Sample(func() error {
		sink = make([]byte, 1<<20)
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, mem.Measured)
	assert.NotNil(t, sink)
}

func TestLazySampler_ResolvesOnce_When_FirstUsed(t *testing.T) {
	t.Parallel()

	resolved := 0
	l := &lazySampler{resolve: func() MemorySampler {
		resolved++
		return &fixedSampler{mb: 2}
	}}
	assert.Zero(t, resolved)

	assert.True(t, l.Available())
	mem, err := l.Sample(func() error { return nil })
	assert.NoError(t, err)
	assert.Equal(t, 2.0, mem.MB)
	assert.Equal(t, 1, resolved)
}

func TestNewLazySampler_ReturnsUnavailable_When_Disabled(t *testing.T) {
	t.Parallel()

	s := NewLazySampler(false, nil)
	assert.False(t, s.Available())
	_, err := s.Sample(func() error { return errors.New("boom") })
	assert.EqualError(t, err, "boom")
}
