package profile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfiler_WritesTable_When_Enabled(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := New(true, &out)

	var sink [][]byte
	require.NoError(t, p.Stage("allocate", func() error {
		for range 100 {
			sink = append(sink, make([]byte, 1024))
		}
		return nil
	}))
	boom := errors.New("boom")
	assert.ErrorIs(t, p.Stage("fail", func() error { return boom }), boom)
	require.NoError(t, p.Write())
	_ = sink

	stages := p.Stages()
	require.Len(t, stages, 2)
	assert.Equal(t, "allocate", stages[0].Name)
	assert.GreaterOrEqual(t, stages[0].AllocBytes, uint64(100*1024))
	assert.ErrorIs(t, stages[1].Err, boom)

	text := out.String()
	assert.Contains(t, text, "# hellobench Performance Profile")
	assert.Contains(t, text, "Total Duration:")
	lines := strings.Split(text, "\n")
	var rows []string
	for _, l := range lines {
		if strings.HasPrefix(l, "allocate") || strings.HasPrefix(l, "fail") {
			rows = append(rows, l)
		}
	}
	require.Len(t, rows, 2)
	assert.True(t, strings.HasSuffix(rows[0], "ok"))
	assert.True(t, strings.HasSuffix(rows[1], "error: boom"))
}

func TestProfiler_RecordsNothing_When_Disabled(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := New(false, &out)
	called := false
	require.NoError(t, p.Stage("x", func() error { called = true; return nil }))
	require.NoError(t, p.Write())

	assert.True(t, called)
	assert.Empty(t, p.Stages())
	assert.Empty(t, out.String())
}

func TestProfiler_CPUProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpu.pprof")
	p := New(false, &bytes.Buffer{})

	require.NoError(t, p.StartCPU(path))
	assert.Error(t, p.StartCPU(path), "second start is rejected")
	require.NoError(t, p.Stop())
	require.NoError(t, p.Stop())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
