package logger

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardLoggerLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewStandardLogger(log.New(buf, "", 0))

	l.Info("listening on %s", ":4711")
	l.Warning("retry %d/%d", 2, 3)
	l.Error("decode failed: %v", "boom")

	assert.Equal(t, "[INFO] listening on :4711\n[WARNING] retry 2/3\n[ERROR] decode failed: boom\n", buf.String())
	assert.NoError(t, l.Close())
}

func TestSessionPrefix(t *testing.T) {
	buf := &bytes.Buffer{}
	base := NewStandardLogger(log.New(buf, "", 0))

	s := base.Session("127.0.0.1:9000")
	s.Info("hello")
	assert.Regexp(t, regexp.MustCompile(`^\[[0-9a-f]{8} 127\.0\.0\.1:9000\] \[INFO\] hello\n$`), buf.String())

	buf.Reset()
	other := base.Session("127.0.0.1:9000")
	other.Info("x")
	s.Info("x")
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.NotEqual(t, string(lines[0]), string(lines[1]))
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dapwire.log")
	l, err := Open(path)
	require.NoError(t, err)

	l.Error("something %s", "bad")
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[ERROR] something bad")
}

func TestOpenFileError(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "x.log"))
	assert.Error(t, err)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Info("x")
	l.Warning("x")
	l.Error("x")
	assert.NoError(t, l.Close())
}

func TestMockLoggerRecordsCalls(t *testing.T) {
	m := NewMockLogger()
	m.Info("info %d", 1)
	m.Info("info %d", 2)
	m.Warning("warn %s", "w")
	m.Error("err %v", "e")
	require.NoError(t, m.Close())

	assert.Equal(t, []string{"info 1", "info 2"}, m.Infos())
	assert.Equal(t, []string{"warn w"}, m.Warnings())
	assert.Equal(t, []string{"err e"}, m.Errors())
	assert.True(t, m.CloseCalled)
}
