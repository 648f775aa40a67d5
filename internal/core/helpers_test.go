package core

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ryotapoi/mdpack/internal/logging"
	"github.com/ryotapoi/mdpack/internal/testutil"
)

type logEntry struct {
	level string
	msg   string
	args  []any
}

// recordingLogger keeps every entry so tests can assert on warnings.
type recordingLogger struct {
	entries []logEntry
}

var _ logging.Logger = (*recordingLogger)(nil)

func (r *recordingLogger) add(level, msg string, args []any) {
	r.entries = append(r.entries, logEntry{level: level, msg: msg, args: args})
}

func (r *recordingLogger) Trace(msg string, args ...any) { r.add("trace", msg, args) }
func (r *recordingLogger) Debug(msg string, args ...any) { r.add("debug", msg, args) }
func (r *recordingLogger) Info(msg string, args ...any)  { r.add("info", msg, args) }
func (r *recordingLogger) Warn(msg string, args ...any)  { r.add("warn", msg, args) }
func (r *recordingLogger) Error(msg string, args ...any) { r.add("error", msg, args) }

// messages returns "msg k=v ..." for every entry at level.
func (r *recordingLogger) messages(level string) []string {
	var out []string
	for _, e := range r.entries {
		if e.level != level {
			continue
		}
		var b strings.Builder
		b.WriteString(e.msg)
		for i := 0; i+1 < len(e.args); i += 2 {
			fmt.Fprintf(&b, " %v=%v", e.args[i], e.args[i+1])
		}
		out = append(out, b.String())
	}
	return out
}

func (r *recordingLogger) hasWarning(substr string) bool {
	for _, m := range r.messages("warn") {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// openTestVault writes files into a fresh vault and indexes it with the
// default configuration.
func openTestVault(t *testing.T, files map[string]string) (string, *Index, *Extractor, *recordingLogger) {
	t.Helper()
	vault := testutil.NewVault(t, files)
	log := &recordingLogger{}
	cfg := DefaultConfig()
	v, err := OpenVault(vault, OpenOptions{Config: &cfg, Logger: log})
	require.NoError(t, err)
	return vault, v.Index, v.Extractor, log
}
