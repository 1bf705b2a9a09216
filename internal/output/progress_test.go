package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgressLogEnabled(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(&buf, true, false)
	p.Log("hello %s", "world")

	if !strings.Contains(buf.String(), "hello world") {
		t.Errorf("expected 'hello world' in output, got %q", buf.String())
	}
}

func TestProgressLogDisabled(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(&buf, false, false)
	p.Log("should not appear")
	p.Warn("nor this")

	if buf.Len() != 0 {
		t.Errorf("quiet mode should produce no output, got %q", buf.String())
	}
}

func TestVerboseProgressDebug(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(&buf, true, true)
	p.Debug("debug info %d", 42)

	out := buf.String()
	if !strings.Contains(out, "debug info 42") || !strings.Contains(out, "DBG") {
		t.Errorf("expected debug line in output, got %q", out)
	}
}

func TestVerboseProgressDebugDisabledWhenNotVerbose(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(&buf, true, false)
	p.Debug("should not appear")

	if strings.Contains(buf.String(), "should not appear") {
		t.Errorf("debug should not appear when verbose=false, got %q", buf.String())
	}
}

func TestVerboseImpliesEnabled(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(&buf, false, true) // enabled=false but verbose=true
	p.Log("visible despite enabled=false")

	if !strings.Contains(buf.String(), "visible despite enabled=false") {
		t.Errorf("verbose should override enabled=false, got %q", buf.String())
	}
}

func TestLoggerSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(&buf, true, false)
	log := p.Logger()
	log.Warn().Str("component", "binder").Msg("structured")

	out := buf.String()
	if !strings.Contains(out, "structured") || !strings.Contains(out, "component=binder") {
		t.Errorf("expected structured warning, got %q", out)
	}
}
