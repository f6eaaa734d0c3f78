package logx_test

import (
	"bytes"
	"strings"
	"testing"

	"go-magic-lair/internal/logx"
)

func TestLogx_PrettyZH_Info(t *testing.T) {
	var buf bytes.Buffer
	logx.InitTo(&buf, "debug", "pretty", "zh-CN", "never")
	logx.Infof("hello %s", "world")
	if !strings.Contains(buf.String(), "[信息] hello world") {
		t.Fatalf("expect zh label, got: %q", buf.String())
	}
}

func TestLogx_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logx.InitTo(&buf, "warn", "pretty", "zh-CN", "never")
	logx.Infof("should not print")
	logx.Warnf("warn on")
	out := buf.String()
	if strings.Contains(out, "should not print") {
		t.Fatalf("info should be filtered when level=warn")
	}
	if !strings.Contains(out, "[警告]") {
		t.Fatalf("expect warn label present, got: %q", out)
	}
}

func TestLogx_EnglishLabels(t *testing.T) {
	var buf bytes.Buffer
	logx.InitTo(&buf, "info", "pretty", "en", "never")
	logx.Errorf("boom")
	if !strings.Contains(buf.String(), "[ERROR] boom") {
		t.Fatalf("expect en label, got: %q", buf.String())
	}
}

func TestLogx_Silent(t *testing.T) {
	var buf bytes.Buffer
	logx.InitTo(&buf, "off", "pretty", "en", "never")
	logx.Errorf("nothing")
	if buf.Len() != 0 {
		t.Fatalf("expect no output, got: %q", buf.String())
	}
}

func TestLogx_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logx.InitTo(&buf, "info", "json", "en", "never")
	logx.Warnf("row %d skipped", 3)
	if !strings.Contains(buf.String(), `"msg":"row 3 skipped"`) {
		t.Fatalf("expect json record, got: %q", buf.String())
	}
}
