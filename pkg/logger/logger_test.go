package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_TagsComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New("bootstrap", logrus.InfoLevel, &buf)

	log.Info("starting")

	out := buf.String()
	if !strings.Contains(out, "component=bootstrap") {
		t.Errorf("output missing component field: %s", out)
	}
	if !strings.Contains(out, "starting") {
		t.Errorf("output missing message: %s", out)
	}
	if log.Component() != "bootstrap" {
		t.Errorf("Component() = %q", log.Component())
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("test", logrus.WarnLevel, &buf)

	log.Info("hidden")
	log.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line leaked at warn level: %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn line missing: %s", out)
	}
}

func TestLogWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := New("test", logrus.InfoLevel, &buf)

	log.LogWithFields(map[string]interface{}{"port": 8080}).Info("bound")

	out := buf.String()
	if !strings.Contains(out, "port=8080") {
		t.Errorf("output missing structured field: %s", out)
	}
}
