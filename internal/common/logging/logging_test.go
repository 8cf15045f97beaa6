package logging

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestCommandLineFormatter(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&CommandLineFormatter{})

	logger.WithField("ignored", 1).Info("computed 3 overlap records")
	logger.Warn("skipped record")
	assert.Equal(t, "computed 3 overlap records\nwarning: skipped record\n", buf.String())
}

func TestWithStacktrace(t *testing.T) {
	logger := logrus.NewEntry(logrus.New())

	entry := WithStacktrace(logger, errors.Wrap(errors.New("root"), "outer"))
	assert.Contains(t, entry.Data, StacktraceField)
	assert.Contains(t, entry.Data, logrus.ErrorKey)
	assert.Contains(t, entry.Data[StacktraceField], "TestWithStacktrace")

	entry = WithStacktrace(logger, plainError("no stack"))
	assert.NotContains(t, entry.Data, StacktraceField)
}

func TestExtractStack_Innermost(t *testing.T) {
	inner := errors.New("root")
	outer := errors.WithStack(errors.WithMessage(inner, "context"))
	assert.Equal(t, inner.(stackTracer).StackTrace(), ExtractStack(outer))
	assert.Nil(t, ExtractStack(plainError("no stack")))
	assert.Nil(t, ExtractStack(nil))
}

type plainError string

func (e plainError) Error() string { return string(e) }

func TestPrometheusHook(t *testing.T) {
	registry := prometheus.NewRegistry()
	hook := NewPrometheusHook(registry)
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	logger.AddHook(hook)

	logger.Warn("one")
	logger.Warn("two")
	logger.Info("three")

	assert.Equal(t, 2.0, testutil.ToFloat64(hook.counters[logrus.WarnLevel]))
	assert.Equal(t, 1.0, testutil.ToFloat64(hook.counters[logrus.InfoLevel]))
	assert.Equal(t, 0.0, testutil.ToFloat64(hook.counters[logrus.ErrorLevel]))
}
