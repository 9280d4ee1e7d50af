package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(&Config{Level: "debug", Format: "json", Output: buf, ServiceName: "test"})
}

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	ctx := newBufferLogger(&buf).WithContext(context.Background())
	ctx = SetRequestID(ctx, "req-1")
	ctx = SetJobID(ctx, "job_1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "job_1", GetJobID(ctx))

	CtxInfo(ctx, "hello %s", "world")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello world", line["message"])
	assert.Equal(t, "req-1", line[FieldRequestID])
	assert.Equal(t, "job_1", line[FieldJobID])
	assert.Equal(t, "test", line["service"])
}

func TestEntryAddsMetricFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := newBufferLogger(&buf).WithContext(context.Background())

	With(Fields{FieldStatus: "completed"}).WithDuration(42).WithCount(8).Info(ctx, "done")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.EqualValues(t, 42, line[FieldDurationMs])
	assert.EqualValues(t, 8, line[FieldCount])
	assert.Equal(t, "completed", line[FieldStatus])
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, GetDefault(), FromContext(context.Background()))
	assert.Empty(t, GetJobID(context.Background()))
}
