package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/geocoder89/usershub/internal/domain/user"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestClassifyStoreErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "pg unique", err: &pgconn.PgError{Code: "23505"}, want: "unique_violation"},
		{name: "pg other", err: fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "42P01"}), want: "pg_42P01"},
		{name: "mongo duplicate", err: mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}, want: "duplicate_key"},
		{name: "deadline", err: context.DeadlineExceeded, want: "timeout"},
		{name: "canceled", err: context.Canceled, want: "canceled"},
		{name: "connection text", err: errors.New("connection refused"), want: "connection"},
		{name: "unknown", err: errors.New("boom"), want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyStoreErr(tt.err))
		})
	}
}

func TestObserveStore(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	require.NoError(t, p.ObserveStore("memory", "get", func() error { return nil }))
	assert.ErrorIs(t, p.ObserveStore("memory", "get", func() error { return user.ErrNotFound }), user.ErrNotFound)
	assert.Error(t, p.ObserveStore("memory", "get", func() error { return errors.New("boom") }))

	assert.Equal(t, 1.0, testutil.ToFloat64(p.StoreErrorsTotal.WithLabelValues("memory", "get", "unknown")))
	assert.Equal(t, 2, testutil.CollectAndCount(p.StoreOpDuration))
}

func TestObserveStore_NilProm(t *testing.T) {
	var p *Prom

	called := false
	err := p.ObserveStore("memory", "get", func() error {
		called = true
		return nil
	})

	assert.NoError(t, err)
	assert.True(t, called)
	p.ObserveCache(true)
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer

	newLogger(&buf, "production").Debug("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, "development").Debug("shown", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "v", line["k"])
	assert.NotContains(t, line, "trace_id")
}
