package observability

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/usershub/internal/domain/user"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
)

// ObserveStore times fn as one logical store op. Safe on a nil *Prom. Expected user outcomes
// (not found, invalid id, validation, duplicate email) are counted as ok, not as store errors.
func (p *Prom) ObserveStore(backend, op string, fn func() error) error {
	if p == nil {
		return fn()
	}

	start := time.Now()
	err := fn()

	status := "ok"

	if err != nil && user.KindOf(err) == user.KindInternal {
		status = "error"
		p.StoreErrorsTotal.WithLabelValues(backend, op, classifyStoreErr(err)).Inc()
	}
	p.StoreOpDuration.WithLabelValues(backend, op, status).Observe(time.Since(start).Seconds())
	return err
}

func classifyStoreErr(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return "unique_violation"
		case "40001":
			return "serialization_failure"
		case "40P01":
			return "deadlock"
		case "57014":
			return "query_canceled"
		default:
			return "pg_" + pgErr.Code
		}
	}

	switch {
	case mongo.IsDuplicateKeyError(err):
		return "duplicate_key"
	case mongo.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case mongo.IsNetworkError(err):
		return "connection"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "connection"):
		return "connection"
	default:
		return "unknown"
	}
}
