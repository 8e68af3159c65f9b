package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/usershub/internal/domain/user"
	"github.com/geocoder89/usershub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const backend = "postgres"

const userColumns = `id, name, email, age, city, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// NewUsersRepo wraps pool. prom may be nil.
func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *UsersRepo) Create(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	// postgres keeps microseconds
	u, err := user.NewFromCreateRequest(req, time.Now().UTC().Truncate(time.Microsecond))
	if err != nil {
		return user.User{}, err
	}

	u.ID = uuid.NewString()

	err = r.prom.ObserveStore(backend, "create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, name, email, age, city, created_at, updated_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			u.ID, u.Name, u.Email, u.Age, nullableText(u.City), u.CreatedAt, u.UpdatedAt)
		return translate(err)
	})
	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) List(ctx context.Context, filter user.ListFilter) ([]user.User, error) {
	output := make([]user.User, 0)

	err := r.prom.ObserveStore(backend, "list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
			filter.Limit, filter.Offset)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return fmt.Errorf("scan user: %w", err)
			}
			output = append(output, u)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *UsersRepo) Count(ctx context.Context) (int64, error) {
	var total int64

	err := r.prom.ObserveStore(backend, "count", func() error {
		err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		return nil
	})

	return total, err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrInvalidID
	}

	var u user.User

	err := r.prom.ObserveStore(backend, "get", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return translate(err)
	})
	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrInvalidID
	}

	changes, err := user.NewChanges(req)
	if err != nil {
		return user.User{}, err
	}

	sets := []string{"updated_at = $2"}
	args := []interface{}{id, time.Now().UTC().Truncate(time.Microsecond)}
	argsPosition := 3

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argsPosition))
		args = append(args, value)
		argsPosition++
	}

	if changes.Name != nil {
		add("name", *changes.Name)
	}
	if changes.Email != nil {
		add("email", *changes.Email)
	}
	if changes.Age != nil {
		add("age", *changes.Age)
	}
	if changes.City != nil {
		add("city", nullableText(*changes.City))
	}

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + userColumns

	var u user.User

	err = r.prom.ObserveStore(backend, "update", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx, query, args...))
		return translate(err)
	})
	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return user.ErrInvalidID
	}

	return r.prom.ObserveStore(backend, "delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return translate(err)
		}

		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}
		return nil
	})
}

func scanUser(row pgx.Row) (user.User, error) {
	var (
		u    user.User
		age  *int32
		city *string
	)

	err := row.Scan(&u.ID, &u.Name, &u.Email, &age, &city, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return user.User{}, err
	}

	if age != nil {
		n := int(*age)
		u.Age = &n
	}
	if city != nil {
		u.City = *city
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()

	return u, nil
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return user.ErrNotFound
	case IsUniqueViolation(err):
		return user.ErrDuplicateEmail
	default:
		return fmt.Errorf("postgres: %w", err)
	}
}
