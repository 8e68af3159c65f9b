package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/usershub/internal/domain/user"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UsersRepo is an in-process store with the same identifier shape and uniqueness rules as the
// mongo store.
type UsersRepo struct {
	mu      sync.RWMutex
	items   map[string]record
	byEmail map[string]string // email -> id
	seq     uint64
	now     func() time.Time
}

type record struct {
	user user.User
	seq  uint64
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items:   make(map[string]record),
		byEmail: make(map[string]string),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source, for tests.
func (r *UsersRepo) WithClock(now func() time.Time) *UsersRepo {
	r.now = now
	return r
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *UsersRepo) Create(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	u, err := user.NewFromCreateRequest(req, r.now())
	if err != nil {
		return user.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[u.Email]; taken {
		return user.User{}, user.ErrDuplicateEmail
	}

	u.ID = primitive.NewObjectID().Hex()
	r.seq++
	r.items[u.ID] = record{user: u, seq: r.seq}
	r.byEmail[u.Email] = u.ID

	return u, nil
}

func (r *UsersRepo) List(ctx context.Context, filter user.ListFilter) ([]user.User, error) {
	r.mu.RLock()
	records := make([]record, 0, len(r.items))
	for _, rec := range r.items {
		records = append(records, rec)
	}
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.user.CreatedAt.Equal(b.user.CreatedAt) {
			return a.user.CreatedAt.After(b.user.CreatedAt)
		}
		return a.seq > b.seq
	})

	output := make([]user.User, 0)
	if filter.Offset < 0 || filter.Offset >= len(records) {
		return output, nil
	}

	for _, rec := range records[filter.Offset:] {
		if len(output) == filter.Limit {
			break
		}
		output = append(output, rec.user)
	}

	return output, nil
}

func (r *UsersRepo) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.items)), nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if !validID(id) {
		return user.User{}, user.ErrInvalidID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return rec.user, nil
}

func (r *UsersRepo) Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.User, error) {
	if !validID(id) {
		return user.User{}, user.ErrInvalidID
	}

	changes, err := user.NewChanges(req)
	if err != nil {
		return user.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if changes.Email != nil {
		if owner, taken := r.byEmail[*changes.Email]; taken && owner != id {
			return user.User{}, user.ErrDuplicateEmail
		}
	}

	updated := changes.Apply(rec.user, r.now())

	if updated.Email != rec.user.Email {
		delete(r.byEmail, rec.user.Email)
		r.byEmail[updated.Email] = id
	}

	rec.user = updated
	r.items[id] = rec

	return updated, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return user.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.items[id]
	if !ok {
		return user.ErrNotFound
	}

	delete(r.items, id)
	delete(r.byEmail, rec.user.Email)

	return nil
}

func validID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}
