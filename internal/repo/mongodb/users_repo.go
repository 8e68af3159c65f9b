package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/usershub/internal/domain/user"
	"github.com/geocoder89/usershub/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	backend        = "mongo"
	collectionName = "users"
)

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Age       *int               `bson:"age,omitempty"`
	City      string             `bson:"city,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d userDocument) toUser() user.User {
	return user.User{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Age:       d.Age,
		City:      d.City,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type UsersRepo struct {
	coll *mongo.Collection
	prom *observability.Prom
	now  func() time.Time
}

// NewUsersRepo binds the users collection of db. prom may be nil.
func NewUsersRepo(db *mongo.Database, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		coll: db.Collection(collectionName),
		prom: prom,
		// mongo stores milliseconds
		now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// EnsureIndexes creates the unique email index and the createdAt index used for listing.
func (r *UsersRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("created_at_desc"),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	return nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}

func (r *UsersRepo) Create(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	u, err := user.NewFromCreateRequest(req, r.now())
	if err != nil {
		return user.User{}, err
	}

	doc := userDocument{
		ID:        primitive.NewObjectID(),
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		City:      u.City,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}

	err = r.prom.ObserveStore(backend, "create", func() error {
		_, err := r.coll.InsertOne(ctx, doc)
		return translate(err)
	})
	if err != nil {
		return user.User{}, err
	}

	return doc.toUser(), nil
}

func (r *UsersRepo) List(ctx context.Context, filter user.ListFilter) ([]user.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(filter.Limit))

	output := make([]user.User, 0)

	err := r.prom.ObserveStore(backend, "list", func() error {
		cur, err := r.coll.Find(ctx, bson.D{}, opts)
		if err != nil {
			return fmt.Errorf("find users: %w", err)
		}
		defer cur.Close(ctx)

		for cur.Next(ctx) {
			var doc userDocument
			if err := cur.Decode(&doc); err != nil {
				return fmt.Errorf("decode user: %w", err)
			}
			output = append(output, doc.toUser())
		}

		return cur.Err()
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *UsersRepo) Count(ctx context.Context) (int64, error) {
	var total int64

	err := r.prom.ObserveStore(backend, "count", func() error {
		n, err := r.coll.CountDocuments(ctx, bson.D{})
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		total = n
		return nil
	})

	return total, err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return user.User{}, user.ErrInvalidID
	}

	var doc userDocument

	err = r.prom.ObserveStore(backend, "get", func() error {
		return translate(r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc))
	})
	if err != nil {
		return user.User{}, err
	}

	return doc.toUser(), nil
}

func (r *UsersRepo) Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return user.User{}, user.ErrInvalidID
	}

	changes, err := user.NewChanges(req)
	if err != nil {
		return user.User{}, err
	}

	set := bson.M{"updatedAt": r.now()}
	if changes.Name != nil {
		set["name"] = *changes.Name
	}
	if changes.Email != nil {
		set["email"] = *changes.Email
	}
	if changes.Age != nil {
		set["age"] = *changes.Age
	}
	if changes.City != nil {
		set["city"] = *changes.City
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument

	err = r.prom.ObserveStore(backend, "update", func() error {
		res := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts)
		return translate(res.Decode(&doc))
	})
	if err != nil {
		return user.User{}, err
	}

	return doc.toUser(), nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return user.ErrInvalidID
	}

	return r.prom.ObserveStore(backend, "delete", func() error {
		return translate(r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Err())
	})
}

// translate maps driver errors onto the user error set. Anything else is returned wrapped.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return user.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return user.ErrDuplicateEmail
	default:
		return fmt.Errorf("mongo: %w", err)
	}
}
