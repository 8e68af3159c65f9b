package user

import "time"

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       *int      `json:"age,omitempty"`
	City      string    `json:"city,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListFilter is an offset page, newest first.
type ListFilter struct {
	Limit  int
	Offset int
}

// CreateUserRequest is the client payload for a new user. Unknown fields are dropped on decode,
// so id and timestamps can never be client supplied.
type CreateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Age   *int    `json:"age"`
	City  *string `json:"city"`
}

// UpdateUserRequest carries any subset of the user fields. A nil field is left untouched.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Age   *int    `json:"age"`
	City  *string `json:"city"`
}

// Changes is a normalised, validated update ready to be written by a store.
type Changes struct {
	Name  *string
	Email *string
	Age   *int
	City  *string
}

func (c Changes) Empty() bool {
	return c.Name == nil && c.Email == nil && c.Age == nil && c.City == nil
}

// Apply merges c into u and stamps UpdatedAt.
func (c Changes) Apply(u User, now time.Time) User {
	if c.Name != nil {
		u.Name = *c.Name
	}
	if c.Email != nil {
		u.Email = *c.Email
	}
	if c.Age != nil {
		age := *c.Age
		u.Age = &age
	}
	if c.City != nil {
		u.City = *c.City
	}
	u.UpdatedAt = now

	return u
}
