package user

import (
	"strings"
	"time"
)

// NewFromCreateRequest normalises req and validates the result. The store assigns the ID.
func NewFromCreateRequest(req CreateUserRequest, now time.Time) (User, error) {
	u := User{
		Name:      normalizeName(deref(req.Name)),
		Email:     normalizeEmail(deref(req.Email)),
		City:      normalizeCity(deref(req.City)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if req.Age != nil {
		age := *req.Age
		u.Age = &age
	}

	err := Validate(u)
	if err != nil {
		return User{}, err
	}

	return u, nil
}

// NewChanges normalises and validates the fields present in req.
func NewChanges(req UpdateUserRequest) (Changes, error) {
	var c Changes

	if req.Name != nil {
		v := normalizeName(*req.Name)
		c.Name = &v
	}
	if req.Email != nil {
		v := normalizeEmail(*req.Email)
		c.Email = &v
	}
	if req.Age != nil {
		v := *req.Age
		c.Age = &v
	}
	if req.City != nil {
		v := normalizeCity(*req.City)
		c.City = &v
	}

	err := ValidatePatch(c)
	if err != nil {
		return Changes{}, err
	}

	return c, nil
}

func normalizeName(s string) string {
	return strings.TrimSpace(s)
}

// emails are lower-cased but not trimmed, surrounding spaces fail the pattern.
func normalizeEmail(s string) string {
	return strings.ToLower(s)
}

func normalizeCity(s string) string {
	return strings.TrimSpace(s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
