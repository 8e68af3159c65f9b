package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/usershub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

type UsersStore interface {
	List(ctx context.Context, filter user.ListFilter) ([]user.User, error)
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	Create(ctx context.Context, req user.CreateUserRequest) (user.User, error)
	Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.User, error)
	Delete(ctx context.Context, id string) error
}

type UsersHandler struct {
	repo    UsersStore
	timeout time.Duration
}

func NewUsersHandler(repo UsersStore, timeout time.Duration) *UsersHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &UsersHandler{repo: repo, timeout: timeout}
}

func (h *UsersHandler) storeContext(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), h.timeout)
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	page := parsePositiveInt(ctx.Query("page"), defaultPage)
	limit := parsePositiveInt(ctx.Query("limit"), defaultLimit)

	offset := math.MaxInt
	if page-1 <= math.MaxInt/limit {
		offset = (page - 1) * limit
	}

	cctx, cancel := h.storeContext(ctx)
	defer cancel()

	users, err := h.repo.List(cctx, user.ListFilter{Limit: limit, Offset: offset})
	if err != nil {
		RespondServerError(ctx, err)
		return
	}

	total, err := h.repo.Count(cctx)
	if err != nil {
		RespondServerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":     true,
		"count":       len(users),
		"total":       total,
		"currentPage": page,
		"totalPages":  int64(math.Ceil(float64(total) / float64(limit))),
		"data":        users,
	})
}

func (h *UsersHandler) GetUser(ctx *gin.Context) {
	cctx, cancel := h.storeContext(ctx)
	defer cancel()

	u, err := h.repo.GetByID(cctx, ctx.Param("id"))
	if err != nil {
		h.respondStoreError(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, "", u)
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.UpdateUserRequest

	if !BindUser(ctx, &req) {
		return
	}

	cctx, cancel := h.storeContext(ctx)
	defer cancel()

	u, err := h.repo.Create(cctx, user.CreateUserRequest(req))
	if err != nil {
		h.respondStoreError(ctx, err)
		return
	}

	RespondData(ctx, http.StatusCreated, "User created successfully", u)
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	var req user.UpdateUserRequest

	if !BindUser(ctx, &req) {
		return
	}

	cctx, cancel := h.storeContext(ctx)
	defer cancel()

	u, err := h.repo.Update(cctx, ctx.Param("id"), req)
	if err != nil {
		h.respondStoreError(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, "User updated successfully", u)
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	cctx, cancel := h.storeContext(ctx)
	defer cancel()

	err := h.repo.Delete(cctx, ctx.Param("id"))
	if err != nil {
		h.respondStoreError(ctx, err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "User deleted successfully")
}

func (h *UsersHandler) respondStoreError(ctx *gin.Context, err error) {
	switch user.KindOf(err) {
	case user.KindNotFound, user.KindInvalidID:
		RespondNotFound(ctx, msgUserNotFound)
	case user.KindValidation:
		var verr *user.ValidationError
		errors.As(err, &verr)
		RespondValidation(ctx, verr.Messages())
	case user.KindDuplicateEmail:
		RespondDuplicate(ctx)
	default: // user.KindInternal
		RespondServerError(ctx, err)
	}
}

// parsePositiveInt reads the leading integer of s, ignoring anything after it ("2abc" is 2).
// Missing, unparsable and non-positive values give def.
func parsePositiveInt(s string, def int) int {
	s = strings.TrimSpace(s)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil || n <= 0 {
		return def
	}
	return n
}
