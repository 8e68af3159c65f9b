package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/geocoder89/usershub/internal/domain/user"
	"github.com/geocoder89/usershub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func bindRouter(got *user.UpdateUserRequest, errs *gin.Errors) *gin.Engine {
	r := gin.New()
	r.POST("/bind", func(ctx *gin.Context) {
		ok := handlers.BindUser(ctx, got)
		*errs = ctx.Errors
		if !ok {
			return
		}
		ctx.Status(http.StatusNoContent)
	})
	return r
}

func TestBindUser_IgnoresUnknownFields(t *testing.T) {
	var (
		got  user.UpdateUserRequest
		errs gin.Errors
	)
	r := bindRouter(&got, &errs)

	req := httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(`{"name":"Ada","age":null,"role":"admin"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
	if got.Name == nil || *got.Name != "Ada" {
		t.Fatalf("name not bound: %+v", got)
	}
	if got.Age != nil || got.City != nil || got.Email != nil {
		t.Fatalf("unexpected fields bound: %+v", got)
	}
}

func TestBindUser_EmptyBody(t *testing.T) {
	var (
		got  user.UpdateUserRequest
		errs gin.Errors
	)
	r := bindRouter(&got, &errs)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bind", nil))

	if w.Code != http.StatusNoContent {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
	if got != (user.UpdateUserRequest{}) {
		t.Fatalf("expected an empty request, got %+v", got)
	}
}

func TestBindUser_CastsScalars(t *testing.T) {
	var (
		got  user.UpdateUserRequest
		errs gin.Errors
	)
	r := bindRouter(&got, &errs)

	req := httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(`{"name":123,"age":"30"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
	if got.Name == nil || *got.Name != "123" {
		t.Fatalf("name not cast: %+v", got)
	}
	if got.Age == nil || *got.Age != 30 {
		t.Fatalf("age not cast: %+v", got)
	}
}

func TestBindUser_FormEncoded(t *testing.T) {
	var (
		got  user.UpdateUserRequest
		errs gin.Errors
	)
	r := bindRouter(&got, &errs)

	form := url.Values{"name": {"Bob"}, "email": {"bob@example.com"}, "age": {"41"}}
	req := httptest.NewRequest(http.MethodPost, "/bind", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
	if got.Name == nil || *got.Name != "Bob" || got.Email == nil || *got.Email != "bob@example.com" {
		t.Fatalf("form not bound: %+v", got)
	}
	if got.Age == nil || *got.Age != 41 {
		t.Fatalf("age not cast: %+v", got)
	}
	if got.City != nil {
		t.Fatalf("city should be absent")
	}
}

func TestBindUser_MalformedBodyIsLeftToErrorMiddleware(t *testing.T) {
	var (
		got  user.UpdateUserRequest
		errs gin.Errors
	)
	r := bindRouter(&got, &errs)

	req := httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if len(errs) != 1 {
		t.Fatalf("expected one recorded error, got %d", len(errs))
	}
	if !errs[0].IsType(gin.ErrorTypeBind) {
		t.Fatalf("expected a bind error, got type %v", errs[0].Type)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("handler should not write a body, got %s", w.Body.String())
	}
}

func TestBindUser_CastFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "float age",
			body: `{"age":30.5}`,
			want: `{"errors":["Cast to Number failed for value of type number at path \"age\""],"message":"Validation Error","success":false}`,
		},
		{
			name: "object name",
			body: `{"name":{"first":"Ada"}}`,
			want: `{"errors":["Cast to String failed for value of type object at path \"name\""],"message":"Validation Error","success":false}`,
		},
		{
			name: "array body",
			body: `[1,2]`,
			want: `{"errors":["Cast to Object failed for value of type array at path \"body\""],"message":"Validation Error","success":false}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				got  user.UpdateUserRequest
				errs gin.Errors
			)
			r := bindRouter(&got, &errs)

			req := httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusNotFound || w.Body.String() != tt.want {
				t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
			}
		})
	}
}
