package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/geocoder89/usershub/internal/domain/user"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// userForm is the form-encoded shape of a user payload. Every value arrives as text.
type userForm struct {
	Name  *string `form:"name"`
	Email *string `form:"email"`
	Age   *string `form:"age"`
	City  *string `form:"city"`
}

func (f userForm) fields() map[string]any {
	out := make(map[string]any, 4)
	for key, v := range map[string]*string{"name": f.Name, "email": f.Email, "age": f.Age, "city": f.City} {
		if v != nil {
			out[key] = *v
		}
	}
	return out
}

// BindUser reads a user payload from a JSON or form-encoded body and casts its values
// onto out. Cast failures are answered as validation failures.
func BindUser(ctx *gin.Context, out *user.UpdateUserRequest) bool {
	var fields map[string]any

	switch ctx.ContentType() {
	case binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
		var form userForm
		if err := ctx.ShouldBindWith(&form, binding.Form); err != nil {
			_ = ctx.Error(err).SetType(gin.ErrorTypeBind)
			ctx.Abort()
			return false
		}
		fields = form.fields()
	default:
		if !BindJSON(ctx, &fields) {
			return false
		}
	}

	req, err := user.CastRequest(fields)
	if err != nil {
		var verr *user.ValidationError
		if errors.As(err, &verr) {
			RespondValidation(ctx, verr.Messages())
			return false
		}
		RespondServerError(ctx, err)
		return false
	}

	*out = req
	return true
}

// BindJSON decodes the request body into out. An empty body leaves out untouched.
// Type mismatches are reported as validation failures; any other decode failure is
// recorded on ctx for the error middleware and false is returned.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		RespondValidation(ctx, castError(typeErr).Messages())
		return false
	}

	_ = ctx.Error(err).SetType(gin.ErrorTypeBind)
	ctx.Abort()
	return false
}

func castError(typeErr *json.UnmarshalTypeError) *user.ValidationError {
	field := typeErr.Field
	if field == "" {
		field = "body"
	}

	return &user.ValidationError{Violations: []user.Violation{{
		Field: field,
		Message: fmt.Sprintf("Cast to %s failed for value of type %s at path %q",
			schemaTypeName(typeErr.Type), jsonKind(typeErr.Value), field),
	}}}
}

func schemaTypeName(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "Mixed"
	}

	switch t.Kind() {
	case reflect.String:
		return "String"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "Number"
	case reflect.Bool:
		return "Boolean"
	case reflect.Struct, reflect.Map:
		return "Object"
	default:
		return t.Kind().String()
	}
}

// jsonKind drops the literal that encoding/json appends to numbers ("number 1.5").
func jsonKind(value string) string {
	kind, _, _ := strings.Cut(value, " ")
	return kind
}
