package user

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// document is the normalised shape the rules are declared on.
type document struct {
	Name  string `validate:"required,max=50"`
	Email string `validate:"required,useremail"`
	Age   *int   `validate:"omitempty,min=0,max=120"`
	City  string `validate:"max=30"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	err := v.RegisterValidation("useremail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}

	return v
}

var messages = map[string]string{
	"Name.required":   "Name is required",
	"Name.max":        "Name cannot exceed 50 characters",
	"Email.required":  "Email is required",
	"Email.useremail": "Please enter a valid email",
	"Age.min":         "Age must be positive",
	"Age.max":         "Age must be realistic",
	"City.max":        "City name cannot exceed 30 characters",
}

var jsonNames = map[string]string{
	"Name":  "name",
	"Email": "email",
	"Age":   "age",
	"City":  "city",
}

// Validate checks a complete, already-normalised user. It returns nil or a *ValidationError.
func Validate(u User) error {
	return toValidationError(validate.Struct(document{
		Name:  u.Name,
		Email: u.Email,
		Age:   u.Age,
		City:  u.City,
	}))
}

// ValidatePatch runs the rules only for the fields present in c, the way update validators
// only look at the paths being set.
func ValidatePatch(c Changes) error {
	var doc document
	fields := make([]string, 0, 4)

	if c.Name != nil {
		doc.Name = *c.Name
		fields = append(fields, "Name")
	}
	if c.Email != nil {
		doc.Email = *c.Email
		fields = append(fields, "Email")
	}
	if c.Age != nil {
		doc.Age = c.Age
		fields = append(fields, "Age")
	}
	if c.City != nil {
		doc.City = *c.City
		fields = append(fields, "City")
	}

	if len(fields) == 0 {
		return nil
	}

	return toValidationError(validate.StructPartial(doc, fields...))
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	out := &ValidationError{Violations: make([]Violation, 0, len(fieldErrors))}
	for _, fe := range fieldErrors {
		msg, ok := messages[fe.StructField()+"."+fe.Tag()]
		if !ok {
			msg = "Path `" + jsonNames[fe.StructField()] + "` is invalid"
		}

		out.Violations = append(out.Violations, Violation{
			Field:   jsonNames[fe.StructField()],
			Message: msg,
		})
	}

	return out
}
