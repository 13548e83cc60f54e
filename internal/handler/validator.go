package handler

import (
    "errors"
    "fmt"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"
)

// Validator adapts go-playground/validator to echo.Validator.  Field names
// in messages use the json tag.
type Validator struct {
    v *validator.Validate
}

func NewValidator() *Validator {
    v := validator.New(validator.WithRequiredStructEnabled())
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        return name
    })
    return &Validator{v: v}
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i interface{}) error { return cv.v.Struct(i) }

// bindValid binds the request body into dst and validates it.  The
// returned message is ready to send as a 400.
func bindValid(c echo.Context, dst any) (string, bool) {
    if err := c.Bind(dst); err != nil {
        return "Invalid request body", false
    }
    if err := c.Validate(dst); err != nil {
        return validationMessage(err), false
    }
    return "", true
}

func validationMessage(err error) string {
    var verrs validator.ValidationErrors
    if !errors.As(err, &verrs) || len(verrs) == 0 {
        return "Invalid request body"
    }
    var missing []string
    for _, fe := range verrs {
        if fe.Tag() == "required" {
            missing = append(missing, fe.Field())
        }
    }
    if len(missing) > 0 {
        return "Missing required fields: " + strings.Join(missing, ", ")
    }
    fe := verrs[0]
    switch fe.Tag() {
    case "email":
        return "Invalid email address"
    case "oneof":
        return fmt.Sprintf("Invalid %s. Must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
    case "gt":
        return fmt.Sprintf("Invalid %s: must be greater than %s", fe.Field(), fe.Param())
    case "min", "gte":
        return fmt.Sprintf("Invalid %s: must be at least %s", fe.Field(), fe.Param())
    case "max", "lte":
        return fmt.Sprintf("Invalid %s: must be at most %s", fe.Field(), fe.Param())
    }
    return fmt.Sprintf("Invalid %s", fe.Field())
}
