package utils

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Serubin/AJD-Site/shared/api"
	"github.com/Serubin/AJD-Site/shared/domain"
	"github.com/Serubin/AJD-Site/shared/errors"
	"github.com/Serubin/AJD-Site/shared/logger"
	"github.com/Serubin/AJD-Site/shared/phone"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so field errors line up with the request payload.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("usstate", func(fl validator.FieldLevel) bool {
		return domain.IsUSState(fl.Field().String())
	})
	_ = v.RegisterValidation("canonicalphone", func(fl validator.FieldLevel) bool {
		return phone.IsCanonical(fl.Field().String())
	})
	return v
}

// Validate runs struct validation and converts failures into a per-field
// validation error.
func Validate(body any) error {
	err := validate.Struct(body)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.BadRequest("Invalid request")
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fieldName(fe)
		if _, exists := fields[name]; !exists {
			fields[name] = fieldMessage(name, fe)
		}
	}
	return errors.Validation(fields)
}

// ValidSlug reports whether s has the shape of an issued link slug.
func ValidSlug(s string) bool {
	return validate.Var(s, "required,uuid4") == nil
}

func DecodeValidate(r io.ReadCloser, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	return Validate(body)
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(io.LimitReader(r, maxBodyBytes)).Decode(body); err != nil {
		logger.Log.Debug("request body is not valid json", "error", err)
		return errors.BadRequest("Invalid JSON body")
	}
	return nil
}

// fieldName maps "UpdateViaLinkRequest.states[0]" to "states".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	if i := strings.LastIndex(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	if i := strings.Index(ns, "["); i >= 0 {
		ns = ns[:i]
	}
	return ns
}

func fieldMessage(name string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		switch name {
		case "states":
			return "At least one state is required"
		case "email", "phone":
			return "Email or phone is required"
		}
		return fmt.Sprintf("%s is required", label(name))
	case "min":
		if name == "states" {
			return "At least one state is required"
		}
	case "email":
		return "Enter a valid email address"
	case "canonicalphone":
		return "Enter a valid phone number"
	case "uuid4":
		return "Invalid or expired link"
	case "usstate":
		return fmt.Sprintf("%q is not a US state", fe.Value())
	case "max":
		return fmt.Sprintf("%s is too long", label(name))
	}
	return fmt.Sprintf("%s is invalid", label(name))
}

func label(name string) string {
	switch name {
	case "congressionalDistrict":
		return "Congressional district"
	case "":
		return "Field"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// WriteJSON sends v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode JSON response", "error", err)
	}
}

// WriteErrorAndStatusCode renders err as an api.ErrorResponse. Errors without
// a status are internal: they are logged and replaced by a generic message.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	var e *errors.ErrorWithStatusCode
	if !stderrors.As(err, &e) {
		logger.Log.Error("unhandled error", "error", err)
		WriteJSON(w, http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
		return
	}
	if e.StatusCode >= http.StatusInternalServerError && e.Err != nil {
		logger.Log.Error("request failed", "error", e.Err, "status", e.StatusCode)
	}
	WriteJSON(w, e.StatusCode, api.ErrorResponse{Error: e.Message, Errors: e.Fields})
}
