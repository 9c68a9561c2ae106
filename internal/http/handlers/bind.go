package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// BindJSON binds and validates the request body. Constraint violations come
// back as 422 with per-field details; a body that is not even JSON is a 400.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err == nil {
		return true
	}

	var validatorErrs validator.ValidationErrors

	if errors.As(err, &validatorErrs) {
		fields := make([]FieldError, 0, len(validatorErrs))

		for _, fieldError := range validatorErrs {
			rule := fieldError.Tag()
			param := fieldError.Param()

			fields = append(fields, FieldError{
				Field:   jsonFieldName(out, fieldError.StructField()),
				Rule:    rule,
				Param:   param,
				Message: validationMessage(rule, param),
			})
		}

		RespondUnprocessable(ctx, "Invalid request body", gin.H{"fields": fields})
		return false
	}

	// a wrong-typed field in otherwise well-formed JSON is a constraint
	// violation, same bucket as a failed validator rule
	var typeErr *json.UnmarshalTypeError

	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}

		RespondUnprocessable(ctx, "Invalid request body", gin.H{"fields": []FieldError{{
			Field:   field,
			Rule:    "type",
			Message: "must be of type " + typeErr.Type.String(),
		}}})
		return false
	}

	RespondBadRequest(ctx, "Invalid request body", gin.H{"json": "invalid_json_syntax"})
	return false
}

// BindQuery is the query-string sibling of BindJSON.
func BindQuery(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindQuery(out)

	if err == nil {
		return true
	}

	var validatorErrs validator.ValidationErrors

	if errors.As(err, &validatorErrs) {
		fields := make([]FieldError, 0, len(validatorErrs))

		for _, fieldError := range validatorErrs {
			rule := fieldError.Tag()
			param := fieldError.Param()

			fields = append(fields, FieldError{
				Field:   fieldError.StructField(),
				Rule:    rule,
				Param:   param,
				Message: validationMessage(rule, param),
			})
		}

		RespondUnprocessable(ctx, "Invalid query parameters", gin.H{"fields": fields})
		return false
	}

	RespondBadRequest(ctx, "Invalid query parameters", gin.H{"reason": err.Error()})
	return false
}

// jsonFieldName maps a struct field back to its json tag. The request
// payloads here are flat structs, so one level is all we need.
func jsonFieldName(out interface{}, structField string) string {
	t := reflect.TypeOf(out)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return structField
	}

	sf, ok := t.FieldByName(structField)
	if !ok {
		return structField
	}

	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return structField
	}

	return name
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
