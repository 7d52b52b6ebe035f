package validator

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// FieldError reports the first rule a field violated
type FieldError struct {
	Field   string
	Rule    string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + " " + e.Message
}

// ValidateStruct validates a struct based on validate tags.
//
// Supported rules: required, uuid, oneof=a b c, min=N and dive. min counts
// characters of strings and elements of slices. dive validates every element
// of a slice of structs. Field names in errors follow the json tag.
func ValidateStruct(s interface{}) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return errors.New("nil struct")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return errors.New("not a struct")
	}

	return validateStruct(v, "")
}

func validateStruct(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || !field.IsExported() {
			continue
		}

		name := prefix + fieldName(field)
		value := v.Field(i)
		for _, rule := range strings.Split(tag, ",") {
			if rule == "dive" {
				if err := validateElements(value, name); err != nil {
					return err
				}
				continue
			}
			if err := validateField(name, value, rule); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateElements(value reflect.Value, name string) error {
	if value.Kind() != reflect.Slice {
		return nil
	}
	for i := 0; i < value.Len(); i++ {
		elem := reflect.Indirect(value.Index(i))
		if elem.Kind() != reflect.Struct {
			continue
		}
		if err := validateStruct(elem, fmt.Sprintf("%s[%d].", name, i)); err != nil {
			return err
		}
	}
	return nil
}

// validateField validates a single field based on a rule
func validateField(name string, value reflect.Value, rule string) error {
	// optional fields are only checked when set
	if value.Kind() == reflect.Ptr {
		if value.IsNil() {
			if rule == "required" {
				return &FieldError{Field: name, Rule: rule, Message: "is required"}
			}
			return nil
		}
		value = value.Elem()
	}

	key, param, _ := strings.Cut(rule, "=")
	switch key {
	case "required":
		if isZero(value) {
			return &FieldError{Field: name, Rule: key, Message: "is required"}
		}
	case "uuid":
		if value.Kind() == reflect.String && value.String() != "" {
			if _, err := uuid.Parse(value.String()); err != nil {
				return &FieldError{Field: name, Rule: key, Message: "must be a valid UUID"}
			}
		}
	case "oneof":
		if value.Kind() == reflect.String && value.String() != "" {
			allowed := strings.Fields(param)
			if !slices.Contains(allowed, value.String()) {
				return &FieldError{Field: name, Rule: key, Message: "must be one of " + strings.Join(allowed, ", ")}
			}
		}
	case "min":
		minVal, err := strconv.Atoi(param)
		if err != nil {
			return fmt.Errorf("invalid min rule on %s: %w", name, err)
		}
		switch value.Kind() {
		case reflect.String:
			if len([]rune(strings.TrimSpace(value.String()))) < minVal {
				return &FieldError{Field: name, Rule: key, Message: fmt.Sprintf("must be at least %d characters", minVal)}
			}
		case reflect.Slice:
			if value.Len() < minVal {
				return &FieldError{Field: name, Rule: key, Message: fmt.Sprintf("must contain at least %d items", minVal)}
			}
		}
	}
	return nil
}

func fieldName(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// isZero checks if a value is zero/empty
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return v.IsZero()
	}
}

// ValidateUUID reports whether s is a UUID, naming field in the error
func ValidateUUID(field, s string) error {
	if _, err := uuid.Parse(s); err != nil {
		return &FieldError{Field: field, Rule: "uuid", Message: "must be a valid UUID"}
	}
	return nil
}

// SanitizeString removes null bytes and surrounding whitespace
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}
