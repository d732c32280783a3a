package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/internx/internx/internal/domain"
)

// maxBodyBytes caps JSON request bodies. Resumes are plain text and fit well
// below this.
const maxBodyBytes = 1 << 20

var errBodyTooLarge = errors.New("request body too large")

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

// getValidator returns a validator that reports fields by their JSON name.
func getValidator() *validator.Validate {
	vldOnce.Do(func() {
		vld = validator.New(validator.WithRequiredStructEnabled())
		vld.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return vld
}

// readJSONBody enforces the content type and size limit and returns the raw body.
func readJSONBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(ct, "application/json") {
		return nil, domain.Errorf(domain.ErrInvalidArgument, "Content-Type must be application/json")
	}
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, errBodyTooLarge
		}
		return nil, domain.Errorf(domain.ErrInvalidArgument, "could not read request body")
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, domain.Errorf(domain.ErrInvalidArgument, "request body is required")
	}
	return b, nil
}

// decodeAndValidate decodes a JSON object into dst and runs the struct's
// validate tags. The first offending field is reported.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	b, err := readJSONBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return jsonDecodeError(err)
	}
	if err := getValidator().Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fe := ve[0]
			return domain.NewFieldError(fe.Field(), validationMessage(fe))
		}
		return fmt.Errorf("op=http.validate: %w: %w", domain.ErrInvalidArgument, err)
	}
	return nil
}

func jsonDecodeError(err error) error {
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) && te.Field != "" {
		return domain.NewFieldError(te.Field, "must be of type "+jsonTypeName(te.Type))
	}
	return domain.Errorf(domain.ErrInvalidArgument, "request body must be a valid JSON object")
}

func jsonTypeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Slice:
		return "array of " + jsonTypeName(t.Elem())
	case reflect.Int, reflect.Int32, reflect.Int64:
		return "integer"
	case reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	}
	return t.Kind().String()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid", "uuid4":
		return "must be a valid id"
	case "url", "http_url":
		return "must be an http(s) URL"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		if fe.Kind() == reflect.Slice {
			return "must contain at most " + fe.Param() + " entries"
		}
		return "must be at most " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	}
	return "is invalid"
}

// decodePreferencesPatch type-checks every recognised field before anything is
// applied. An explicit null counts as a type error.
func decodePreferencesPatch(raw map[string]json.RawMessage) (domain.PreferencesPatch, error) {
	var p domain.PreferencesPatch
	if v, ok := raw["skills"]; ok {
		s, err := stringList(v)
		if err != nil {
			return domain.PreferencesPatch{}, domain.NewFieldError("skills", "Skills must be a list of strings.")
		}
		p.Skills = s
	}
	if v, ok := raw["interests"]; ok {
		s, err := stringList(v)
		if err != nil {
			return domain.PreferencesPatch{}, domain.NewFieldError("interests", "Interests must be a list of strings.")
		}
		p.Interests = s
	}
	if v, ok := raw["location"]; ok {
		var loc string
		if isNull(v) || json.Unmarshal(v, &loc) != nil {
			return domain.PreferencesPatch{}, domain.NewFieldError("location", "Location must be a string.")
		}
		p.Location = &loc
	}
	return p, nil
}

func stringList(v json.RawMessage) ([]string, error) {
	if isNull(v) {
		return nil, errors.New("null")
	}
	out := []string{}
	if err := json.Unmarshal(v, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func isNull(v json.RawMessage) bool { return bytes.Equal(bytes.TrimSpace(v), []byte("null")) }

// requiredString extracts a required string field from a raw object.
func requiredString(raw map[string]json.RawMessage, field string) (string, error) {
	v, ok := raw[field]
	if !ok || isNull(v) {
		return "", domain.NewFieldError(field, "is required")
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", domain.NewFieldError(field, "must be of type string")
	}
	return s, nil
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, domain.NewFieldError(name, "must be an integer")
	}
	return n, nil
}
