package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"taskboard/shared/constant"
	"taskboard/shared/failure"

	val "github.com/go-playground/validator/v10"
)

const megabyte = 1 << 20

var (
	validate *val.Validate

	tagColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

func uploadedFile(field val.FieldLevel) (multipart.FileHeader, bool) {
	file, ok := field.Field().Interface().(multipart.FileHeader)

	return file, ok
}

// hasMimetype checks the declared content type of an upload against the
// space separated list in the tag parameter.
func hasMimetype(field val.FieldLevel) bool {
	file, ok := uploadedFile(field)

	return ok && slices.Contains(strings.Fields(field.Param()), file.Header.Get(constant.RequestHeaderContentType))
}

// fitsFileSize limits an upload to the tag parameter in megabytes.
func fitsFileSize(field val.FieldLevel) bool {
	file, ok := uploadedFile(field)
	if !ok {
		return false
	}

	limit, err := strconv.ParseFloat(field.Param(), 64)

	return err == nil && float64(file.Size) <= limit*megabyte
}

// jsonFieldName reports fields by their JSON name so messages match the request body.
func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")

	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	}

	return name
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	rules := map[string]val.Func{
		"empty":       func(field val.FieldLevel) bool { return field.Field().IsZero() },
		"notblank":    func(field val.FieldLevel) bool { return strings.TrimSpace(field.Field().String()) != "" },
		"tagcolor":    func(field val.FieldLevel) bool { return tagColorPattern.MatchString(field.Field().String()) },
		"mimetypes":   hasMimetype,
		"maxfilesize": fitsFileSize,
	}

	for tag, rule := range rules {
		if err := validate.RegisterValidation(tag, rule); err != nil {
			panic(err)
		}
	}
}

// Validate decodes a JSON body from r into data and validates it. Decoding
// and rule failures are both reported as BadRequest.
func Validate[T any](r io.Reader, data *T) error {
	if err := json.NewDecoder(r).Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	return asFailure(validate.Struct(data))
}

// ValidateVar checks a single value against tag.
func ValidateVar(field any, tag string) error {
	return asFailure(validate.Var(field, tag))
}

func asFailure(err error) error {
	if err == nil {
		return nil
	}

	return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
}
