package middleware

import (
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/wms-platform/inventory-lifecycle/pkg/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	skuPattern         = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{2,49}$`)
	locationIDPattern  = regexp.MustCompile(`^[A-Z]{1,2}-\d{2}(-[A-Z0-9]+)*$`)
	batchNumberPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{0,31}$`)
)

var classifications = map[string]bool{
	"EXPIRED":             true,
	"CRITICAL":            true,
	"NEAR_EXPIRY":         true,
	"NORMAL":              true,
	"EXTENDED_SHELF_LIFE": true,
}

var movementTypes = map[string]bool{
	"PUTAWAY":       true,
	"RELOCATION":    true,
	"REPLENISHMENT": true,
	"RETURN":        true,
	"REMOVAL":       true,
}

// InitValidator registers the custom validation tags used by request DTOs.
// Safe to call multiple times; registration happens once.
func InitValidator() {
	validateOnce.Do(func() {
		validate = validator.New()

		registerAll(validate)

		if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
			registerAll(engine)
		}
	})
}

func registerAll(v *validator.Validate) {
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	//nolint:errcheck
	v.RegisterValidation("sku", validateSKU)
	//nolint:errcheck
	v.RegisterValidation("location_id", validateLocationID)
	//nolint:errcheck
	v.RegisterValidation("batch_number", validateBatchNumber)
	//nolint:errcheck
	v.RegisterValidation("classification", validateClassification)
	//nolint:errcheck
	v.RegisterValidation("movement_type", validateMovementType)
	//nolint:errcheck
	v.RegisterValidation("safe_string", validateSafeString)
}

func validateSKU(fl validator.FieldLevel) bool {
	return skuPattern.MatchString(fl.Field().String())
}

func validateLocationID(fl validator.FieldLevel) bool {
	return locationIDPattern.MatchString(fl.Field().String())
}

func validateBatchNumber(fl validator.FieldLevel) bool {
	return batchNumberPattern.MatchString(fl.Field().String())
}

func validateClassification(fl validator.FieldLevel) bool {
	return classifications[fl.Field().String()]
}

func validateMovementType(fl validator.FieldLevel) bool {
	return movementTypes[fl.Field().String()]
}

func validateSafeString(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return !strings.ContainsAny(value, "<>\x00") && !strings.Contains(value, "--")
}

// GetValidator returns the shared validator instance
func GetValidator() *validator.Validate {
	InitValidator()
	return validate
}

// BindAndValidate binds the request body into obj and converts validation
// failures into an AppError with field-level details.
func BindAndValidate(c *gin.Context, obj any) *errors.AppError {
	InitValidator()

	if err := c.ShouldBindJSON(obj); err != nil {
		if validationErrs, ok := err.(validator.ValidationErrors); ok {
			return errors.ErrValidationWithFields("request validation failed", formatValidationErrors(validationErrs))
		}
		return errors.ErrBadRequest(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = formatValidationError(fe)
	}
	return fields
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "sku":
		return "must be a valid SKU (uppercase alphanumeric, 3-50 characters)"
	case "location_id":
		return "must be a valid location code (e.g. A-01-02-1)"
	case "batch_number":
		return "must be a valid batch number"
	case "classification":
		return "must be a valid stock classification"
	case "movement_type":
		return "must be a valid movement type"
	case "safe_string":
		return "contains disallowed characters"
	case "uuid":
		return "must be a valid UUID"
	case "datetime":
		return "must be a valid date"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// SanitizeString removes null bytes and trims surrounding whitespace
func SanitizeString(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}

// InputSanitizer sanitizes query parameters before handlers see them
func InputSanitizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Request.URL.Query()
		changed := false
		for key, values := range query {
			for i, value := range values {
				sanitized := SanitizeString(value)
				if sanitized != value {
					query[key][i] = sanitized
					changed = true
				}
			}
		}
		if changed {
			c.Request.URL.RawQuery = query.Encode()
		}
		c.Next()
	}
}

// ContentType rejects non-JSON bodies on mutating requests
func ContentType() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != http.MethodPost && method != http.MethodPut && method != http.MethodPatch {
			c.Next()
			return
		}
		if c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		contentType := c.ContentType()
		if contentType != "application/json" {
			AbortWithAppError(c, errors.NewAppError(
				"UNSUPPORTED_MEDIA_TYPE",
				fmt.Sprintf("content type %q is not supported, use application/json", contentType),
				http.StatusUnsupportedMediaType,
			))
			return
		}
		c.Next()
	}
}
