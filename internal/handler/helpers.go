package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"stockwise/internal/apierror"
	"stockwise/internal/middleware"
	"stockwise/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// validator panics on decimal.Decimal ("Bad field type") unless it is
	// mapped to a numeric value first.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Report fields under the names clients send: json for bodies, form for
	// query strings.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}

// bindAndValidate binds the JSON body and runs go-playground/validator tags.
// Returns false after writing the error response; the caller must return.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

// bindQuery binds query parameters into filter and validates it.
func bindQuery(c *gin.Context, filter interface{}) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	return validateStruct(c, filter)
}

func validateStruct(c *gin.Context, v interface{}) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fieldPath(fe)] = fieldMessage(fe)
	}
	c.JSON(http.StatusUnprocessableEntity, apierror.NewValidationDetail(service.ValidationMessage, fields))
	return false
}

// fieldPath drops the struct name from the namespace, so a nested error
// reads "items[0].quantity" like the ones the services report.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	isText := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		if isText {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Ensure this list has at least %s items.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		if isText {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Select one of: %s.", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("Invalid value (%s).", fe.Tag())
	}
}

// parseID reads the :id path parameter.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return 0, false
	}
	return uint(id), true
}

// respondError maps service errors to HTTP responses. Unknown errors are
// logged and answered with fallback so no SQL text reaches the client.
func respondError(c *gin.Context, err error, fallback string) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidationDetail(ve.Message, ve.Fields))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New("Not found"))
	case errors.Is(err, service.ErrProductHasSales):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	default:
		log.Error().Err(err).
			Str("path", c.FullPath()).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Msg(fallback)
		c.JSON(http.StatusInternalServerError, apierror.New(fallback))
	}
}
