package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"social-service/internal/repositories"
)

// errActingAsOther is returned when a body names an acting user other than the caller.
var errActingAsOther = errors.New("cannot act on behalf of another user")

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{repositories.ErrSelfRequest, http.StatusBadRequest, "self_request"},
	{repositories.ErrSelfBlock, http.StatusBadRequest, "self_block"},
	{repositories.ErrSelfShare, http.StatusBadRequest, "self_share"},
	{repositories.ErrRequestForbidden, http.StatusForbidden, "request_forbidden"},
	{repositories.ErrBlocked, http.StatusForbidden, "blocked"},
	{repositories.ErrNotFriends, http.StatusForbidden, "not_friends"},
	{errActingAsOther, http.StatusForbidden, "forbidden"},
	{repositories.ErrNotFound, http.StatusNotFound, "not_found"},
	{repositories.ErrNotBlocked, http.StatusNotFound, "not_blocked"},
	{repositories.ErrDuplicatePending, http.StatusConflict, "duplicate_pending"},
	{repositories.ErrAlreadyBlocked, http.StatusConflict, "already_blocked"},
	{repositories.ErrAlreadyHandled, http.StatusConflict, "already_handled"},
	{repositories.ErrAlreadyFriends, http.StatusConflict, "already_friends"},
}

// classify returns the HTTP status and stable code for err. Unknown errors are
// internal failures.
func classify(err error) (int, string, error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.code, m.err
		}
	}
	return http.StatusInternalServerError, "internal", nil
}

func writeError(c *gin.Context, logger *zap.Logger, err error) {
	status, code, known := classify(err)
	if known == nil {
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", requestID(c)),
			zap.Error(err))
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": known.Error(), "code": code})
}

func writeValidationError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "code": "validation"})
		return
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = validationMessage(fe)
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "code": "validation", "fields": fields})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

func init() {
	// Report json field names instead of Go struct names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	}
}
