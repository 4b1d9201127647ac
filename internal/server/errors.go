package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	classificationdomain "github.com/smallbiznis/tractionlens/internal/classification/domain"
	diagnosticdomain "github.com/smallbiznis/tractionlens/internal/diagnostic/domain"
	metricdomain "github.com/smallbiznis/tractionlens/internal/metric/domain"
	reportdomain "github.com/smallbiznis/tractionlens/internal/report/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

// validationCodes maps domain sentinels to the field they describe.
var validationCodes = []struct {
	err   error
	field string
}{
	{classificationdomain.ErrInvalidRevenue, "revenue"},
	{classificationdomain.ErrInvalidMonthsExisted, "months_existed"},
	{metricdomain.ErrInvalidGrowthStage, "growth_stage_id"},
	{metricdomain.ErrInvalidPillar, "pillar_id"},
	{diagnosticdomain.ErrInvalidSessionID, "session"},
	{diagnosticdomain.ErrInvalidStep, "step"},
	{diagnosticdomain.ErrStepNotEditable, "step"},
	{diagnosticdomain.ErrInvalidSaaSType, "saas_type"},
	{diagnosticdomain.ErrInvalidOrient, "orientation"},
	{diagnosticdomain.ErrInvalidIndustry, "industry"},
	{diagnosticdomain.ErrUnknownMetric, "values"},
	{diagnosticdomain.ErrInvalidValue, "values"},
	{diagnosticdomain.ErrValueOutOfRange, "values"},
	{reportdomain.ErrInvalidFormat, "format"},
	{ErrInvalidRequest, "request"},
}

var validationMessages = map[string]string{
	"invalid_request":        "invalid request",
	"invalid_revenue":        "revenue must be a non-negative number",
	"invalid_months_existed": "months existed must not be negative",
	"invalid_step":           "unknown step",
	"step_not_editable":      "step does not accept values",
	"unknown_metric":         "metric is not part of this step",
	"invalid_value":          "value must be numeric",
	"value_out_of_range":     "value is outside the slider bounds",
	"invalid_report_format":  "format must be md, html or pdf",
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if field, code, ok := classifyValidation(err); ok {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   field,
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	var locked *diagnosticdomain.LockedError
	switch {
	case errors.As(err, &locked):
		return http.StatusConflict, errorPayload{
			Type:    "step_locked",
			Message: "complete the earlier steps first",
			Errors: []ValidationError{
				{
					Field:   "step",
					Code:    string(locked.Redirect),
					Message: locked.Error(),
				},
			},
		}
	case errors.Is(err, diagnosticdomain.ErrStepLocked):
		return http.StatusConflict, errorPayload{
			Type:    "step_locked",
			Message: "complete the earlier steps first",
		}
	case errors.Is(err, diagnosticdomain.ErrProfileIncomplete),
		errors.Is(err, reportdomain.ErrProfileIncomplete):
		return http.StatusConflict, errorPayload{
			Type:    "profile_incomplete",
			Message: "complete the company profile with a qualifying revenue first",
		}
	case errors.Is(err, diagnosticdomain.ErrSessionBusy):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "the diagnostic session is handling another request, retry shortly",
		}
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case errors.Is(err, diagnosticdomain.ErrSessionNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "diagnostic session not found or expired, start a new diagnostic session",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many export requests, retry shortly",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog reduces an error to the type and code recorded in the
// request log.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func classifyValidation(err error) (field, code string, ok bool) {
	for _, v := range validationCodes {
		if !errors.Is(err, v.err) {
			continue
		}
		field = v.field
		var fErr *diagnosticdomain.FieldError
		if errors.As(err, &fErr) && strings.TrimSpace(fErr.Field) != "" {
			field = fErr.Field
		}
		return field, v.err.Error(), true
	}
	return "", "", false
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, diagnosticdomain.ErrSessionNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorMessage(code string) string {
	if msg, ok := validationMessages[code]; ok {
		return msg
	}
	if strings.HasPrefix(code, "invalid_") {
		return "invalid " + strings.ReplaceAll(strings.TrimPrefix(code, "invalid_"), "_", " ")
	}
	return "invalid value"
}
