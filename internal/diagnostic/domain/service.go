package domain

import (
	"context"
	"errors"
	"fmt"

	classificationdomain "github.com/smallbiznis/tractionlens/internal/classification/domain"
	metricdomain "github.com/smallbiznis/tractionlens/internal/metric/domain"
	referencedomain "github.com/smallbiznis/tractionlens/internal/reference/domain"
)

// Store persists sessions between requests.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}

type Service interface {
	Start(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	SubmitProfile(ctx context.Context, id string, req ProfileRequest) (*ProfileResult, error)
	Visit(ctx context.Context, id string, step Step) (*StepView, error)
	UpdateValues(ctx context.Context, id string, step Step, values map[string]any) (*StepView, error)
	CompleteStep(ctx context.Context, id string, step Step) (*Session, error)
	Back(ctx context.Context, id string) (*Session, error)
	Reset(ctx context.Context, id string) error
	ReportInput(ctx context.Context, id string) (*Session, error)
}

type ProfileRequest struct {
	SaaSType      string  `json:"saas_type"`
	Orientation   string  `json:"orientation"`
	Industry      string  `json:"industry"`
	MonthsExisted int     `json:"months_existed"`
	Revenue       float64 `json:"revenue"`
}

// NoValidCombinationMessage is shown when a SaaS type and orientation pair
// has no industries.
const NoValidCombinationMessage = "no valid combination"

type ProfileResult struct {
	Session    *Session                            `json:"session"`
	Revenue    *classificationdomain.RevenueResult `json:"revenue,omitempty"`
	Industries []referencedomain.Industry          `json:"industries"`
	Qualified  bool                                `json:"qualified"`
	Message    string                              `json:"message,omitempty"`
}

// StepView is what a visitor sees after navigating to a step.
type StepView struct {
	Step          Step          `json:"step"`
	RequestedStep Step          `json:"requested_step"`
	Redirected    bool          `json:"redirected"`
	Session       *Session      `json:"session"`
	Sliders       []SliderValue `json:"sliders,omitempty"`
	Message       string        `json:"message,omitempty"`
}

// SliderValue pairs a metric slider with the visitor's current value.
type SliderValue struct {
	metricdomain.SliderView
	Value          any    `json:"value"`
	FormattedValue string `json:"formatted_value"`
}

var (
	ErrSessionNotFound   = errors.New("session_not_found")
	ErrInvalidSessionID  = errors.New("invalid_session_id")
	ErrInvalidStep       = errors.New("invalid_step")
	ErrInvalidSaaSType   = errors.New("invalid_saas_type")
	ErrInvalidOrient     = errors.New("invalid_orientation")
	ErrInvalidIndustry   = errors.New("invalid_industry")
	ErrProfileIncomplete = errors.New("profile_incomplete")
	ErrUnknownMetric     = errors.New("unknown_metric")
	ErrInvalidValue      = errors.New("invalid_value")
	ErrValueOutOfRange   = errors.New("value_out_of_range")
	ErrStepLocked        = errors.New("step_locked")
	ErrStepNotEditable   = errors.New("step_not_editable")
)

// LockedError reports a step whose prerequisites are incomplete along with
// the step the visitor should be sent to.
type LockedError struct {
	Requested Step
	Redirect  Step
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("step %s is locked, complete %s first", e.Requested, e.Redirect)
}

func (e *LockedError) Is(target error) bool {
	return target == ErrStepLocked
}

// FieldError ties a validation failure to the value key that caused it.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Err.Error() + ": " + e.Field
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Locker serializes writes to a single session.
type Locker interface {
	Lock(ctx context.Context, id string) (unlock func(), err error)
}

var ErrSessionBusy = errors.New("session_busy")
