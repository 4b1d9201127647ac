package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// UnitKind is the closed set of measurement units a metric can carry. It
// drives slider step and format, report formatting and the target suffix.
type UnitKind int

const (
	UnitGeneric UnitKind = iota
	UnitPercentage
	UnitCurrency
	UnitMonths
	UnitDays
	UnitHours
	UnitMilliseconds
)

var ErrNotNumeric = errors.New("value_not_numeric")

var unitNames = map[UnitKind]string{
	UnitGeneric:      "Generic",
	UnitPercentage:   "Percentage",
	UnitCurrency:     "Currency",
	UnitMonths:       "Months",
	UnitDays:         "Days",
	UnitHours:        "Hours",
	UnitMilliseconds: "Milliseconds",
}

var unitAliases = map[string]UnitKind{
	"percentage":   UnitPercentage,
	"percent":      UnitPercentage,
	"%":            UnitPercentage,
	"currency":     UnitCurrency,
	"usd":          UnitCurrency,
	"$":            UnitCurrency,
	"months":       UnitMonths,
	"month":        UnitMonths,
	"days":         UnitDays,
	"day":          UnitDays,
	"hours":        UnitHours,
	"hour":         UnitHours,
	"milliseconds": UnitMilliseconds,
	"millisecond":  UnitMilliseconds,
	"ms":           UnitMilliseconds,
}

// ParseUnit maps a units label to its kind. Unknown labels are Generic.
func ParseUnit(units string) UnitKind {
	if kind, ok := unitAliases[strings.ToLower(strings.TrimSpace(units))]; ok {
		return kind
	}
	return UnitGeneric
}

func (k UnitKind) String() string {
	if name, ok := unitNames[k]; ok {
		return name
	}
	return unitNames[UnitGeneric]
}

func (k UnitKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Step is the slider increment.
func (k UnitKind) Step() float64 {
	switch k {
	case UnitMonths, UnitHours:
		return 1
	case UnitDays:
		return 5
	case UnitMilliseconds:
		return 100
	case UnitCurrency:
		return 1000
	case UnitPercentage:
		return 0.3
	default:
		return 0.5
	}
}

// SliderFormat is the printf pattern a slider renders its value with.
func (k UnitKind) SliderFormat() string {
	switch k {
	case UnitMonths:
		return "%d"
	case UnitDays:
		return "%d days"
	case UnitHours:
		return "%d hours"
	case UnitMilliseconds:
		return "%d ms"
	case UnitCurrency:
		return "$%.2f"
	case UnitPercentage:
		return "%.1f%%"
	default:
		return "%.2f"
	}
}

// FormatSlider renders v with the slider pattern.
func (k UnitKind) FormatSlider(v float64) string {
	switch k {
	case UnitMonths, UnitDays, UnitHours, UnitMilliseconds:
		return fmt.Sprintf(k.SliderFormat(), int64(v))
	default:
		return fmt.Sprintf(k.SliderFormat(), v)
	}
}

// Format renders a stored value for the report. Values that cannot be read
// as a number are printed as-is.
func (k UnitKind) Format(value any) string {
	v, err := ParseValue(value)
	if err != nil {
		return fmt.Sprint(value)
	}

	switch k {
	case UnitPercentage:
		return fmt.Sprintf("%.1f%%", v)
	case UnitCurrency:
		return "$" + humanize.Comma(int64(math.Round(v)))
	case UnitMonths:
		return fmt.Sprintf("%d months", int64(v))
	case UnitDays:
		return fmt.Sprintf("%d days", int64(v))
	case UnitHours:
		return fmt.Sprintf("%d hours", int64(v))
	case UnitMilliseconds:
		return fmt.Sprintf("%d ms", int64(v))
	default:
		return fmt.Sprintf("%.1f", v)
	}
}

// Suffix is appended to a target range. Generic units keep their raw label.
func (k UnitKind) Suffix(raw string) string {
	switch k {
	case UnitPercentage:
		return "%"
	case UnitCurrency:
		return " USD"
	case UnitMonths:
		return " months"
	case UnitDays:
		return " days"
	case UnitHours:
		return " hours"
	case UnitMilliseconds:
		return " ms"
	}
	if raw = strings.TrimSpace(raw); raw != "" {
		return " " + raw
	}
	return ""
}

// TargetRange renders "{lo}-{hi}{suffix}", e.g. "50-65%".
func TargetRange(lo, hi float64, units string) string {
	return fmt.Sprintf("%s-%s%s",
		strconv.FormatFloat(lo, 'f', -1, 64),
		strconv.FormatFloat(hi, 'f', -1, 64),
		ParseUnit(units).Suffix(units),
	)
}

// ParseValue coerces a stored slider value to a float. Strings may carry
// "%", "$" and thousands separators.
func ParseValue(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return checkFinite(v)
	case float32:
		return checkFinite(float64(v))
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNotNumeric, v.String())
		}
		return checkFinite(f)
	case string:
		cleaned := strings.NewReplacer("%", "", "$", "", ",", "").Replace(strings.TrimSpace(v))
		f, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNotNumeric, v)
		}
		return checkFinite(f)
	default:
		return 0, fmt.Errorf("%w: %T", ErrNotNumeric, value)
	}
}

func checkFinite(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %v", ErrNotNumeric, v)
	}
	return v, nil
}
