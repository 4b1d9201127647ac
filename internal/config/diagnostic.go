package config

import (
	"errors"
	"os"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// DiagnosticConfig holds the tunables of the questionnaire and report.
type DiagnosticConfig struct {
	MRRThresholdMonths     int      `mapstructure:"mrrThresholdMonths"`
	MinMonthsExisted       int      `mapstructure:"minMonthsExisted"`
	MaxMonthsExisted       int      `mapstructure:"maxMonthsExisted"`
	AdvisoryRevenueCeiling float64  `mapstructure:"advisoryRevenueCeiling"`
	Framework              string   `mapstructure:"framework"`
	FollowUpDays           int      `mapstructure:"followUpDays"`
	NextSteps              []string `mapstructure:"nextSteps"`
}

func DefaultDiagnosticConfig() DiagnosticConfig {
	return DiagnosticConfig{
		MRRThresholdMonths:     24,
		MinMonthsExisted:       1,
		MaxMonthsExisted:       240,
		AdvisoryRevenueCeiling: 10,
		Framework:              "Adaptive Traction Framework v2.1",
		FollowUpDays:           90,
		NextSteps: []string{
			"Prioritize 3 key actions from the recommendations above",
			"Establish baseline metrics within 7 days",
			"Create a 30/60/90 day plan with measurable milestones",
		},
	}
}

type DiagnosticConfigHolder struct {
	current atomic.Value // holds DiagnosticConfig
}

// NewDiagnosticConfigHolder loads diagnostic.yml and keeps it fresh while the
// process runs. TRACTIONLENS_DIAGNOSTIC_CONFIG points at an explicit file.
func NewDiagnosticConfigHolder(log *zap.Logger) (*DiagnosticConfigHolder, error) {
	return newDiagnosticConfigHolder(log, strings.TrimSpace(os.Getenv("TRACTIONLENS_DIAGNOSTIC_CONFIG")), true)
}

// NewStaticDiagnosticConfigHolder wraps a fixed configuration.
func NewStaticDiagnosticConfigHolder(cfg DiagnosticConfig) *DiagnosticConfigHolder {
	holder := &DiagnosticConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func newDiagnosticConfigHolder(log *zap.Logger, file string, watch bool) (*DiagnosticConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("diagnostic.config")

	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("diagnostic")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/tractionlens")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	cfg := DefaultDiagnosticConfig()
	loaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		loaded = false
	}
	if loaded {
		if err := v.UnmarshalKey("diagnostic", &cfg); err != nil {
			return nil, err
		}
	}
	if err := validateDiagnosticConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticDiagnosticConfigHolder(cfg)
	if !loaded || !watch {
		return holder, nil
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		updated := DefaultDiagnosticConfig()
		if err := v.UnmarshalKey("diagnostic", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validateDiagnosticConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})
	v.WatchConfig()

	return holder, nil
}

func (h *DiagnosticConfigHolder) Get() DiagnosticConfig {
	return h.current.Load().(DiagnosticConfig)
}

func validateDiagnosticConfig(cfg DiagnosticConfig) error {
	if cfg.MRRThresholdMonths < 0 {
		return errors.New("diagnostic.mrrThresholdMonths cannot be negative")
	}
	if cfg.MinMonthsExisted < 1 || cfg.MaxMonthsExisted < cfg.MinMonthsExisted {
		return errors.New("diagnostic months existed bounds are invalid")
	}
	if cfg.AdvisoryRevenueCeiling <= 0 {
		return errors.New("diagnostic.advisoryRevenueCeiling must be positive")
	}
	if cfg.FollowUpDays < 0 {
		return errors.New("diagnostic.followUpDays cannot be negative")
	}
	return nil
}
