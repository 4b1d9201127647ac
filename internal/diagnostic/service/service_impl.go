package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	classificationdomain "github.com/smallbiznis/tractionlens/internal/classification/domain"
	"github.com/smallbiznis/tractionlens/internal/clock"
	"github.com/smallbiznis/tractionlens/internal/diagnostic/domain"
	metricdomain "github.com/smallbiznis/tractionlens/internal/metric/domain"
	obscontext "github.com/smallbiznis/tractionlens/internal/observability/context"
	"github.com/smallbiznis/tractionlens/internal/observability/logger"
	referencedomain "github.com/smallbiznis/tractionlens/internal/reference/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log            *zap.Logger
	Store          domain.Store
	Locker         domain.Locker
	Clock          clock.Clock
	Reference      referencedomain.Repository
	Classification classificationdomain.Service
	Metrics        metricdomain.Service
}

type Service struct {
	log            *zap.Logger
	store          domain.Store
	locker         domain.Locker
	clock          clock.Clock
	reference      referencedomain.Repository
	classification classificationdomain.Service
	metrics        metricdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:            p.Log.Named("diagnostic.service"),
		store:          p.Store,
		locker:         p.Locker,
		clock:          p.Clock,
		reference:      p.Reference,
		classification: p.Classification,
		metrics:        p.Metrics,
	}
}

func (s *Service) Start(ctx context.Context) (*domain.Session, error) {
	session := domain.NewSession(ulid.Make().String(), s.clock.Now())
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}

	logger.WithContext(obscontext.WithSessionID(ctx, session.ID), s.log).Info("diagnostic session started")
	return session, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Session, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) SubmitProfile(ctx context.Context, id string, req domain.ProfileRequest) (*domain.ProfileResult, error) {
	saasTypeID, err := s.resolveSaaSType(ctx, req.SaaSType)
	if err != nil {
		return nil, err
	}
	orientationID, err := s.resolveOrientation(ctx, req.Orientation)
	if err != nil {
		return nil, err
	}

	industries, err := s.classification.ListIndustries(ctx, saasTypeID, orientationID)
	if err != nil {
		return nil, err
	}

	result := &domain.ProfileResult{Industries: industries}
	if len(industries) == 0 {
		result.Message = domain.NoValidCombinationMessage
	}

	var (
		industryID *int64
		revenue    *classificationdomain.RevenueResult
	)
	if len(industries) > 0 {
		industryID, err = resolveIndustry(req.Industry, industries)
		if err != nil {
			return nil, err
		}
		revenue, err = s.classification.ClassifyRevenue(ctx, classificationdomain.RevenueRequest{
			Amount:        req.Revenue,
			MonthsExisted: req.MonthsExisted,
		})
		if err != nil {
			return nil, err
		}
		result.Revenue = revenue
	}

	session, err := s.mutate(ctx, id, func(session *domain.Session) error {
		var (
			stageID   int64
			stageName string
			arr       float64
		)
		if revenue != nil {
			arr = revenue.AnnualRevenue
			if primary := revenue.Stage.Primary(); primary != nil {
				stageID, stageName = primary.ID, primary.Name
			}
		}

		if profileChanged(session, saasTypeID, industryID, stageID) {
			session.ResetProgress()
		}

		session.SelectedSaaSType = selectionLabel(req.SaaSType, domain.AllSaaSTypes)
		session.SelectedOrientation = selectionLabel(req.Orientation, domain.AllOrientations)
		session.SelectedIndustry = selectionLabel(req.Industry, domain.AllIndustries)
		session.SaaSTypeID = saasTypeID
		session.OrientationID = orientationID
		session.IndustryID = industryID
		session.MonthsExisted = req.MonthsExisted
		session.RevenueInput = req.Revenue
		session.AnnualRevenue = arr
		session.GrowthStageID = stageID
		session.GrowthStageName = stageName

		result.Qualified = revenue != nil && revenue.Stage.Qualified()
		session.Completed[domain.StepCompanyProfile] = result.Qualified
		if !result.Qualified {
			session.ResetProgress()
			if result.Message == "" && revenue != nil && len(revenue.Warnings) > 0 {
				result.Message = revenue.Warnings[len(revenue.Warnings)-1]
			}
			return nil
		}

		session.MoveTo(domain.StepRevenueMetrics)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Session = session
	s.log.Info("company profile submitted",
		zap.String("session_id", session.ID),
		zap.Int64("growth_stage_id", session.GrowthStageID),
		zap.Bool("qualified", result.Qualified),
	)
	return result, nil
}

func (s *Service) Visit(ctx context.Context, id string, step domain.Step) (*domain.StepView, error) {
	var view *domain.StepView
	_, err := s.mutate(ctx, id, func(session *domain.Session) error {
		view = &domain.StepView{Step: step, RequestedStep: step}
		if !session.CanVisit(step) {
			view.Step = session.FirstIncomplete()
			view.Redirected = true
		}
		session.MoveTo(view.Step)

		if view.Step.IsPillar() {
			sliders, err := s.pillarSliders(ctx, session, view.Step)
			if err != nil {
				return err
			}
			view.Sliders = sliders
			if len(sliders) == 0 {
				view.Message = metricdomain.NoMetricsMessage
			}
		}
		view.Session = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *Service) UpdateValues(ctx context.Context, id string, step domain.Step, values map[string]any) (*domain.StepView, error) {
	if !step.IsPillar() {
		return nil, domain.ErrStepNotEditable
	}

	var view *domain.StepView
	_, err := s.mutate(ctx, id, func(session *domain.Session) error {
		if !session.CanVisit(step) {
			return &domain.LockedError{Requested: step, Redirect: session.FirstIncomplete()}
		}
		if _, err := s.pillarSliders(ctx, session, step); err != nil {
			return err
		}

		parsed := make(map[string]float64, len(values))
		for key, raw := range values {
			_, cached, ok := session.MetricByKey(key)
			if !ok || cached.PillarID != step.PillarID() {
				return &domain.FieldError{Field: key, Err: domain.ErrUnknownMetric}
			}
			v, err := metricdomain.ParseValue(raw)
			if err != nil {
				return &domain.FieldError{Field: key, Err: domain.ErrInvalidValue}
			}
			if v < cached.MinValue || v > cached.MaxValue {
				return &domain.FieldError{Field: key, Err: domain.ErrValueOutOfRange}
			}
			parsed[key] = v
		}
		for key, v := range parsed {
			session.Values[key] = v
		}

		sliders, err := s.pillarSliders(ctx, session, step)
		if err != nil {
			return err
		}
		view = &domain.StepView{
			Step:          step,
			RequestedStep: step,
			Session:       session,
			Sliders:       sliders,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *Service) CompleteStep(ctx context.Context, id string, step domain.Step) (*domain.Session, error) {
	if step.Terminal() {
		return nil, domain.ErrStepNotEditable
	}

	return s.mutate(ctx, id, func(session *domain.Session) error {
		if !session.CanVisit(step) {
			return &domain.LockedError{Requested: step, Redirect: session.FirstIncomplete()}
		}

		switch {
		case step == domain.StepCompanyProfile:
			if !session.Completed[step] {
				return domain.ErrProfileIncomplete
			}
		case step.IsPillar():
			// metrics the visitor never touched count with their defaults
			if _, err := s.pillarSliders(ctx, session, step); err != nil {
				return err
			}
			session.Completed[step] = true
		}

		if next, ok := step.Next(); ok {
			session.MoveTo(next)
		}
		return nil
	})
}

func (s *Service) Back(ctx context.Context, id string) (*domain.Session, error) {
	return s.mutate(ctx, id, func(session *domain.Session) error {
		session.Back()
		return nil
	})
}

func (s *Service) Reset(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// ReportInput returns the session once every step before the report is done.
func (s *Service) ReportInput(ctx context.Context, id string) (*domain.Session, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.CanVisit(domain.StepReport) {
		return nil, &domain.LockedError{Requested: domain.StepReport, Redirect: session.FirstIncomplete()}
	}
	return session, nil
}

func (s *Service) mutate(ctx context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}

	session.UpdatedAt = s.clock.Now()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// pillarSliders resolves the metrics for a pillar step, caches them on the
// session and returns them paired with the current values.
func (s *Service) pillarSliders(ctx context.Context, session *domain.Session, step domain.Step) ([]domain.SliderValue, error) {
	if session.GrowthStageID == 0 {
		return nil, domain.ErrProfileIncomplete
	}

	records, err := s.metrics.GetMetrics(ctx, metricdomain.Query{
		GrowthStageID: session.GrowthStageID,
		PillarID:      step.PillarID(),
		SaaSTypeID:    session.SaaSTypeID,
		IndustryID:    session.IndustryID,
	})
	if err != nil {
		return nil, err
	}

	records = metricdomain.MostSpecific(records)
	sliders := make([]domain.SliderValue, 0, len(records))
	for _, rec := range records {
		session.CacheMetric(rec)

		view := metricdomain.NewSliderView(rec)
		value := session.Values[view.PersistentKey]
		formatted := fmt.Sprint(value)
		if v, err := metricdomain.ParseValue(value); err == nil {
			formatted = rec.Unit.FormatSlider(v)
		}
		sliders = append(sliders, domain.SliderValue{
			SliderView:     view,
			Value:          value,
			FormattedValue: formatted,
		})
	}
	return sliders, nil
}

func (s *Service) resolveSaaSType(ctx context.Context, name string) (*int64, error) {
	if isAll(name, domain.AllSaaSTypes) {
		return nil, nil
	}
	item, err := s.reference.FindSaaSTypeByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrInvalidSaaSType
	}
	return &item.ID, nil
}

func (s *Service) resolveOrientation(ctx context.Context, name string) (*int64, error) {
	if isAll(name, domain.AllOrientations) {
		return nil, nil
	}
	item, err := s.reference.FindOrientationByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrInvalidOrient
	}
	return &item.ID, nil
}

func resolveIndustry(name string, allowed []referencedomain.Industry) (*int64, error) {
	if isAll(name, domain.AllIndustries) {
		return nil, nil
	}
	name = strings.TrimSpace(name)
	for _, industry := range allowed {
		if strings.EqualFold(industry.Name, name) {
			id := industry.ID
			return &id, nil
		}
	}
	return nil, domain.ErrInvalidIndustry
}

func isAll(value, allLabel string) bool {
	value = strings.TrimSpace(value)
	return value == "" || strings.EqualFold(value, allLabel)
}

func selectionLabel(value, allLabel string) string {
	if isAll(value, allLabel) {
		return allLabel
	}
	return strings.TrimSpace(value)
}

func profileChanged(session *domain.Session, saasTypeID, industryID *int64, stageID int64) bool {
	return !sameID(session.SaaSTypeID, saasTypeID) ||
		!sameID(session.IndustryID, industryID) ||
		session.GrowthStageID != stageID
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func validateID(id string) error {
	if _, err := ulid.ParseStrict(strings.TrimSpace(id)); err != nil {
		return domain.ErrInvalidSessionID
	}
	return nil
}
