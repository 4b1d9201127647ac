package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	classificationdomain "github.com/smallbiznis/tractionlens/internal/classification/domain"
	diagnosticdomain "github.com/smallbiznis/tractionlens/internal/diagnostic/domain"
	metricdomain "github.com/smallbiznis/tractionlens/internal/metric/domain"
)

func (s *Server) ListSaaSTypes(c *gin.Context) {
	items, err := s.refrepo.ListSaaSTypes(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) ListOrientations(c *gin.Context) {
	items, err := s.refrepo.ListOrientations(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

// ListIndustries returns every industry, or only those mapped to the pair
// when both saas_type_id and orientation_id are given.
func (s *Server) ListIndustries(c *gin.Context) {
	saasTypeID, err := parseOptionalInt64(c.Query("saas_type_id"))
	if err != nil {
		AbortWithError(c, newValidationError("saas_type_id", "invalid_saas_type", "invalid saas type"))
		return
	}
	orientationID, err := parseOptionalInt64(c.Query("orientation_id"))
	if err != nil {
		AbortWithError(c, newValidationError("orientation_id", "invalid_orientation", "invalid orientation"))
		return
	}
	if (saasTypeID == nil) != (orientationID == nil) {
		AbortWithError(c, newValidationError("orientation_id", "invalid_request", "saas_type_id and orientation_id go together"))
		return
	}

	items, err := s.classificationSvc.ListIndustries(c.Request.Context(), saasTypeID, orientationID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := gin.H{"data": items}
	if len(items) == 0 {
		resp["message"] = diagnosticdomain.NoValidCombinationMessage
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListGrowthStages(c *gin.Context) {
	items, err := s.refrepo.ListGrowthStages(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) ResolveGrowthStage(c *gin.Context) {
	revenue, err := parseFloat(c.Query("revenue"))
	if err != nil {
		AbortWithError(c, classificationdomain.ErrInvalidRevenue)
		return
	}

	result, err := s.classificationSvc.DetermineGrowthStage(c.Request.Context(), revenue)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) ListPillars(c *gin.Context) {
	items, err := s.refrepo.ListPillars(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) ListMetrics(c *gin.Context) {
	stageID, err := parseRequiredInt64(c.Query("growth_stage_id"))
	if err != nil {
		AbortWithError(c, metricdomain.ErrInvalidGrowthStage)
		return
	}
	pillarID, err := parseRequiredInt64(c.Query("pillar_id"))
	if err != nil {
		AbortWithError(c, metricdomain.ErrInvalidPillar)
		return
	}
	saasTypeID, err := parseOptionalInt64(c.Query("saas_type_id"))
	if err != nil {
		AbortWithError(c, newValidationError("saas_type_id", "invalid_saas_type", "invalid saas type"))
		return
	}
	industryID, err := parseOptionalInt64(c.Query("industry_id"))
	if err != nil {
		AbortWithError(c, newValidationError("industry_id", "invalid_industry", "invalid industry"))
		return
	}

	sliders, err := s.metricSvc.GetSliders(c.Request.Context(), metricdomain.Query{
		GrowthStageID: stageID,
		PillarID:      pillarID,
		SaaSTypeID:    saasTypeID,
		IndustryID:    industryID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := gin.H{"data": sliders}
	if len(sliders) == 0 {
		resp["message"] = metricdomain.NoMetricsMessage
	}
	c.JSON(http.StatusOK, resp)
}
