package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	diagnosticdomain "github.com/smallbiznis/tractionlens/internal/diagnostic/domain"
)

type updateValuesRequest struct {
	Values map[string]any `json:"values"`
}

func (s *Server) StartDiagnostic(c *gin.Context) {
	session, err := s.diagnosticSvc.Start(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, session.ID)
	c.JSON(http.StatusCreated, gin.H{"data": session})
}

func (s *Server) GetDiagnostic(c *gin.Context) {
	session, err := s.diagnosticSvc.Get(c.Request.Context(), sessionIDFromContext(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": session})
}

func (s *Server) SubmitProfile(c *gin.Context) {
	var req diagnosticdomain.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.diagnosticSvc.SubmitProfile(c.Request.Context(), sessionIDFromContext(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, result.Session.ID)
	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) VisitStep(c *gin.Context) {
	step, err := diagnosticdomain.ParseStep(c.Param("step"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	view, err := s.diagnosticSvc.Visit(c.Request.Context(), sessionIDFromContext(c), step)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (s *Server) UpdateStepValues(c *gin.Context) {
	step, err := diagnosticdomain.ParseStep(c.Param("step"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Values) == 0 {
		AbortWithError(c, newValidationError("values", "invalid_request", "values are required"))
		return
	}

	view, err := s.diagnosticSvc.UpdateValues(c.Request.Context(), sessionIDFromContext(c), step, req.Values)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (s *Server) CompleteStep(c *gin.Context) {
	step, err := diagnosticdomain.ParseStep(c.Param("step"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	session, err := s.diagnosticSvc.CompleteStep(c.Request.Context(), sessionIDFromContext(c), step)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": session})
}

func (s *Server) BackDiagnostic(c *gin.Context) {
	session, err := s.diagnosticSvc.Back(c.Request.Context(), sessionIDFromContext(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": session})
}

func (s *Server) ResetDiagnostic(c *gin.Context) {
	if err := s.diagnosticSvc.Reset(c.Request.Context(), sessionIDFromContext(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Clear(c)
	c.Status(http.StatusNoContent)
}
