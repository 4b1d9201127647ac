package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	reportdomain "github.com/smallbiznis/tractionlens/internal/report/domain"
)

func (s *Server) GetReport(c *gin.Context) {
	report, err := s.buildReport(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

// ExportReport serves the report as a downloadable document.
func (s *Server) ExportReport(format reportdomain.Format) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := s.buildReport(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		doc, err := s.reportSvc.Export(c.Request.Context(), report, format)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
		c.Data(http.StatusOK, doc.ContentType, doc.Body)
	}
}

func (s *Server) buildReport(c *gin.Context) (*reportdomain.Report, error) {
	ctx := c.Request.Context()
	session, err := s.diagnosticSvc.ReportInput(ctx, sessionIDFromContext(c))
	if err != nil {
		return nil, err
	}
	return s.reportSvc.Generate(ctx, session.Profile(), session.Responses())
}
