package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/worksheetlab/worksheet-service/internal/services"
	"github.com/worksheetlab/worksheet-service/internal/utils"
)

type HandlerManager struct {
	sessionHandler *SessionHandler
	reportHandler  *ReportHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		sessionHandler: NewSessionHandler(serviceManager.Session(), validator, logger),
		reportHandler:  NewReportHandler(serviceManager.Report(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.CreateSession)
			sessions.DELETE("/:id", hm.sessionHandler.ClearSession)

			// Worksheet loading
			sessions.POST("/:id/worksheet", hm.sessionHandler.UploadWorksheet)
			sessions.POST("/:id/worksheet/demo", hm.sessionHandler.LoadDemoWorksheet)
			sessions.GET("/:id/worksheet", hm.sessionHandler.GetWorksheet)

			// Question navigation
			sessions.GET("/:id/questions/current", hm.sessionHandler.GetCurrentQuestion)
			sessions.POST("/:id/answers", hm.sessionHandler.SubmitAnswer)
			sessions.POST("/:id/advance", hm.sessionHandler.Advance)
			sessions.POST("/:id/finish", hm.sessionHandler.FinishEarly)
			sessions.GET("/:id/progress", hm.sessionHandler.GetProgress)

			// Student info
			sessions.PUT("/:id/student", hm.sessionHandler.SaveStudentInfo)

			// Reports
			sessions.GET("/:id/report", hm.reportHandler.DownloadPDF)
			sessions.GET("/:id/report/export", hm.reportHandler.DownloadXLSX)
			sessions.GET("/:id/report/summary", hm.reportHandler.GetSummary)
		}
	}
}
