package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/hirevox/hirevox/internal/api/handlers"
	"github.com/hirevox/hirevox/internal/api/middleware"
)

type Deps struct {
	JWTSecret string

	Auth      *handlers.AuthHandler
	Campaign  *handlers.CampaignHandler
	Interview *handlers.InterviewHandler
	Webhook   *handlers.WebhookHandler
	Monitor   *handlers.MonitorHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Provider callbacks are authenticated by URL knowledge, not JWT
	wh := r.Group("/webhooks/call")
	wh.POST("/start/:interview_id", d.Webhook.CallStart)
	wh.POST("/question/:interview_id", d.Webhook.Question)
	wh.POST("/response/:interview_id/:question_index", d.Webhook.Response)
	wh.POST("/next/:interview_id", d.Webhook.Next)
	wh.POST("/status", d.Webhook.CallStatus)

	r.POST("/auth/login", d.Auth.Login)

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth(d.JWTSecret))
	auth.Use(middleware.RequireRole("recruiter", "admin"))

	// creating accounts is an admin action; the first admin is seeded
	auth.POST("/auth/register", middleware.RequireAdmin(), d.Auth.Register)

	auth.POST("/campaigns", d.Campaign.Create)
	auth.GET("/campaigns", d.Campaign.List)
	auth.GET("/campaigns/:campaign_id", d.Campaign.Get)
	auth.POST("/campaigns/:campaign_id/candidates", d.Campaign.UploadCandidates)
	auth.GET("/campaigns/:campaign_id/candidates", d.Campaign.ListCandidates)

	auth.POST("/candidates/:candidate_id/interview", d.Interview.Start)
	auth.GET("/interviews/:interview_id", d.Interview.Get)
	auth.GET("/interviews/:interview_id/events", d.Interview.Events)

	// WebSocket
	auth.GET("/ws/interviews/:interview_id", d.Monitor.InterviewWS)
}
