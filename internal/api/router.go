package api

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine serving the session API and the event stream
func NewRouter(h *Handler, hub *SSEHub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "streams": hub.StreamCounts()})
	})

	api := r.Group("/api")
	{
		api.GET("/events", hub.HandleSSE)

		sessions := api.Group("/sessions")
		sessions.POST("", h.CreateSession)
		sessions.GET("", h.ListSessions)
		sessions.GET("/:id", h.GetSession)
		sessions.DELETE("/:id", h.DeleteSession)
		sessions.POST("/:id/step", h.StepSession)
		sessions.POST("/:id/run", h.RunSession)
		sessions.POST("/:id/stop", h.StopSession)
		sessions.POST("/:id/reset", h.ResetSession)
		sessions.GET("/:id/data", h.GetData)
		sessions.GET("/:id/trace", h.GetTrace)
		sessions.GET("/:id/posterior", h.GetPosteriors)
		sessions.GET("/:id/posterior/:param", h.GetPosterior)
		sessions.GET("/:id/curve", h.GetCurve)
	}

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		if c.FullPath() == "/api/events" {
			return
		}
		log.Printf("[API] %s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(started))
	}
}
