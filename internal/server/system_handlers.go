package server

import (
	"context"
	"net/http"

	"sunrisestay/internal/api"
	"sunrisestay/internal/contact"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Mailer queues contact-form messages and reports the backlog.
type Mailer interface {
	contact.Sender
	QueueLength(ctx context.Context) int64
}

type sessionCounter interface {
	Len() int
}

// Health reports liveness along with the mail backlog and live visitor sessions.
func Health(mailer Mailer, sessions sessionCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := api.HealthResponse{Status: "ok"}
		if mailer != nil {
			resp.EmailQueue = mailer.QueueLength(c.Request.Context())
		}
		if sessions != nil {
			resp.VisitorsNow = sessions.Len()
		}
		c.JSON(http.StatusOK, resp)
	}
}

func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
