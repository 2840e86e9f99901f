package contact

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sunrisestay/internal/logger"
	"sunrisestay/internal/web"
)

const (
	msgSent       = "Message sent successfully! We'll get back to you soon."
	msgWait       = "Please wait before sending another message"
	msgSendFailed = "Failed to send message. Please try again."
)

// Sender delivers a contact message to the hotel.
type Sender interface {
	SendContactMessage(ctx context.Context, name, email, message string) error
}

type Form struct {
	Name    string `form:"name" validate:"required,max=100"`
	Email   string `form:"email" validate:"required,email"`
	Message string `form:"message" validate:"required,max=5000"`
}

type Handler struct {
	cooldown *Cooldown
	sender   Sender
	visitor  func(*gin.Context) string
}

func NewHandler(cooldown *Cooldown, sender Sender, visitor func(*gin.Context) string) *Handler {
	return &Handler{
		cooldown: cooldown,
		sender:   sender,
		visitor:  visitor,
	}
}

func (h *Handler) remaining(c *gin.Context) time.Duration {
	left, err := h.cooldown.Remaining(c.Request.Context(), h.visitor(c))
	if err != nil {
		logger.Warn("failed to read contact cooldown", "error", err)
		return 0
	}
	return left
}

func (h *Handler) render(c *gin.Context, status int, form Form, left time.Duration, errs []string) {
	web.Render(c, status, "contact.html", gin.H{
		"Form":      form,
		"Active":    left > 0,
		"Remaining": FormatRemaining(left),
		"Errors":    errs,
	})
}

// Page renders the contact form with any cooldown left from an earlier visit.
func (h *Handler) Page(c *gin.Context) {
	h.render(c, http.StatusOK, Form{}, h.remaining(c), nil)
}

func (h *Handler) Submit(c *gin.Context) {
	var form Form
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusBadRequest, form, h.remaining(c), []string{"Please fill in all fields"})
		return
	}
	if errs := web.ValidateStruct(form); len(errs) > 0 {
		h.render(c, http.StatusBadRequest, form, h.remaining(c), web.Messages(errs))
		return
	}

	_, err := h.cooldown.Submit(c.Request.Context(), h.visitor(c), func(ctx context.Context) error {
		return h.sender.SendContactMessage(ctx, form.Name, form.Email, form.Message)
	})
	switch {
	case errors.Is(err, ErrCooldownActive):
		h.render(c, http.StatusTooManyRequests, form, h.remaining(c), []string{msgWait})
		return
	case err != nil:
		logger.Error("contact submission failed", "error", err)
		h.render(c, http.StatusBadGateway, form, 0, []string{msgSendFailed})
		return
	}

	web.SetFlash(c, web.FlashSuccess, msgSent)
	c.Redirect(http.StatusSeeOther, "/contact-us")
}

// Countdown streams the remaining cooldown as server-sent events, one per
// second, ending with a "done" event.
func (h *Handler) Countdown(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	err := h.cooldown.Watch(c.Request.Context(), h.visitor(c), func(left time.Duration) {
		event := "tick"
		if left <= 0 {
			event = "done"
		}
		c.SSEvent(event, gin.H{
			"remaining": FormatRemaining(left),
			"seconds":   int(left / time.Second),
		})
		c.Writer.Flush()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("cooldown stream ended", "error", err)
		c.SSEvent("error", gin.H{"message": "countdown unavailable"})
	}
}
