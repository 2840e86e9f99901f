package booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sunrisestay/internal/backend"
	"sunrisestay/internal/web"
)

var ErrNotCancellable = errors.New("booking can no longer be cancelled")

const (
	msgCancelled      = "Booking cancelled successfully"
	msgNotCancellable = "This booking can no longer be cancelled. Cancellations close 24 hours before check-in."
	msgPaymentFailed  = "Payment failed. Please try again."
)

// StoreResolver returns the booking store of the visitor making the request.
type StoreResolver func(c *gin.Context) *Store

type Handler struct {
	store         StoreResolver
	stripeKey     string
	paymentWindow time.Duration
	now           func() time.Time
}

func NewHandler(store StoreResolver, stripeKey string, paymentWindow time.Duration) *Handler {
	return &Handler{
		store:         store,
		stripeKey:     stripeKey,
		paymentWindow: paymentWindow,
		now:           time.Now,
	}
}

type paymentForm struct {
	PaymentIntentID     string `form:"payment_intent_id"`
	PaymentIntentStatus string `form:"payment_intent_status"`
	Error               string `form:"error"`
}

func (h *Handler) renderPayment(c *gin.Context, status int, snap Snapshot, paymentError string) {
	web.Render(c, status, "payment.html", gin.H{
		"Booking":      snap.Current,
		"Nights":       snap.Current.Nights(),
		"ClientSecret": snap.ClientSecret,
		"StripeKey":    h.stripeKey,
		"PaymentError": paymentError,
	})
}

// Payment shows the payment widget for the booking created on the room page.
func (h *Handler) Payment(c *gin.Context) {
	snap := h.store(c).Snapshot()
	if snap.Current == nil || snap.ClientSecret == "" {
		c.Redirect(http.StatusFound, "/rooms")
		return
	}
	h.renderPayment(c, http.StatusOK, snap, "")
}

// ConfirmPayment receives the outcome of the payment widget. Widget errors
// are displayed and never forwarded to the backend.
func (h *Handler) ConfirmPayment(c *gin.Context) {
	store := h.store(c)
	snap := store.Snapshot()
	if snap.Current == nil || snap.ClientSecret == "" {
		c.Redirect(http.StatusSeeOther, "/rooms")
		return
	}

	var form paymentForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderPayment(c, http.StatusBadRequest, snap, msgPaymentFailed)
		return
	}
	if form.Error != "" {
		h.renderPayment(c, http.StatusUnprocessableEntity, snap, form.Error)
		return
	}
	if form.PaymentIntentID == "" || (form.PaymentIntentStatus != "" && form.PaymentIntentStatus != "succeeded") {
		h.renderPayment(c, http.StatusUnprocessableEntity, snap, msgPaymentFailed)
		return
	}

	bookingID := snap.Current.ID
	if err := store.ConfirmBooking(c.Request.Context(), form.PaymentIntentID); err != nil {
		snap = store.Snapshot()
		h.renderPayment(c, backend.HTTPStatus(err), snap, snap.Error)
		return
	}

	if cur := store.Snapshot().Current; cur != nil && cur.ID != "" {
		bookingID = cur.ID
	}
	c.Redirect(http.StatusSeeOther, "/booking-success/"+bookingID)
}

// Success shows a confirmed booking. Loading the page again fetches the
// booking from the backend, so it survives a reload.
func (h *Handler) Success(c *gin.Context) {
	h.showOutcome(c, "booking_success.html")
}

// Failed shows a cancelled or unpaid booking.
func (h *Handler) Failed(c *gin.Context) {
	h.showOutcome(c, "booking_failed.html")
}

func (h *Handler) showOutcome(c *gin.Context, page string) {
	store := h.store(c)
	store.FetchBookingByID(c.Request.Context(), c.Param("id"))
	snap := store.Snapshot()
	store.ResetBooking()

	if snap.Current == nil {
		web.Render(c, http.StatusNotFound, "booking_not_found.html", gin.H{
			"Error": snap.Error,
		})
		return
	}

	b := snap.Current
	web.Render(c, http.StatusOK, page, gin.H{
		"Booking":   b,
		"Status":    b.DisplayStatus(h.now(), h.paymentWindow),
		"Nights":    b.Nights(),
		"Payment":   b.PaymentLabel(),
		"Cancelled": b.Status == StatusCancelled,
		"Refunded":  b.PaymentStatus == PaymentRefunded,
	})
}

// Filter selects which bookings the bookings page lists.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterConfirmed Filter = "confirmed"
	FilterPending   Filter = "pending"
	FilterCancelled Filter = "cancelled"
)

var filters = []Filter{FilterAll, FilterConfirmed, FilterPending, FilterCancelled}

func parseFilter(s string) Filter {
	for _, f := range filters {
		if string(f) == s {
			return f
		}
	}
	return FilterAll
}

func (f Filter) matches(b Booking) bool {
	return f == FilterAll || string(b.Status) == string(f)
}

type filterTab struct {
	Filter Filter
	Count  int
	Active bool
}

type bookingRow struct {
	Booking
	Display   Status
	Payment   PaymentStatus
	CanCancel bool
}

// FilterCounts counts bookings per filter tab.
func FilterCounts(list []Booking) map[Filter]int {
	counts := make(map[Filter]int, len(filters))
	for _, f := range filters {
		for _, b := range list {
			if f.matches(b) {
				counts[f]++
			}
		}
	}
	return counts
}

// MyBookings lists the visitor's bookings with a status filter and pagination.
func (h *Handler) MyBookings(c *gin.Context) {
	store := h.store(c)
	store.FetchUserBookings(c.Request.Context())
	snap := store.Snapshot()

	filter := parseFilter(c.Query("filter"))
	counts := FilterCounts(snap.Bookings)
	tabs := make([]filterTab, 0, len(filters))
	for _, f := range filters {
		tabs = append(tabs, filterTab{Filter: f, Count: counts[f], Active: f == filter})
	}

	now := h.now()
	var rows []bookingRow
	for _, b := range snap.Bookings {
		if !filter.matches(b) {
			continue
		}
		rows = append(rows, bookingRow{
			Booking:   b,
			Display:   b.DisplayStatus(now, h.paymentWindow),
			Payment:   b.PaymentLabel(),
			CanCancel: b.CanCancel(now),
		})
	}

	page := web.Paginate(len(rows), web.PageParam(c), web.DefaultPerPage)
	status := http.StatusOK
	if snap.Error != "" && len(snap.Bookings) == 0 {
		status = http.StatusBadGateway
	}
	web.Render(c, status, "my_bookings.html", gin.H{
		"Rows":   rows[page.Start:page.End],
		"Tabs":   tabs,
		"Filter": filter,
		"Page":   page,
		"Error":  snap.Error,
	})
	store.ClearError()
}

// Cancel cancels one of the visitor's bookings and returns to the list.
func (h *Handler) Cancel(c *gin.Context) {
	store := h.store(c)
	id := c.Param("id")
	back := "/my-bookings"
	if f := parseFilter(c.PostForm("filter")); f != FilterAll {
		back += "?filter=" + string(f)
	}

	if err := h.checkCancellable(store.Snapshot(), id); err != nil {
		web.SetFlash(c, web.FlashError, msgNotCancellable)
		c.Redirect(http.StatusSeeOther, back)
		return
	}

	if err := store.CancelBooking(c.Request.Context(), id); err != nil {
		web.SetFlash(c, web.FlashError, store.Snapshot().Error)
		store.ClearError()
		c.Redirect(http.StatusSeeOther, back)
		return
	}

	web.SetFlash(c, web.FlashSuccess, msgCancelled)
	c.Redirect(http.StatusSeeOther, back)
}

// checkCancellable refuses bookings the list already shows as not
// cancellable. Bookings missing from the list are left to the backend.
func (h *Handler) checkCancellable(snap Snapshot, id string) error {
	for _, b := range snap.Bookings {
		if b.ID == id && !b.CanCancel(h.now()) {
			return ErrNotCancellable
		}
	}
	return nil
}
