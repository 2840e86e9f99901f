package booking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sunrisestay/internal/backend"
	"sunrisestay/internal/web"
)

var handlerNow = time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

type handlerFixture struct {
	router *gin.Engine
	repo   *MockRepository
	store  *Store
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &handlerFixture{repo: new(MockRepository)}
	f.store = NewStore(f.repo, time.Second)
	t.Cleanup(f.store.Wait)

	h := NewHandler(func(*gin.Context) *Store { return f.store }, "pk_test_123", 30*time.Minute)
	h.now = func() time.Time { return handlerNow }

	f.router = gin.New()
	f.router.SetHTMLTemplate(web.Templates())
	f.router.GET("/payment", h.Payment)
	f.router.POST("/payment/confirm", h.ConfirmPayment)
	f.router.GET("/booking-success/:id", h.Success)
	f.router.GET("/booking-failed/:id", h.Failed)
	f.router.GET("/my-bookings", h.MyBookings)
	f.router.POST("/my-bookings/:id/cancel", h.Cancel)
	return f
}

// withPendingBooking puts the visitor where the room page leaves them: a
// pending booking and its payment secret.
func (f *handlerFixture) withPendingBooking(t *testing.T) {
	t.Helper()
	f.repo.On("Create", mock.Anything, oceanSuiteSelection()).Return(pendingOceanSuite(t), "pi_secret_1", nil).Once()
	require.NoError(t, f.store.CreateBooking(context.Background(), oceanSuiteSelection()))
}

func (f *handlerFixture) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func listed(t *testing.T, id string, status Status, checkIn string) Booking {
	in := mustDate(t, checkIn)
	return Booking{
		ID:            id,
		RoomNumber:    "301",
		CheckIn:       in,
		CheckOut:      Date{in.AddDate(0, 0, 2)},
		Adults:        2,
		TotalPrice:    200,
		Status:        status,
		PaymentStatus: PaymentPaid,
	}
}

func TestHandler_PaymentWithoutBookingRedirects(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(http.MethodGet, "/payment", nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/rooms", w.Header().Get("Location"))
}

func TestHandler_PaymentRendersWidget(t *testing.T) {
	f := newHandlerFixture(t)
	f.withPendingBooking(t)

	w := f.do(http.MethodGet, "/payment", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "pk_test_123")
	assert.Contains(t, body, "pi_secret_1")
	assert.Contains(t, body, "$300.00")
	assert.Contains(t, body, "#BK_001")
}

func TestHandler_ConfirmPayment_WidgetErrorIsNotForwarded(t *testing.T) {
	f := newHandlerFixture(t)
	f.withPendingBooking(t)

	w := f.do(http.MethodPost, "/payment/confirm", url.Values{"error": {"Your card was declined."}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Your card was declined.")
	f.repo.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
	assert.NotNil(t, f.store.Snapshot().Current)
}

func TestHandler_ConfirmPayment_UnsuccessfulIntent(t *testing.T) {
	f := newHandlerFixture(t)
	f.withPendingBooking(t)

	w := f.do(http.MethodPost, "/payment/confirm", url.Values{
		"payment_intent_id":     {"pi_1"},
		"payment_intent_status": {"requires_payment_method"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), msgPaymentFailed)
	f.repo.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
}

func TestHandler_ConfirmPayment_Success(t *testing.T) {
	f := newHandlerFixture(t)
	f.withPendingBooking(t)

	confirmed := pendingOceanSuite(t)
	confirmed.ID = ""
	confirmed.Status = StatusConfirmed
	confirmed.PaymentStatus = PaymentPaid
	f.repo.On("Confirm", mock.Anything, "pi_1").Return(confirmed, nil).Once()
	f.repo.On("ListMine", mock.Anything).Return([]Booking{}, nil).Once()

	w := f.do(http.MethodPost, "/payment/confirm", url.Values{
		"payment_intent_id":     {"pi_1"},
		"payment_intent_status": {"succeeded"},
	})
	f.store.Wait()

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/booking-success/bk_001", w.Header().Get("Location"))
	f.repo.AssertExpectations(t)
}

func TestHandler_ConfirmPayment_BackendFailure(t *testing.T) {
	f := newHandlerFixture(t)
	f.withPendingBooking(t)
	f.repo.On("Confirm", mock.Anything, "pi_1").
		Return(nil, &backend.Error{Kind: backend.KindServer, Status: http.StatusInternalServerError, Message: "Payment provider unavailable"}).Once()

	w := f.do(http.MethodPost, "/payment/confirm", url.Values{"payment_intent_id": {"pi_1"}})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Payment provider unavailable")
	assert.Equal(t, StatusPending, f.store.Snapshot().Current.Status)
}

func TestHandler_SuccessPageLoadsAndResets(t *testing.T) {
	f := newHandlerFixture(t)
	confirmed := pendingOceanSuite(t)
	confirmed.Status = StatusConfirmed
	confirmed.PaymentStatus = PaymentPaid
	f.repo.On("GetByID", mock.Anything, "bk_001").Return(confirmed, nil).Once()

	w := f.do(http.MethodGet, "/booking-success/bk_001", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Booking confirmed!")
	assert.Contains(t, body, "#BK_001")
	assert.Contains(t, body, "$300.00")
	assert.Nil(t, f.store.Snapshot().Current)
}

func TestHandler_SuccessPageNotFound(t *testing.T) {
	f := newHandlerFixture(t)
	f.repo.On("GetByID", mock.Anything, "missing").
		Return(nil, &backend.Error{Kind: backend.KindNotFound, Status: http.StatusNotFound, Message: "Booking not found"}).Once()

	w := f.do(http.MethodGet, "/booking-success/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Booking not found")
}

func TestHandler_FailedPageCopy(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		payment  PaymentStatus
		wantBody []string
	}{
		{"cancelled and refunded", StatusCancelled, PaymentRefunded, []string{"Booking Cancelled", "payment refunded"}},
		{"cancelled unpaid", StatusCancelled, PaymentUnpaid, []string{"Booking Cancelled"}},
		{"payment failed", StatusPending, PaymentUnpaid, []string{"Booking Failed", "No payment was taken"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t)
			b := pendingOceanSuite(t)
			b.Status = tt.status
			b.PaymentStatus = tt.payment
			f.repo.On("GetByID", mock.Anything, "bk_001").Return(b, nil).Once()

			w := f.do(http.MethodGet, "/booking-failed/bk_001", nil)

			require.Equal(t, http.StatusOK, w.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, w.Body.String(), want)
			}
		})
	}
}

func TestHandler_MyBookingsFilter(t *testing.T) {
	f := newHandlerFixture(t)
	f.repo.On("ListMine", mock.Anything).Return([]Booking{
		listed(t, "confirmed-1", StatusConfirmed, "2025-06-01"),
		listed(t, "pending-1", StatusPending, "2025-06-10"),
		listed(t, "cancelled-1", StatusCancelled, "2025-07-01"),
	}, nil)

	w := f.do(http.MethodGet, "/my-bookings?filter=confirmed", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "All (3)")
	assert.Contains(t, body, "Confirmed (1)")
	assert.Contains(t, body, "Pending (1)")
	assert.Contains(t, body, "Cancelled (1)")
	assert.Contains(t, body, "#CONFIRME")
	assert.NotContains(t, body, "#PENDING-")
	assert.NotContains(t, body, "#CANCELLE")
}

func TestHandler_MyBookingsPaginates(t *testing.T) {
	f := newHandlerFixture(t)
	var list []Booking
	for i := 1; i <= 7; i++ {
		list = append(list, listed(t, fmt.Sprintf("bk-%d", i), StatusConfirmed, "2025-06-01"))
	}
	f.repo.On("ListMine", mock.Anything).Return(list, nil)

	w := f.do(http.MethodGet, "/my-bookings?page=2", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Page 2 of 2")
	assert.Contains(t, body, "#BK-6")
	assert.Contains(t, body, "#BK-7")
	assert.NotContains(t, body, "#BK-5")
}

func TestHandler_MyBookingsFetchFailure(t *testing.T) {
	f := newHandlerFixture(t)
	f.repo.On("ListMine", mock.Anything).Return(nil, errors.New("connection refused"))

	w := f.do(http.MethodGet, "/my-bookings", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), msgListFailed)
	assert.Empty(t, f.store.Snapshot().Error)
}

func TestHandler_CancelWithin24HoursIsRefused(t *testing.T) {
	f := newHandlerFixture(t)
	f.repo.On("ListMine", mock.Anything).Return([]Booking{
		listed(t, "tomorrow", StatusConfirmed, "2025-05-21"),
	}, nil)
	f.do(http.MethodGet, "/my-bookings", nil)

	w := f.do(http.MethodPost, "/my-bookings/tomorrow/cancel", url.Values{"filter": {"all"}})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/my-bookings", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), "sunrisestay_flash=")
	f.repo.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
	assert.Equal(t, StatusConfirmed, f.store.Snapshot().Bookings[0].Status)
}

func TestHandler_CancelKeepsFilter(t *testing.T) {
	f := newHandlerFixture(t)
	f.repo.On("ListMine", mock.Anything).Return([]Booking{
		listed(t, "later", StatusConfirmed, "2025-06-01"),
		listed(t, "other", StatusConfirmed, "2025-06-05"),
	}, nil)
	f.repo.On("Cancel", mock.Anything, "later").Return(nil).Once()
	f.do(http.MethodGet, "/my-bookings", nil)

	w := f.do(http.MethodPost, "/my-bookings/later/cancel", url.Values{"filter": {"confirmed"}})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/my-bookings?filter=confirmed", w.Header().Get("Location"))

	snap := f.store.Snapshot()
	assert.Equal(t, StatusCancelled, snap.Bookings[0].Status)
	assert.Equal(t, StatusConfirmed, snap.Bookings[1].Status)
	f.repo.AssertExpectations(t)
}

func TestHandler_CancelFailure(t *testing.T) {
	f := newHandlerFixture(t)
	f.repo.On("Cancel", mock.Anything, "bk-9").
		Return(&backend.Error{Kind: backend.KindValidation, Status: http.StatusBadRequest, Message: "Booking already cancelled"}).Once()

	w := f.do(http.MethodPost, "/my-bookings/bk-9/cancel", nil)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/my-bookings", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), "sunrisestay_flash=")
	assert.Empty(t, f.store.Snapshot().Error)
}

func TestFilterCounts(t *testing.T) {
	counts := FilterCounts([]Booking{
		{Status: StatusConfirmed},
		{Status: StatusConfirmed},
		{Status: StatusPending},
		{Status: StatusFailed},
	})

	assert.Equal(t, 4, counts[FilterAll])
	assert.Equal(t, 2, counts[FilterConfirmed])
	assert.Equal(t, 1, counts[FilterPending])
	assert.Equal(t, 0, counts[FilterCancelled])
}
