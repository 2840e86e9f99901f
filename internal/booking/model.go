package booking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// CancellationNotice is how far ahead of check-in a booking stops being cancellable.
const CancellationNotice = 24 * time.Hour

const dateLayout = "2006-01-02"

// Date is a calendar date sent by the backend either as YYYY-MM-DD or RFC 3339.
type Date struct {
	time.Time
}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Amount is a monetary value. The backend sends it as a number or a numeric string.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*a = 0
			return nil
		}
		*a = Amount(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*a = Amount(f)
	return nil
}

func (a Amount) String() string {
	return "$" + strconv.FormatFloat(math.Round(float64(a)*100)/100, 'f', 2, 64)
}

type Booking struct {
	ID              string        `json:"id"`
	RoomNumber      string        `json:"room_number"`
	CheckIn         Date          `json:"check_in"`
	CheckOut        Date          `json:"check_out"`
	Adults          int           `json:"adults"`
	Children        int           `json:"children"`
	TotalPrice      Amount        `json:"total_price"`
	Status          Status        `json:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	PaymentIntentID string        `json:"payment_intent_id"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// CanCancel reports whether the guest may still cancel: the booking must be
// pending or confirmed and check-in must be more than 24 hours after now.
func (b Booking) CanCancel(now time.Time) bool {
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return false
	}
	return b.CheckIn.Sub(now) > CancellationNotice
}

// DisplayStatus is the status shown to the guest. A pending booking whose
// payment window has passed is shown as failed; the backend record is not changed.
func (b Booking) DisplayStatus(now time.Time, paymentWindow time.Duration) Status {
	if b.Status == StatusPending && paymentWindow > 0 && !b.CreatedAt.IsZero() &&
		now.Sub(b.CreatedAt) > paymentWindow {
		return StatusFailed
	}
	if b.Status == "" {
		return StatusPending
	}
	return b.Status
}

func (b Booking) PaymentLabel() PaymentStatus {
	if b.PaymentStatus == "" {
		return PaymentUnpaid
	}
	return b.PaymentStatus
}

func (b Booking) Nights() int {
	return NightsBetween(b.CheckIn.Time, b.CheckOut.Time)
}

// NightsBetween rounds the stay up to whole nights; zero when checkOut is not after checkIn.
func NightsBetween(checkIn, checkOut time.Time) int {
	if checkIn.IsZero() || checkOut.IsZero() || !checkOut.After(checkIn) {
		return 0
	}
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

// Selection is what the room detail page submits to create a booking.
type Selection struct {
	RoomTypeName string `json:"room_type_name"`
	CheckIn      string `json:"check_in"`
	CheckOut     string `json:"check_out"`
	Adults       int    `json:"adults"`
	Children     int    `json:"children"`
}

type CreateBookingResponse struct {
	Booking      *Booking `json:"booking"`
	ClientSecret string   `json:"clientSecret"`
}

type ConfirmBookingRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
}

type bookingEnvelope struct {
	Booking *Booking `json:"booking"`
	Data    *Booking `json:"data"`
}

func (e bookingEnvelope) record() *Booking {
	if e.Booking != nil {
		return e.Booking
	}
	return e.Data
}

type bookingListEnvelope struct {
	Bookings []Booking `json:"bookings"`
	Data     []Booking `json:"data"`
}

func (e bookingListEnvelope) records() []Booking {
	if e.Bookings != nil {
		return e.Bookings
	}
	if e.Data != nil {
		return e.Data
	}
	return []Booking{}
}
