package catalog

import (
	"time"

	"sunrisestay/internal/booking"
)

// Quote is the client-side estimate shown before a booking is created. The
// backend price on the created booking is authoritative.
type Quote struct {
	Nights int
	Total  booking.Amount
}

// Bookable reports whether the quoted stay can be submitted.
func (q Quote) Bookable() bool {
	return q.Nights > 0
}

// QuoteStay prices a stay of room between checkIn and checkOut. A stay that
// does not end after it starts quotes zero nights and zero total.
func QuoteStay(room RoomType, checkIn, checkOut time.Time) Quote {
	nights := booking.NightsBetween(checkIn, checkOut)
	if nights <= 0 {
		return Quote{}
	}
	return Quote{
		Nights: nights,
		Total:  booking.Amount(float64(nights) * float64(room.PricePerNight)),
	}
}

// QuoteDates is QuoteStay over form values; unparseable dates quote zero.
func QuoteDates(room RoomType, checkIn, checkOut string) Quote {
	in, err := booking.ParseDate(checkIn)
	if err != nil {
		return Quote{}
	}
	out, err := booking.ParseDate(checkOut)
	if err != nil {
		return Quote{}
	}
	return QuoteStay(room, in.Time, out.Time)
}
