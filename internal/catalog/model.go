package catalog

import "sunrisestay/internal/booking"

type RoomType struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	Tagline       string         `json:"tagline"`
	Description   string         `json:"description"`
	MaxAdults     int            `json:"max_adults"`
	MaxChildren   int            `json:"max_children"`
	SizeSqm       float64        `json:"size_sqm"`
	PricePerNight booking.Amount `json:"price_per_night"`
	Image         string         `json:"image"`
	Features      []string       `json:"features"`
	Amenities     []string       `json:"amenities"`
	Inclusions    []string       `json:"inclusions"`
	HouseRules    string         `json:"house_rules"`
	CheckInTime   string         `json:"check_in_time"`
	CheckOutTime  string         `json:"check_out_time"`
}

// AdultLimit is the most adults the room accepts; an unset limit allows one.
func (r RoomType) AdultLimit() int {
	if r.MaxAdults < 1 {
		return 1
	}
	return r.MaxAdults
}

func (r RoomType) ChildLimit() int {
	if r.MaxChildren < 0 {
		return 0
	}
	return r.MaxChildren
}

type HotelImage struct {
	ID       string `json:"id"`
	ImageURL string `json:"image_url"`
}

type roomTypesEnvelope struct {
	Data []RoomType `json:"data"`
}

type hotelImagesEnvelope struct {
	Data []HotelImage `json:"data"`
}
