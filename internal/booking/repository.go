package booking

import (
	"context"
	"errors"
	"net/url"

	"sunrisestay/internal/backend"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrMissingSecret   = errors.New("backend returned a booking without a payment secret")
)

type repository struct {
	client *backend.Client
}

func NewRepository(client *backend.Client) Repository {
	return &repository{client: client}
}

func (r *repository) Create(ctx context.Context, sel Selection) (*Booking, string, error) {
	var resp CreateBookingResponse
	if err := r.client.Post(ctx, "/bookings/create", sel, &resp); err != nil {
		return nil, "", err
	}
	if resp.Booking == nil {
		return nil, "", ErrBookingNotFound
	}
	if resp.ClientSecret == "" {
		return nil, "", ErrMissingSecret
	}
	return resp.Booking, resp.ClientSecret, nil
}

func (r *repository) Confirm(ctx context.Context, paymentIntentID string) (*Booking, error) {
	var resp bookingEnvelope
	req := ConfirmBookingRequest{PaymentIntentID: paymentIntentID}
	if err := r.client.Post(ctx, "/bookings/confirm", req, &resp); err != nil {
		return nil, err
	}
	b := resp.record()
	if b == nil {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

func (r *repository) ListMine(ctx context.Context) ([]Booking, error) {
	var resp bookingListEnvelope
	if err := r.client.Get(ctx, "/bookings/my-bookings", &resp); err != nil {
		return nil, err
	}
	return resp.records(), nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Booking, error) {
	var resp bookingEnvelope
	if err := r.client.Get(ctx, "/bookings/"+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	b := resp.record()
	if b == nil {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

func (r *repository) Cancel(ctx context.Context, id string) error {
	return r.client.Post(ctx, "/bookings/"+url.PathEscape(id)+"/cancel", nil, nil)
}
