package booking

import "context"

type Repository interface {
	Create(ctx context.Context, sel Selection) (*Booking, string, error)
	Confirm(ctx context.Context, paymentIntentID string) (*Booking, error)
	ListMine(ctx context.Context) ([]Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	Cancel(ctx context.Context, id string) error
}
