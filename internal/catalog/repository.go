package catalog

import (
	"context"

	"sunrisestay/internal/backend"
)

type repository struct {
	client *backend.Client
}

func NewRepository(client *backend.Client) Repository {
	return &repository{client: client}
}

func (r *repository) ListRoomTypes(ctx context.Context) ([]RoomType, error) {
	var resp roomTypesEnvelope
	if err := r.client.Get(ctx, "/room-types", &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return []RoomType{}, nil
	}
	return resp.Data, nil
}

func (r *repository) ListHotelImages(ctx context.Context) ([]HotelImage, error) {
	var resp hotelImagesEnvelope
	if err := r.client.Get(ctx, "/hotel-images", &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return []HotelImage{}, nil
	}
	return resp.Data, nil
}
