package catalog

import "context"

type Repository interface {
	ListRoomTypes(ctx context.Context) ([]RoomType, error)
	ListHotelImages(ctx context.Context) ([]HotelImage, error)
}
