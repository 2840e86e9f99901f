package user

import "context"

type Repository interface {
	CreateProfile(ctx context.Context) error
	GetProfile(ctx context.Context) (*Profile, error)
}
