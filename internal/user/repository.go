package user

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

// CreateProfile asks the backend to create the profile of the caller if it does not exist yet.
func (r *repository) CreateProfile(ctx context.Context) error {
	return r.client.Post(ctx, "/users/create-profile", nil, nil)
}

func (r *repository) GetProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := r.client.Get(ctx, "/users/user-profile", &p); err != nil {
		return nil, err
	}
	return &p, nil
}
