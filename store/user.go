package store

import (
	"context"
)

// User is the object representing an account.
type User struct {
	ID        int32
	RowStatus RowStatus
	CreatedTs int64
	UpdatedTs int64

	Email    string
	Nickname string
	// City is the profile city used for weather lookups. Empty means the
	// user opted out of weather features.
	City string
}

// FindUser is the find condition for user.
type FindUser struct {
	ID        *int32
	Email     *string
	RowStatus *RowStatus
}

// UpdateUser is the update request for user.
type UpdateUser struct {
	ID        int32
	UpdatedTs *int64
	RowStatus *RowStatus
	Nickname  *string
	City      *string
}

// DeleteUser is the delete request for user.
type DeleteUser struct {
	ID int32
}

// CreateUser creates a new user.
func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	return s.driver.CreateUser(ctx, create)
}

// ListUsers lists users with filter.
func (s *Store) ListUsers(ctx context.Context, find *FindUser) ([]*User, error) {
	return s.driver.ListUsers(ctx, find)
}

// GetUser gets a user matching the find condition.
func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	list, err := s.driver.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateUser updates a user.
func (s *Store) UpdateUser(ctx context.Context, update *UpdateUser) (*User, error) {
	return s.driver.UpdateUser(ctx, update)
}

// DeleteUser deletes a user.
func (s *Store) DeleteUser(ctx context.Context, delete *DeleteUser) error {
	return s.driver.DeleteUser(ctx, delete)
}
