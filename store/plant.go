package store

import (
	"context"
	"strings"
)

// Plant location values.
const (
	LocationIndoorPotted  = "indoor_potted"
	LocationOutdoorPotted = "outdoor_potted"
	LocationOutdoorBed    = "outdoor_bed"
	LocationGreenhouse    = "greenhouse"
	LocationOffice        = "office"
)

// Plant is the object representing a plant in a user's inventory.
type Plant struct {
	ID        int32
	UID       string
	CreatorID int32
	RowStatus RowStatus
	CreatedTs int64
	UpdatedTs int64

	Name     string
	Nickname string
	Species  string
	// Location is one of the Location* constants.
	Location string
	// Light describes the light level, e.g. "full_sun", "partial_shade",
	// "bright_indirect".
	Light    string
	Notes    string
	PhotoURL string
}

// IsOutdoor reports whether the plant lives outdoors and is therefore
// subject to weather-specific reminder adjustments.
func (p *Plant) IsOutdoor() bool {
	return strings.Contains(strings.ToLower(p.Location), "outdoor")
}

// DisplayName returns the nickname when set, otherwise the name.
func (p *Plant) DisplayName() string {
	if p.Nickname != "" {
		return p.Nickname
	}
	return p.Name
}

// FindPlant is the find condition for plant.
type FindPlant struct {
	ID        *int32
	UID       *string
	CreatorID *int32
	RowStatus *RowStatus
}

// UpdatePlant is the update request for plant.
type UpdatePlant struct {
	ID        int32
	UpdatedTs *int64
	RowStatus *RowStatus
	Name      *string
	Nickname  *string
	Species   *string
	Location  *string
	Light     *string
	Notes     *string
	PhotoURL  *string
}

// DeletePlant is the delete request for plant.
type DeletePlant struct {
	ID int32
}

// CreatePlant creates a new plant.
func (s *Store) CreatePlant(ctx context.Context, create *Plant) (*Plant, error) {
	return s.driver.CreatePlant(ctx, create)
}

// ListPlants lists plants with filter.
func (s *Store) ListPlants(ctx context.Context, find *FindPlant) ([]*Plant, error) {
	return s.driver.ListPlants(ctx, find)
}

// GetPlant gets a plant matching the find condition.
func (s *Store) GetPlant(ctx context.Context, find *FindPlant) (*Plant, error) {
	list, err := s.driver.ListPlants(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdatePlant updates a plant.
func (s *Store) UpdatePlant(ctx context.Context, update *UpdatePlant) error {
	return s.driver.UpdatePlant(ctx, update)
}

// DeletePlant deletes a plant.
func (s *Store) DeletePlant(ctx context.Context, delete *DeletePlant) error {
	return s.driver.DeletePlant(ctx, delete)
}
