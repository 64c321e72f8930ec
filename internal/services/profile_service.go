package services

import (
	"context"

	"portal-united/directory/internal/db/repositories"
	"portal-united/directory/internal/forms"
	"portal-united/directory/internal/logging"
	models "portal-united/directory/internal/models/gorm"
)

type ProfileService struct {
	profiles *repositories.PersonProfileRepository
}

func NewProfileService(profiles *repositories.PersonProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// Profile returns the user's person profile, creating it on first access.
// The first name is seeded from the account, falling back to the username.
func (s *ProfileService) Profile(ctx context.Context, user *models.User) (*models.PersonProfile, error) {
	seed := models.PersonProfile{
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	if seed.FirstName == "" {
		seed.FirstName = user.Username
	}

	profile, created, err := s.profiles.GetOrCreate(ctx, user.ID, seed)
	if err != nil {
		return nil, err
	}
	if created {
		logging.Info("Person profile created", "user_id", user.ID)
	}
	return profile, nil
}

func (s *ProfileService) Update(ctx context.Context, profile *models.PersonProfile, form forms.ProfileForm) error {
	form.Apply(profile)
	return s.profiles.Update(ctx, profile)
}
