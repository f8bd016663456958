package services

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"hostel-leave-api/internal/adapters/persistence/models"
	"hostel-leave-api/internal/adapters/persistence/repositories"
	"hostel-leave-api/internal/core/domain"
	"hostel-leave-api/internal/pkg/password"
)

// UserService handles profile management business logic
type UserService struct {
	userRepo repositories.UserRepository
	avatars  AvatarUploader
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, avatars AvatarUploader) *UserService {
	return &UserService{
		userRepo: userRepo,
		avatars:  avatars,
	}
}

// UpdateProfileInput is a partial profile update; nil fields are left untouched
type UpdateProfileInput struct {
	Name                   *string `json:"name"`
	Email                  *string `json:"email"`
	Phone                  *string `json:"phone"`
	AltPhone               *string `json:"altPhone"`
	RoomNumber             *string `json:"roomNumber"`
	DOB                    *string `json:"dob"`
	State                  *string `json:"state"`
	City                   *string `json:"city"`
	EmergencyContactName   *string `json:"emergencyContactName"`
	EmergencyContactNumber *string `json:"emergencyContactNumber"`
	Bio                    *string `json:"bio"`
	Password               *string `json:"password"`
}

// CompleteProfileInput represents the first-login profile completion
type CompleteProfileInput struct {
	RoomNumber  *string `json:"roomNumber"`
	PhoneNumber *string `json:"phoneNumber"`
}

func (s *UserService) getUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetProfile returns the minimal projection used to prefill forms
func (s *UserService) GetProfile(ctx context.Context, id string) (*models.UserSummary, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.ToSummary(), nil
}

// GetOwnProfile returns the extended projection of the caller
func (s *UserService) GetOwnProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.ToProfile(), nil
}

// UpdateProfile merges the provided fields, optionally rehashes the password
// (ignored when shorter than the minimum) and replaces the avatar when a file is given.
func (s *UserService) UpdateProfile(ctx context.Context, id string, input *UpdateProfileInput, avatar io.Reader) (*models.User, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email != "" && email != user.Email {
			existing, err := s.userRepo.GetByEmail(ctx, email)
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return nil, err
			}
			if existing != nil && existing.ID != user.ID {
				return nil, domain.ErrEmailAlreadyExists
			}
			user.Email = email
		}
	}

	merge(&user.Name, input.Name)
	merge(&user.Phone, input.Phone)
	merge(&user.AltPhone, input.AltPhone)
	merge(&user.RoomNumber, input.RoomNumber)
	merge(&user.DOB, input.DOB)
	merge(&user.State, input.State)
	merge(&user.City, input.City)
	merge(&user.EmergencyContactName, input.EmergencyContactName)
	merge(&user.EmergencyContactNumber, input.EmergencyContactNumber)
	merge(&user.Bio, input.Bio)

	if input.Password != nil && password.ValidatePassword(*input.Password) {
		hashedPassword, err := password.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashedPassword
	}

	if avatar != nil {
		if s.avatars == nil {
			return nil, domain.ErrAvatarUploadFailed
		}
		url, err := s.avatars.UploadAvatar(ctx, user.ID, avatar)
		if err != nil {
			log.Printf("❌ Avatar upload failed for %s: %v", user.ID, err)
			return nil, domain.ErrAvatarUploadFailed.Wrap(err)
		}
		user.Avatar = url
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, domain.ErrEmailAlreadyExists
		}
		return nil, err
	}

	log.Printf("✅ Profile updated: %s", user.ID)
	return user, nil
}

// CompleteProfile sets room number and phone for the caller
func (s *UserService) CompleteProfile(ctx context.Context, id string, input *CompleteProfileInput) (*models.User, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	merge(&user.RoomNumber, input.RoomNumber)
	merge(&user.Phone, input.PhoneNumber)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// merge overwrites dst when a value was supplied
func merge(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
