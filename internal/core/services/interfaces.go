package services

import (
	"context"
	"io"
)

// Note: AuthService implementation is in auth_service.go
// Note: UserService implementation is in user_service.go
// Note: LeaveService implementation is in leave_service.go

// Mailer dispatches password reset emails (implemented by NotificationService)
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, name, resetURL string) error
}

// AvatarUploader stores an avatar image and returns its public URL (implemented by CloudinaryUploader)
type AvatarUploader interface {
	UploadAvatar(ctx context.Context, userID string, file io.Reader) (string, error)
}
