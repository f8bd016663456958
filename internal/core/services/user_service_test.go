package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"hostel-leave-api/internal/adapters/persistence/repositories"
	"hostel-leave-api/internal/core/domain"
	"hostel-leave-api/internal/pkg/password"
)

type fakeUploader struct {
	url string
	err error
	got string
}

func (u *fakeUploader) UploadAvatar(_ context.Context, userID string, file io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	b, _ := io.ReadAll(file)
	u.got = string(b)
	return u.url + "/" + userID, nil
}

func strPtr(s string) *string { return &s }

func TestUpdateProfileMergesFields(t *testing.T) {
	store := repositories.NewMemoryStore()
	ctx := context.Background()
	user := createUser(t, store, "Alice", "alice@x.com", "student")
	users := NewUserService(store.Users, nil)

	updated, err := users.UpdateProfile(ctx, user.ID, &UpdateProfileInput{
		City: strPtr("Pune"),
		Bio:  strPtr("  Final year  "),
	}, nil)
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.City != "Pune" || updated.Bio != "Final year" {
		t.Fatalf("merged = %+v", updated)
	}
	if updated.Name != "Alice" || updated.RoomNumber != "B-204" {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
}

func TestUpdateProfilePasswordMinimumLength(t *testing.T) {
	store := repositories.NewMemoryStore()
	ctx := context.Background()
	user := createUser(t, store, "Alice", "alice@x.com", "student")
	users := NewUserService(store.Users, nil)

	if _, err := users.UpdateProfile(ctx, user.ID, &UpdateProfileInput{Password: strPtr("short")}, nil); err != nil {
		t.Fatalf("UpdateProfile(short): %v", err)
	}
	stored, _ := store.Users.GetByID(ctx, user.ID)
	if stored.Password != "x" {
		t.Fatalf("short password should be ignored")
	}

	if _, err := users.UpdateProfile(ctx, user.ID, &UpdateProfileInput{Password: strPtr("longenough1")}, nil); err != nil {
		t.Fatalf("UpdateProfile(long): %v", err)
	}
	stored, _ = store.Users.GetByID(ctx, user.ID)
	if !password.Verify("longenough1", stored.Password) {
		t.Fatalf("password not rehashed")
	}
}

func TestUpdateProfileEmailConflict(t *testing.T) {
	store := repositories.NewMemoryStore()
	ctx := context.Background()
	alice := createUser(t, store, "Alice", "alice@x.com", "student")
	createUser(t, store, "Bob", "bob@x.com", "student")
	users := NewUserService(store.Users, nil)

	_, err := users.UpdateProfile(ctx, alice.ID, &UpdateProfileInput{Email: strPtr("Bob@x.com")}, nil)
	if !errors.Is(err, domain.ErrEmailAlreadyExists) {
		t.Fatalf("err = %v, want ErrEmailAlreadyExists", err)
	}
}

func TestUpdateProfileAvatar(t *testing.T) {
	store := repositories.NewMemoryStore()
	ctx := context.Background()
	user := createUser(t, store, "Alice", "alice@x.com", "student")
	uploader := &fakeUploader{url: "https://cdn.example.com"}
	users := NewUserService(store.Users, uploader)

	updated, err := users.UpdateProfile(ctx, user.ID, &UpdateProfileInput{}, strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Avatar != "https://cdn.example.com/"+user.ID || uploader.got != "png-bytes" {
		t.Fatalf("avatar = %q, uploaded %q", updated.Avatar, uploader.got)
	}

	uploader.err = errors.New("quota exceeded")
	if _, err := users.UpdateProfile(ctx, user.ID, &UpdateProfileInput{}, strings.NewReader("x")); !errors.Is(err, domain.ErrAvatarUploadFailed) {
		t.Fatalf("err = %v, want ErrAvatarUploadFailed", err)
	}
}

func TestProfileProjectionsAndCompleteProfile(t *testing.T) {
	store := repositories.NewMemoryStore()
	ctx := context.Background()
	user := createUser(t, store, "Alice", "alice@x.com", "student")
	users := NewUserService(store.Users, nil)

	if _, err := users.CompleteProfile(ctx, user.ID, &CompleteProfileInput{RoomNumber: strPtr("C-101"), PhoneNumber: strPtr("8888888888")}); err != nil {
		t.Fatalf("CompleteProfile: %v", err)
	}

	summary, err := users.GetProfile(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if summary.RoomNumber != "C-101" || summary.Phone != "8888888888" {
		t.Fatalf("summary = %+v", summary)
	}

	profile, err := users.GetOwnProfile(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetOwnProfile: %v", err)
	}
	if profile.Role != "student" || profile.Email != "alice@x.com" {
		t.Fatalf("profile = %+v", profile)
	}

	if _, err := users.GetProfile(ctx, "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestCronPurgesExpiredResetTokens(t *testing.T) {
	store := repositories.NewMemoryStore()
	ctx := context.Background()
	user := createUser(t, store, "Alice", "alice@x.com", "student")

	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Minute)
	token := "hashed"
	user.ResetToken = &token
	user.ResetTokenExpiry = &expired
	if err := store.Users.Update(ctx, user); err != nil {
		t.Fatalf("Update: %v", err)
	}

	cronService := NewCronService(store.Users, NewLeaveService(store.Leaves, store.Users))
	cronService.now = func() time.Time { return now }

	cleared, err := cronService.PurgeExpiredResetTokens(ctx)
	if err != nil {
		t.Fatalf("PurgeExpiredResetTokens: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("cleared = %d, want 1", cleared)
	}

	stored, _ := store.Users.GetByID(ctx, user.ID)
	if stored.ResetToken != nil || stored.ResetTokenExpiry != nil {
		t.Fatalf("reset token not cleared")
	}
}

func TestNotificationServiceDisabledLogsOnly(t *testing.T) {
	svc := NewNotificationService(testConfig().Mail, 15*time.Minute)
	if svc.IsEnabled() {
		t.Fatalf("expected disabled mailer without credentials")
	}
	if err := svc.SendPasswordReset(context.Background(), "a@x.com", "A", "http://localhost/reset-password/t"); err != nil {
		t.Fatalf("SendPasswordReset: %v", err)
	}
	if got := formatExpiry(15 * time.Minute); got != "15 minutes" {
		t.Fatalf("formatExpiry = %q", got)
	}
}
