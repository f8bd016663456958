package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"hostel-leave-api/internal/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ErrAvatarHostDisabled is returned when no avatar host is configured
var ErrAvatarHostDisabled = errors.New("avatar upload is not configured")

// CloudinaryUploader stores avatars on Cloudinary
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryUploader creates an uploader from CLOUDINARY_URL.
// It returns nil (no uploader) when the URL is not set.
func NewCloudinaryUploader(cfg config.CloudinaryConfig) (*CloudinaryUploader, error) {
	if cfg.URL == "" {
		log.Println("⚠️ CLOUDINARY_URL not set, avatar upload disabled")
		return nil, nil
	}

	cld, err := cloudinary.NewFromURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true

	return &CloudinaryUploader{cld: cld, folder: cfg.Folder}, nil
}

// UploadAvatar uploads the image under a per-user public id, replacing any previous avatar
func (u *CloudinaryUploader) UploadAvatar(ctx context.Context, userID string, file io.Reader) (string, error) {
	if u == nil {
		return "", ErrAvatarHostDisabled
	}

	resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       u.folder,
		PublicID:     userID,
		Overwrite:    api.Bool(true),
		ResourceType: "image",
	})
	if err != nil {
		return "", err
	}
	if resp.Error.Message != "" {
		return "", errors.New(resp.Error.Message)
	}
	return resp.SecureURL, nil
}
