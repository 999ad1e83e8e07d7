package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/HSouheill/noteshive_backend/utils"
)

// ProfileImageFolder groups profile pictures on every image host.
const ProfileImageFolder = "notes-app-profiles"

// ImageHost stores a prepared profile picture and returns its public URL.
type ImageHost interface {
	UploadProfileImage(ctx context.Context, userID string, img *utils.PreparedImage) (string, error)
}

type CloudinaryHost struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryHost(cloudinaryURL string) (*CloudinaryHost, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("configure cloudinary: %w", err)
	}
	return &CloudinaryHost{cld: cld}, nil
}

func (h *CloudinaryHost) UploadProfileImage(ctx context.Context, userID string, img *utils.PreparedImage) (string, error) {
	resp, err := h.cld.Upload.Upload(ctx, bytes.NewReader(img.Data), uploader.UploadParams{
		Folder:         ProfileImageFolder,
		PublicID:       userID + "-" + uuid.NewString(),
		Transformation: "c_fill,g_face,h_200,w_200",
		AllowedFormats: api.CldAPIArray{"jpg", "jpeg", "png", "gif"},
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// GCSHost writes profile pictures to a Google Cloud Storage bucket.
type GCSHost struct {
	client *storage.Client
	bucket string
}

// NewGCSClient uses application default credentials when credsPath is empty.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

func NewGCSHost(client *storage.Client, bucket string) *GCSHost {
	return &GCSHost{client: client, bucket: bucket}
}

func (h *GCSHost) UploadProfileImage(ctx context.Context, userID string, img *utils.PreparedImage) (string, error) {
	if h.bucket == "" {
		return "", errors.New("gcs bucket is not configured")
	}
	objectPath := ProfileObjectPath(userID, img.Ext)

	wc := h.client.Bucket(h.bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = img.ContentType
	wc.ChunkSize = 0 // small files, single request
	if _, err := io.Copy(wc, bytes.NewReader(img.Data)); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("gcs upload: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("gcs upload: %w", err)
	}
	return PublicURL(h.bucket, objectPath), nil
}

// ProfileObjectPath names a new object for a user's picture.
func ProfileObjectPath(userID, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("%s/%s/%s%s", ProfileImageFolder, userID, uuid.NewString(), ext)
}

// PublicURL assumes the bucket grants public read access.
func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}
