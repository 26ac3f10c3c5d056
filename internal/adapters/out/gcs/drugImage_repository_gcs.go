// internal/adapters/out/gcs/drugImage_repository_gcs.go
package gcs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
)

// DrugImageRepositoryGCS stores drug form images in a GCS bucket and returns
// the public URL recorded on the drug document.
type DrugImageRepositoryGCS struct {
	Client *storage.Client
	Bucket string
}

func NewDrugImageRepositoryGCS(client *storage.Client, bucket string) *DrugImageRepositoryGCS {
	return &DrugImageRepositoryGCS{Client: client, Bucket: bucket}
}

// Upload writes the image bytes for one form of a drug.
// Object layout: drugs/<drugId>/forms/<index><ext>
func (r *DrugImageRepositoryGCS) Upload(ctx context.Context, drugID string, formIndex int, data []byte, contentType string) (string, error) {
	if r == nil || r.Client == nil {
		return "", errors.New("drug_image_repository_gcs: storage client is nil")
	}

	bucket := strings.TrimSpace(r.Bucket)
	if bucket == "" {
		return "", errors.New("drug_image_repository_gcs: bucket is empty")
	}

	did := strings.TrimSpace(drugID)
	if did == "" {
		return "", errors.New("drug_image_repository_gcs: drugID is empty")
	}
	if formIndex < 0 {
		return "", errors.New("drug_image_repository_gcs: formIndex is negative")
	}
	if len(data) == 0 {
		return "", errors.New("drug_image_repository_gcs: image data is empty")
	}

	objectPath := fmt.Sprintf("drugs/%s/forms/%d%s", did, formIndex, extFromContentType(contentType))

	w := r.Client.Bucket(bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("drug_image_repository_gcs: write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("drug_image_repository_gcs: close failed: %w", err)
	}

	return publicURL(bucket, objectPath), nil
}

// publicURL builds a public GCS URL.
func publicURL(bucket, objectPath string) string {
	obj := strings.TrimLeft(strings.TrimSpace(objectPath), "/")
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", strings.TrimSpace(bucket), obj)
}

func extFromContentType(ct string) string {
	switch strings.ToLower(strings.TrimSpace(ct)) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ""
	}
}
