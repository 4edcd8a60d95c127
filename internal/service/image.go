package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/forkful/backend/config"
)

var ErrInvalidImage = errors.New("invalid image payload")

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageService stores recipe images and avatars submitted as base64 data
// URIs. With an S3 config it uploads to the bucket; otherwise files land
// in the local media directory.
type ImageService struct {
	s3Config     *config.S3Config
	mediaDir     string
	mediaBaseURL string
}

func NewImageService(s3Config *config.S3Config, mediaDir, mediaBaseURL string) *ImageService {
	return &ImageService{
		s3Config:     s3Config,
		mediaDir:     mediaDir,
		mediaBaseURL: mediaBaseURL,
	}
}

// IsDataURI reports whether the payload is an inline base64 image rather
// than a plain URL.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:image/")
}

// StoreBase64 decodes a "data:image/...;base64,..." payload and stores it
// under the given prefix ("recipes" or "avatars"), returning the URL the
// stored image is reachable at.
func (s *ImageService) StoreBase64(ctx context.Context, dataURI, prefix string) (string, error) {
	contentType, data, err := decodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: unsupported content type %q", ErrInvalidImage, contentType)
	}

	key := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), ext)

	if s.s3Config != nil {
		_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.s3Config.BucketName),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return "", fmt.Errorf("failed to upload image: %w", err)
		}
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key), nil
	}

	path := filepath.Join(s.mediaDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return s.mediaBaseURL + "/" + key, nil
}

func decodeDataURI(dataURI string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURI, "data:")
	if !ok {
		return "", nil, ErrInvalidImage
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidImage
	}
	contentType, encoding, ok := strings.Cut(meta, ";")
	if !ok || encoding != "base64" {
		return "", nil, ErrInvalidImage
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return contentType, data, nil
}
