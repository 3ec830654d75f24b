package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/foodgram/backend/config"
)

// ImageStore resolves a submitted recipe image to a stored URL.
type ImageStore interface {
	Resolve(ctx context.Context, image string) (string, error)
}

// ImageService stores recipe images. Clients submit images either as an
// already-hosted URL, which is kept as-is, or as a base64 data URI
// ("data:image/png;base64,..."), which is decoded and uploaded to S3.
type ImageService struct {
	s3Config *config.S3Config
}

func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{s3Config: s3Config}
}

// Resolve returns a URL for the submitted image, uploading data URIs to S3.
func (s *ImageService) Resolve(ctx context.Context, image string) (string, error) {
	if !strings.HasPrefix(image, "data:image") {
		return image, nil
	}

	meta, encoded, found := strings.Cut(image, ";base64,")
	if !found {
		return "", validationErr("image", "image data URI must be base64 encoded")
	}
	imageData, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", validationErr("image", "invalid base64 image data")
	}

	contentType := strings.TrimPrefix(meta, "data:")
	ext := "png"
	if _, sub, ok := strings.Cut(contentType, "/"); ok && sub != "" {
		ext = sub
	}

	fileName := fmt.Sprintf("recipes/%s.%s", uuid.New().String(), ext)
	return s.uploadToS3(ctx, imageData, fileName, contentType)
}

// uploadToS3 uploads image data to S3 and returns the public URL.
func (s *ImageService) uploadToS3(ctx context.Context, imageData []byte, fileName, contentType string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	log.Printf("[ImageService] uploaded recipe image to %s", publicURL)
	return publicURL, nil
}
