package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"clientconsole-backend/shared/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// LogoStorage is the object-storage surface the client service needs:
// upload with overwrite, list by prefix, remove a set of paths, and resolve
// a path to a publicly reachable URL.
type LogoStorage interface {
	Upload(ctx context.Context, objectPath string, data []byte, contentType string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Remove(ctx context.Context, objectPaths []string) error
	PublicURL(objectPath string) string
}

// MinIOService stores organization logos in a MinIO bucket
type MinIOService struct {
	client     *minio.Client
	serverURL  string
	bucketName string
}

// NewMinIOService connects to MinIO and ensures the logo bucket exists
func NewMinIOService() (*MinIOService, error) {
	cfg := config.GetConfig()

	parsedURL, err := url.Parse(cfg.MinIOServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MinIO endpoint: %v", err)
	}

	endpoint := parsedURL.Host
	useSSL := cfg.MinIOUseSSL

	log.Printf("🔗 Connecting to MinIO: %s (SSL: %v)", endpoint, useSSL)

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIORootUser, cfg.MinIORootPassword, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %v", err)
	}

	service := &MinIOService{
		client:     minioClient,
		serverURL:  strings.TrimRight(cfg.MinIOServerURL, "/"),
		bucketName: cfg.MinIOBucketName,
	}

	if err := service.initializeBucket(); err != nil {
		return nil, err
	}

	return service, nil
}

func (s *MinIOService) initializeBucket() error {
	ctx := context.Background()

	log.Printf("🪣 Checking bucket: %s", s.bucketName)

	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
		log.Printf("✅ MinIO bucket '%s' created successfully", s.bucketName)
	} else {
		log.Printf("✅ MinIO bucket '%s' already exists", s.bucketName)
	}

	return nil
}

// Upload stores an object, overwriting any existing object at that exact path
func (s *MinIOService) Upload(ctx context.Context, objectPath string, data []byte, contentType string) error {
	log.Printf("⬆️ Uploading logo to: %s/%s (size: %d bytes)", s.bucketName, objectPath, len(data))

	_, err := s.client.PutObject(ctx, s.bucketName, objectPath, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload logo: %v", err)
	}

	log.Printf("✅ Logo '%s' uploaded successfully", objectPath)
	return nil
}

// List returns every object key under a prefix
func (s *MinIOService) List(ctx context.Context, prefix string) ([]string, error) {
	var objects []string
	objectCh := s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list logos: %v", object.Err)
		}
		objects = append(objects, object.Key)
	}

	return objects, nil
}

// Remove deletes a set of object paths
func (s *MinIOService) Remove(ctx context.Context, objectPaths []string) error {
	var errs []string
	for _, objectPath := range objectPaths {
		err := s.client.RemoveObject(ctx, s.bucketName, objectPath, minio.RemoveObjectOptions{})
		if err != nil {
			errs = append(errs, fmt.Sprintf("failed to delete %s: %v", objectPath, err))
		} else {
			log.Printf("🗑️ Deleted logo object: %s", objectPath)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to delete some objects: %v", errs)
	}
	return nil
}

// PublicURL resolves an object path to its public URL
func (s *MinIOService) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/%s/%s", s.serverURL, s.bucketName, objectPath)
}
