package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// BlobStore is a key-addressed object store for uploaded media. Implementations
// must bound every call with the passed context.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// callTimeout bounds individual blob store calls so a slow backend cannot
// stall a request indefinitely.
const callTimeout = 30 * time.Second

// FirebaseStore stores blobs in a Firebase Cloud Storage bucket.
type FirebaseStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

// NewFirebaseStore initializes the Firebase app from a credentials file and
// returns a store backed by the named bucket.
func NewFirebaseStore(ctx context.Context, credentialsPath, bucketName string) (*FirebaseStore, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path not provided")
	}
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucketName}, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase storage client: %w", err)
	}

	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("error getting storage bucket %s: %w", bucketName, err)
	}

	log.Println("Firebase storage bucket initialized successfully!")
	return &FirebaseStore{bucket: bucket, bucketName: bucketName}, nil
}

// Put uploads the blob under the given key.
func (s *FirebaseStore) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("uploading object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("uploading object %s: %w", key, err)
	}
	return nil
}

// Delete removes the blob stored under the given key.
func (s *FirebaseStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	if err := s.bucket.Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("deleting object %s: %w", key, err)
	}
	return nil
}

// URL derives the public URL for a stored key.
func (s *FirebaseStore) URL(key string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, key)
}
