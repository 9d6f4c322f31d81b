// Package storage keeps a copy of uploaded roster files in an S3 compatible
// bucket.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
)

// Config holds the bucket settings
type Config struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
}

// RosterArchive uploads roster files to a private bucket
type RosterArchive struct {
	s3Client s3iface.S3API
	bucket   string
}

// NewRosterArchive creates an S3 client for cfg
func NewRosterArchive(cfg Config) (*RosterArchive, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage session: %w", err)
	}

	return NewRosterArchiveWithClient(s3.New(sess), cfg.Bucket), nil
}

// NewRosterArchiveWithClient wraps an existing S3 client
func NewRosterArchiveWithClient(client s3iface.S3API, bucket string) *RosterArchive {
	return &RosterArchive{s3Client: client, bucket: bucket}
}

// ObjectKey builds the key a roster file is stored under
func ObjectKey(now time.Time, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("rosters/%s/%s%s", now.UTC().Format("2006/01/02"), uuid.New().String(), ext)
}

// Archive stores data and returns its object key
func (a *RosterArchive) Archive(ctx context.Context, fileName string, data []byte, contentType string) (string, error) {
	key := ObjectKey(time.Now(), fileName)

	_, err := a.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ACL:         aws.String(s3.ObjectCannedACLPrivate),
		ContentType: aws.String(contentType),
		Metadata: map[string]*string{
			"original-name": aws.String(filepath.Base(fileName)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload roster: %w", err)
	}
	return key, nil
}
