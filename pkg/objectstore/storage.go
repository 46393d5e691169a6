package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/talentscout/talentscout-api/pkg/logger"
	"github.com/talentscout/talentscout-api/pkg/metrics"
	"go.uber.org/zap"
)

// StorageClient archives interview transcripts to an S3-compatible bucket
type StorageClient struct {
	s3Client   *s3.Client
	bucketName string
}

// NewStorageClient creates a client for any S3-compatible endpoint
func NewStorageClient(accessKeyID, secretAccessKey, bucketName, endpoint, region string) (*StorageClient, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	if region == "" {
		region = "us-east-1"
	}

	opts := s3.Options{
		Region: region,
		Credentials: credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			"", // session token not needed
		),
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
	}

	logger.Info("Object storage client initialized",
		zap.String("bucket", bucketName),
		zap.String("endpoint", endpoint),
		zap.String("region", region),
	)

	return &StorageClient{
		s3Client:   s3.New(opts),
		bucketName: bucketName,
	}, nil
}

// UploadTranscript stores a finished interview transcript as a JSON object.
// The key is derived from the conversation id and the upload date.
func (sc *StorageClient) UploadTranscript(ctx context.Context, conversationID string, transcriptJSON []byte) (string, error) {
	start := time.Now()
	key := fmt.Sprintf("transcripts/%s/%s.json", time.Now().UTC().Format("2006-01-02"), conversationID)

	_, err := sc.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(sc.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(transcriptJSON),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		metrics.TranscriptUploads.WithLabelValues("upload", "error").Inc()
		logger.Error("Failed to upload transcript",
			zap.String("conversation_id", conversationID),
			zap.String("key", key),
			zap.Error(err))
		return "", fmt.Errorf("upload transcript: %w", err)
	}

	metrics.TranscriptUploads.WithLabelValues("upload", "success").Inc()
	logger.Info("Transcript uploaded",
		zap.String("conversation_id", conversationID),
		zap.String("key", key),
		zap.Duration("duration", time.Since(start)))

	return key, nil
}
