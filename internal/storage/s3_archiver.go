package storage

import (
	"bytes"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// PDFArchiver keeps a copy of every source PDF in S3-compatible storage so
// the original document survives independently of the ledger attachment.
type PDFArchiver struct {
	s3Client *s3.S3
	bucket   string
	prefix   string
}

// Config holds configuration for the PDF archiver
type Config struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	Region          string
	Prefix          string // key prefix, defaults to "payables"
}

// NewPDFArchiver creates a new PDF archiver
func NewPDFArchiver(config *Config) (*PDFArchiver, error) {
	if config.AccessKeyID == "" || config.AccessKeySecret == "" {
		return nil, fmt.Errorf("S3 configuration is incomplete")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is not configured")
	}
	prefix := config.Prefix
	if prefix == "" {
		prefix = "payables"
	}

	awsConfig := &aws.Config{
		Region:      aws.String(config.Region),
		Credentials: credentials.NewStaticCredentials(config.AccessKeyID, config.AccessKeySecret, ""),
	}
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}
	sess := session.Must(session.NewSession(awsConfig))

	return &PDFArchiver{
		s3Client: s3.New(sess),
		bucket:   config.Bucket,
		prefix:   prefix,
	}, nil
}

// ArchivePDF uploads the PDF under the archive prefix and returns the key.
func (a *PDFArchiver) ArchivePDF(pdfData []byte, filename string) (string, error) {
	key := fmt.Sprintf("%s/%s", a.prefix, filename)

	_, err := a.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(pdfData),
		ContentType:   aws.String("application/pdf"),
		ContentLength: aws.Int64(int64(len(pdfData))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return key, nil
}
