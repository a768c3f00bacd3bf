package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/glazedv3/mods-backend/interfaces"
)

// DefaultUploadExpiry matches the lifetime of hosted signed upload URLs.
const DefaultUploadExpiry = 2 * time.Hour

// S3Signer issues presigned PUT URLs for Amazon S3 or compatible services.
type S3Signer struct {
	client      *s3.S3
	bucketName  string
	prefix      string
	endpoint    string
	region      string
	publicBase  string
	expiry      time.Duration
	log         *slog.Logger
	locationURI string
}

// S3SignerConfig configures NewS3Signer.
type S3SignerConfig struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string

	// PublicBase overrides where uploaded objects are readable, e.g. a CDN.
	PublicBase string

	// Expiry defaults to DefaultUploadExpiry.
	Expiry time.Duration
}

// NewS3Signer creates a signer. Presigning needs credentials: either
// AccessKey/SecretKey or whatever the default AWS chain provides.
func NewS3Signer(cfg S3SignerConfig, log *slog.Logger) (*S3Signer, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket is required", interfaces.ErrInvalidLocationURI)
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = DefaultUploadExpiry
	}

	uri := fmt.Sprintf("s3://%s/%s?region=%s", cfg.Bucket, cfg.Prefix, cfg.Region)
	if cfg.AccessKey != "" {
		uri = fmt.Sprintf("s3://%s:***@%s/%s?region=%s", cfg.AccessKey, cfg.Bucket, cfg.Prefix, cfg.Region)
	}
	if cfg.Endpoint != "" {
		uri += fmt.Sprintf("&endpoint=%s", cfg.Endpoint)
	}

	awsCfg := aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		log.Warn("No S3 credentials provided - presigning relies on the default AWS credential chain")
	}

	sess, err := session.NewSession(&awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Signer{
		client:      s3.New(sess),
		bucketName:  cfg.Bucket,
		prefix:      strings.Trim(cfg.Prefix, "/"),
		endpoint:    strings.TrimSuffix(cfg.Endpoint, "/"),
		region:      cfg.Region,
		publicBase:  strings.TrimSuffix(cfg.PublicBase, "/"),
		expiry:      cfg.Expiry,
		log:         log,
		locationURI: uri,
	}, nil
}

// CreateSignedUploadURL presigns a PUT of objectPath. The token is the
// request signature carried in the URL.
func (b *S3Signer) CreateSignedUploadURL(ctx context.Context, objectPath string) (interfaces.SignedUpload, error) {
	key := b.getObjectKey(objectPath)

	req, _ := b.client.PutObjectRequest(&s3.PutObjectInput{
		Bucket: aws.String(b.bucketName),
		Key:    aws.String(key),
	})
	req.SetContext(ctx)

	signedURL, err := req.Presign(b.expiry)
	if err != nil {
		b.log.Error("Failed to presign S3 upload",
			slog.String("bucket", b.bucketName),
			slog.String("key", key),
			"err", err)
		return interfaces.SignedUpload{}, fmt.Errorf("failed to presign upload: %w", err)
	}

	token := ""
	if parsed, err := url.Parse(signedURL); err == nil {
		token = parsed.Query().Get("X-Amz-Signature")
	}

	b.log.Debug("Presigned S3 upload",
		slog.String("bucket", b.bucketName),
		slog.String("key", key),
		slog.Duration("expiry", b.expiry))

	return interfaces.SignedUpload{SignedURL: signedURL, Token: token}, nil
}

// PublicURL returns where objectPath is readable once uploaded.
func (b *S3Signer) PublicURL(objectPath string) string {
	key := escapeObjectPath(b.getObjectKey(objectPath))
	switch {
	case b.publicBase != "":
		return b.publicBase + "/" + key
	case b.endpoint != "":
		return b.endpoint + "/" + b.bucketName + "/" + key
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.bucketName, b.region, key)
	}
}

// Name returns a unique identifier for this backend.
func (b *S3Signer) Name() string {
	return fmt.Sprintf("s3-%s", b.bucketName)
}

// LocationURI returns the URI that identifies this backend.
func (b *S3Signer) LocationURI() string {
	return b.locationURI
}

func (b *S3Signer) getObjectKey(objectPath string) string {
	if b.prefix == "" {
		return objectPath
	}
	return path.Join(b.prefix, objectPath)
}
