package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Signer_PresignedUpload(t *testing.T) {
	signer, err := NewS3Signer(S3SignerConfig{
		Bucket:    "mods",
		Prefix:    "/uploads/",
		Region:    "eu-west-1",
		Endpoint:  "http://localhost:9000",
		AccessKey: "AKIDEXAMPLE",
		SecretKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
		Expiry:    15 * time.Minute,
	}, testLogger())
	require.NoError(t, err)

	signed, err := signer.CreateSignedUploadURL(context.Background(), "1700000000000_a.png")
	require.NoError(t, err)

	u, err := url.Parse(signed.SignedURL)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/mods/uploads/1700000000000_a.png", u.Path)

	q := u.Query()
	assert.Equal(t, "AWS4-HMAC-SHA256", q.Get("X-Amz-Algorithm"))
	assert.Equal(t, "900", q.Get("X-Amz-Expires"))
	assert.Contains(t, q.Get("X-Amz-Credential"), "AKIDEXAMPLE/")
	assert.NotEmpty(t, signed.Token)
	assert.Equal(t, q.Get("X-Amz-Signature"), signed.Token)
}

func TestS3Signer_PublicURL(t *testing.T) {
	tests := []struct {
		name     string
		cfg      S3SignerConfig
		expected string
	}{
		{
			name:     "aws virtual host",
			cfg:      S3SignerConfig{Bucket: "mods", Region: "us-west-2"},
			expected: "https://mods.s3.us-west-2.amazonaws.com/1_a.png",
		},
		{
			name:     "custom endpoint path style",
			cfg:      S3SignerConfig{Bucket: "mods", Prefix: "up", Endpoint: "http://minio:9000/"},
			expected: "http://minio:9000/mods/up/1_a.png",
		},
		{
			name:     "public base wins",
			cfg:      S3SignerConfig{Bucket: "mods", Endpoint: "http://minio:9000", PublicBase: "https://cdn.example.com/"},
			expected: "https://cdn.example.com/1_a.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signer, err := NewS3Signer(tt.cfg, testLogger())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, signer.PublicURL("1_a.png"))
		})
	}
}

func TestS3Signer_Defaults(t *testing.T) {
	signer, err := NewS3Signer(S3SignerConfig{Bucket: "mods", AccessKey: "AK", SecretKey: "SK"}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, DefaultUploadExpiry, signer.expiry)
	assert.Equal(t, "us-east-1", signer.region)
	assert.Equal(t, "s3-mods", signer.Name())
	assert.NotContains(t, signer.LocationURI(), "SK")

	_, err = NewS3Signer(S3SignerConfig{}, testLogger())
	assert.Error(t, err)
}
