package upload

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioProvider stores objects in MinIO or any S3 compatible service.
type MinioProvider struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewMinioProvider() *MinioProvider {
	return &MinioProvider{}
}

func (m *MinioProvider) Name() string {
	return "minio"
}

// Configure reads endpoint, access_key, secret_key and bucket, plus optional
// secure, region and prefix. A scheme on the endpoint decides secure.
func (m *MinioProvider) Configure(config map[string]any) error {
	rawEndpoint, ok := stringValue(config, "endpoint")
	if !ok {
		return fmt.Errorf("minio: endpoint is required")
	}
	accessKey, ok := stringValue(config, "access_key")
	if !ok {
		return fmt.Errorf("minio: access_key is required")
	}
	secretKey, ok := stringValue(config, "secret_key")
	if !ok {
		return fmt.Errorf("minio: secret_key is required")
	}
	bucket, ok := stringValue(config, "bucket")
	if !ok {
		return fmt.Errorf("minio: bucket is required")
	}

	endpoint, secure, err := parseEndpoint(rawEndpoint, boolValue(config, "secure", true))
	if err != nil {
		return err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
		Region: stringValueOr(config, "region", "us-east-1"),
	})
	if err != nil {
		return fmt.Errorf("minio: failed to create client: %w", err)
	}

	m.client = client
	m.bucket = bucket
	m.prefix = strings.Trim(stringValueOr(config, "prefix", ""), "/")
	return nil
}

// parseEndpoint strips an http:// or https:// scheme, which then overrides secure.
func parseEndpoint(raw string, secure bool) (string, bool, error) {
	if !strings.Contains(raw, "://") {
		return raw, secure, nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false, fmt.Errorf("minio: invalid endpoint URL %q", raw)
	}
	switch u.Scheme {
	case "http":
		return u.Host, false, nil
	case "https":
		return u.Host, true, nil
	default:
		return "", false, fmt.Errorf("minio: invalid endpoint URL %q: unsupported scheme %s", raw, u.Scheme)
	}
}

func (m *MinioProvider) Verify(ctx context.Context) error {
	if m.client == nil {
		return fmt.Errorf("minio: provider not configured")
	}
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("minio: failed to check bucket existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("minio: bucket %s does not exist", m.bucket)
	}
	return nil
}

func (m *MinioProvider) Upload(ctx context.Context, reader io.Reader, size int64, objectName, contentType string) error {
	if m.client == nil {
		return fmt.Errorf("minio: provider not configured")
	}

	key := m.objectKey(objectName)
	_, err := m.client.PutObject(ctx, m.bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("minio: failed to upload to %s: %w", key, err)
	}
	return nil
}

// objectKey joins the prefix with slash separators on every platform.
func (m *MinioProvider) objectKey(objectName string) string {
	objectName = strings.TrimLeft(strings.ReplaceAll(objectName, `\`, "/"), "/")
	if m.prefix == "" {
		return objectName
	}
	return path.Join(m.prefix, objectName)
}

func stringValue(config map[string]any, key string) (string, bool) {
	if s, ok := config[key].(string); ok && s != "" {
		return s, true
	}
	return "", false
}

func stringValueOr(config map[string]any, key, fallback string) string {
	if s, ok := stringValue(config, key); ok {
		return s
	}
	return fallback
}

func boolValue(config map[string]any, key string, fallback bool) bool {
	switch v := config[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
