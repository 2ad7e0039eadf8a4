package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"

	"github.com/runnerkit/hello-service/internal/domain"
)

// Storage roots inside the bucket.
const (
	LocationMedia  = ""
	LocationStatic = "static"
)

// maxNameAttempts bounds the search for a free object name.
const maxNameAttempts = 10

// Options configures one logical store inside the bucket.
type Options struct {
	Bucket       string
	Region       string
	CustomDomain string
	Location     string
	// ObjectParameters are applied to every uploaded object.
	ObjectParameters map[string]string
	// Overwrite replaces existing objects instead of picking a fresh name.
	Overwrite bool
}

// S3Store stores, retrieves and deletes objects by key in one bucket root.
type S3Store struct {
	client s3iface.S3API
	opts   Options
}

// NewSession creates an AWS session for the region. Credentials come from
// the default chain (env, shared config, instance/task role).
func NewSession(region string) (*session.Session, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return sess, nil
}

// NewS3Client wraps s3.New so callers do not import the SDK directly.
func NewS3Client(sess *session.Session) s3iface.S3API {
	return s3.New(sess)
}

func NewS3Store(client s3iface.S3API, opts Options) *S3Store {
	return &S3Store{client: client, opts: opts}
}

// Save uploads body under name and returns the name actually used.
// Unless Overwrite is set, an existing object is never replaced: a short
// random suffix is inserted before the extension instead.
func (s *S3Store) Save(ctx context.Context, name string, body io.ReadSeeker, contentType string) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}

	if !s.opts.Overwrite {
		clean, err = s.availableName(ctx, clean)
		if err != nil {
			return "", err
		}
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(s.objectKey(clean)),
		Body:   body,
	}
	applyObjectParameters(input, s.opts.ObjectParameters)
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObjectWithContext(ctx, input); err != nil {
		return "", fmt.Errorf("put object %s: %w", clean, err)
	}
	return clean, nil
}

// Open returns the object's body. The caller must close it.
func (s *S3Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(s.objectKey(clean)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get object %s: %w", clean, err)
	}
	return out.Body, nil
}

func (s *S3Store) Delete(ctx context.Context, name string) error {
	clean, err := cleanName(name)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(s.objectKey(clean)),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", clean, err)
	}
	return nil
}

func (s *S3Store) Exists(ctx context.Context, name string) (bool, error) {
	clean, err := cleanName(name)
	if err != nil {
		return false, err
	}

	_, err = s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(s.objectKey(clean)),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("head object %s: %w", clean, err)
}

// URL returns the public, unsigned URL for name. Names that escape the
// store root are rejected with ErrInvalidKey.
func (s *S3Store) URL(name string) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}
	host := s.opts.CustomDomain
	if host == "" {
		host = fmt.Sprintf("%s.s3.%s.amazonaws.com", s.opts.Bucket, s.opts.Region)
	}
	return "https://" + host + "/" + s.objectKey(clean), nil
}

// Ping lists at most one key to prove the bucket is reachable.
func (s *S3Store) Ping(ctx context.Context) error {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.opts.Bucket),
		MaxKeys: aws.Int64(1),
	}
	if s.opts.Location != "" {
		input.Prefix = aws.String(s.opts.Location + "/")
	}
	if _, err := s.client.ListObjectsV2WithContext(ctx, input); err != nil {
		return fmt.Errorf("list bucket %s: %w", s.opts.Bucket, err)
	}
	return nil
}

func (s *S3Store) objectKey(name string) string {
	if s.opts.Location == "" {
		return name
	}
	return path.Join(s.opts.Location, name)
}

func (s *S3Store) availableName(ctx context.Context, name string) (string, error) {
	candidate := name
	for i := 0; i < maxNameAttempts; i++ {
		exists, err := s.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = withSuffix(name, strings.ReplaceAll(uuid.NewString(), "-", "")[:7])
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", name, maxNameAttempts)
}

// cleanName normalises a client supplied name and rejects names that are
// empty or escape the store root.
func cleanName(name string) (string, error) {
	slashed := strings.ReplaceAll(name, "\\", "/")
	for _, seg := range strings.Split(slashed, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", domain.ErrInvalidKey, name)
		}
	}
	n := strings.TrimPrefix(path.Clean("/"+slashed), "/")
	if n == "" {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidKey, name)
	}
	return n, nil
}

func withSuffix(name, suffix string) string {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + suffix + ext
}

func isNotFound(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, "NotFound":
		return true
	}
	return false
}

func applyObjectParameters(in *s3.PutObjectInput, params map[string]string) {
	for k, v := range params {
		switch k {
		case "CacheControl":
			in.CacheControl = aws.String(v)
		case "ContentDisposition":
			in.ContentDisposition = aws.String(v)
		case "ContentEncoding":
			in.ContentEncoding = aws.String(v)
		case "ContentLanguage":
			in.ContentLanguage = aws.String(v)
		case "ContentType":
			in.ContentType = aws.String(v)
		case "ServerSideEncryption":
			in.ServerSideEncryption = aws.String(v)
		case "StorageClass":
			in.StorageClass = aws.String(v)
		default:
			if in.Metadata == nil {
				in.Metadata = make(map[string]*string)
			}
			in.Metadata[k] = aws.String(v)
		}
	}
}
