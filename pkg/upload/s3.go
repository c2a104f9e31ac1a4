package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Herocku2/solana-token-creatorf/pkg/config"
)

// CIDHeader is the response header carrying the IPFS content identifier.
const CIDHeader = "x-amz-meta-cid"

// S3Config configures an S3-compatible backend such as Filebase.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string

	// ACL is the canned ACL applied to every object (e.g., "public-read").
	ACL string

	// Timeout bounds one PutObject call. Zero leaves it to the caller.
	Timeout time.Duration

	// MaxAttempts is the SDK retry budget. Zero keeps the SDK default.
	MaxAttempts int

	// HTTPClient overrides the SDK HTTP client (tests).
	HTTPClient *http.Client
}

// S3ConfigFromConfig extracts backend settings from the storage section.
func S3ConfigFromConfig(cfg config.StorageConfig) S3Config {
	return S3Config{
		Endpoint:  cfg.Endpoint,
		Region:    cfg.Region,
		Bucket:    cfg.Bucket,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		ACL:       cfg.ACL,
		Timeout:   cfg.Timeout,
	}
}

// S3Backend writes objects with PutObject using path-style addressing and
// reads the CID from the response headers.
type S3Backend struct {
	client  *s3.Client
	bucket  string
	acl     types.ObjectCannedACL
	timeout time.Duration
	tracer  trace.Tracer
}

// NewS3Backend creates an S3 client for cfg. Credentials are static and are
// not checked here; the relay rejects missing credentials before calling Put.
func NewS3Backend(ctx context.Context, cfg S3Config) (*S3Backend, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	}
	if cfg.MaxAttempts > 0 {
		opts = append(opts, awsconfig.WithRetryMaxAttempts(cfg.MaxAttempts))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, awsconfig.WithHTTPClient(cfg.HTTPClient))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage client config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return &S3Backend{
		client:  client,
		bucket:  cfg.Bucket,
		acl:     types.ObjectCannedACL(cfg.ACL),
		timeout: cfg.Timeout,
		tracer:  otel.Tracer("github.com/Herocku2/solana-token-creatorf/pkg/upload"),
	}, nil
}

// Put implements Backend.
func (b *S3Backend) Put(ctx context.Context, artifact Artifact) (string, error) {
	ctx, span := b.tracer.Start(ctx, "upload.put", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("storage.bucket", b.bucket),
		attribute.String("storage.content_type", artifact.ContentType),
		attribute.Int("storage.size", len(artifact.Payload)),
	)

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(artifact.Name),
		Body:          bytes.NewReader(artifact.Payload),
		ContentType:   aws.String(artifact.ContentType),
		ContentLength: aws.Int64(int64(len(artifact.Payload))),
	}
	if b.acl != "" {
		input.ACL = b.acl
	}

	out, err := b.client.PutObject(ctx, input)
	if err != nil {
		berr := classifyS3Error(ctx, err)
		span.RecordError(berr)
		span.SetStatus(codes.Error, berr.Error())
		return "", berr
	}

	cid := cidFromMetadata(out)
	if cid == "" {
		berr := &BackendError{
			StatusCode: http.StatusBadGateway,
			Message:    "storage backend did not return a content identifier",
		}
		span.SetStatus(codes.Error, berr.Message)
		return "", berr
	}

	span.SetAttributes(attribute.String("storage.cid", cid))
	return cid, nil
}

func cidFromMetadata(out *s3.PutObjectOutput) string {
	raw, ok := awsmiddleware.GetRawResponse(out.ResultMetadata).(*smithyhttp.Response)
	if !ok || raw == nil {
		return ""
	}
	return raw.Header.Get(CIDHeader)
}

// classifyS3Error maps an SDK error to a BackendError carrying the backend's
// status and message. A caller that went away is reported as
// context.Canceled, not as a backend failure.
func classifyS3Error(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("storage upload aborted: %w", context.Canceled)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &BackendError{StatusCode: http.StatusGatewayTimeout, Message: "storage backend timeout", Cause: err}
	}

	berr := &BackendError{StatusCode: http.StatusBadGateway, Message: "storage backend unreachable", Cause: err}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() > 0 {
		berr.StatusCode = respErr.HTTPStatusCode()
		berr.Message = http.StatusText(berr.StatusCode)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.ErrorMessage(); msg != "" {
			berr.Message = msg
		} else if code := apiErr.ErrorCode(); code != "" {
			berr.Message = code
		}
	}
	return berr
}
