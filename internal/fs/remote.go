package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// maxTreeSize bounds how much a remote source may return.
var maxTreeSize int64 = 32 << 20

// ErrTooLarge is returned when a remote description exceeds maxTreeSize.
var ErrTooLarge = errors.New("tree description too large")

// readLimited reads r whole, failing rather than truncating past maxTreeSize.
func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxTreeSize+1))
	if err != nil {
		return nil, transient(err)
	}
	if int64(len(data)) > maxTreeSize {
		return nil, fmt.Errorf("%w (over %d bytes)", ErrTooLarge, maxTreeSize)
	}
	return data, nil
}

// HTTPSource fetches the tree description with a GET request.
type HTTPSource struct {
	url    string
	client *http.Client
	Retry  RetryPolicy
}

// NewHTTPSource creates an HTTPSource. A nil client means http.DefaultClient.
func NewHTTPSource(url string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{url: url, client: client, Retry: DefaultRetryPolicy()}
}

// Fetch downloads the description, retrying network errors and 5xx replies.
func (h *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	return fetchWithRetry(ctx, h.Retry, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := h.client.Do(req)
		if err != nil {
			return nil, transient(err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode >= 500 {
			return nil, transient(fmt.Errorf("GET %s: %s", h.url, resp.Status))
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("GET %s: %s", h.url, resp.Status)
		}
		return readLimited(resp.Body)
	})
}

func (h *HTTPSource) String() string {
	return h.url
}

// S3Source fetches the tree description from an S3 object. The client is
// built lazily from the default AWS configuration chain.
type S3Source struct {
	bucket string
	key    string
	Retry  RetryPolicy

	once    sync.Once
	client  *s3.Client
	initErr error
}

// NewS3Source creates an S3Source. A nil client is resolved on first Fetch.
func NewS3Source(bucket, key string, client *s3.Client) *S3Source {
	return &S3Source{bucket: bucket, key: key, client: client, Retry: DefaultRetryPolicy()}
}

func (s *S3Source) s3Client(ctx context.Context) (*s3.Client, error) {
	s.once.Do(func() {
		if s.client != nil {
			return
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			s.initErr = fmt.Errorf("load aws config: %w", err)
			return
		}
		s.client = s3.NewFromConfig(cfg)
	})
	return s.client, s.initErr
}

// Fetch downloads the object body.
func (s *S3Source) Fetch(ctx context.Context) ([]byte, error) {
	client, err := s.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	return fetchWithRetry(ctx, s.Retry, func() ([]byte, error) {
		out, err := client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key),
		})
		if err != nil {
			var noKey *types.NoSuchKey
			if errors.As(err, &noKey) {
				return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, s.key, err)
			}
			return nil, transient(err)
		}
		defer func() { _ = out.Body.Close() }()
		return readLimited(out.Body)
	})
}

func (s *S3Source) String() string {
	return "s3://" + s.bucket + "/" + s.key
}
