package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3 struct{ mock.Mock }

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	if v, ok := args.Get(0).(*s3.PutObjectOutput); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, in)
	if v, ok := args.Get(0).(*s3.GetObjectOutput); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, in)
	if v, ok := args.Get(0).(*s3.DeleteObjectOutput); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ s3API = (*mockS3)(nil)

func TestS3Store_Upload(t *testing.T) {
	m := new(mockS3)
	s := &S3Store{client: m, bucket: "files"}
	ctx := context.Background()

	m.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Bucket == "files" && *in.Key == "u1/f1/a.txt" &&
			*in.ContentType == "text/plain" && *in.ContentLength == 5 && *in.IfNoneMatch == "*"
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	ref, err := s.Upload(ctx, "u1/f1/a.txt", strings.NewReader("hello"), 5, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "u1/f1/a.txt", ref)

	// объект уже есть — If-None-Match не прошёл
	m.On("PutObject", mock.Anything, mock.Anything).
		Return(nil, &smithy.GenericAPIError{Code: "PreconditionFailed", Message: "At least one of the pre-conditions you specified did not hold"}).Once()
	_, err = s.Upload(ctx, "u1/f1/a.txt", strings.NewReader("hello"), 5, "text/plain")
	assert.ErrorIs(t, err, ErrObjectExists)

	m.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("network down")).Once()
	_, err = s.Upload(ctx, "u1/f1/b.txt", strings.NewReader("x"), 1, "")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrObjectExists)

	// ключ с выходом наверх до S3 не доходит
	_, err = s.Upload(ctx, "../x", strings.NewReader("x"), 1, "")
	assert.ErrorIs(t, err, ErrInvalidKey)

	m.AssertExpectations(t)
}

func TestS3Store_OpenAndRemove(t *testing.T) {
	m := new(mockS3)
	s := &S3Store{client: m, bucket: "files"}
	ctx := context.Background()

	m.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return *in.Key == "u1/f1/a.txt"
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("hello"))}, nil).Once()
	rc, err := s.Open(ctx, "u1/f1/a.txt")
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "hello", string(b))

	m.On("GetObject", mock.Anything, mock.Anything).Return(nil, &types.NoSuchKey{}).Once()
	_, err = s.Open(ctx, "u1/f1/missing")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	m.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return *in.Key == "u1/f1/a.txt"
	})).Return(&s3.DeleteObjectOutput{}, nil).Once()
	m.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return *in.Key == "u1/f1/b.txt"
	})).Return(nil, errors.New("denied")).Once()
	err = s.Remove(ctx, "u1/f1/a.txt", "u1/f1/b.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "u1/f1/b.txt")

	m.AssertExpectations(t)
}

func TestS3Store_SignedURL(t *testing.T) {
	// презайн считается локально, сеть не нужна
	s, err := NewS3Store(context.Background(), S3Config{
		AccessKey: "admin",
		SecretKey: "secretpassword",
		Bucket:    "files",
		Region:    "us-east-1",
		Endpoint:  "http://127.0.0.1:9000",
	})
	require.NoError(t, err)

	link, err := s.SignedURL(context.Background(), "u1/f1/a.txt", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", u.Host)
	assert.Equal(t, "/files/u1/f1/a.txt", u.Path)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
	assert.Equal(t, "attachment", u.Query().Get("response-content-disposition"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{Region: "us-east-1"})
	assert.Error(t, err)
}
