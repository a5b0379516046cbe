package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPutter struct {
	mock.Mock
	body []byte
}

func (m *mockPutter) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64,
	opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	m.body, _ = io.ReadAll(reader)
	args := m.Called(bucketName, objectName, objectSize, opts.ContentType)
	return minio.UploadInfo{Key: objectName}, args.Error(0)
}

func TestObjectKey(t *testing.T) {
	at := time.Date(2026, 2, 28, 23, 30, 0, 0, time.FixedZone("UTC-3", -3*3600))
	assert.Equal(t, "transcripts/2026/03/abc.json", ObjectKey("abc", at))
}

func TestArchive(t *testing.T) {
	putter := &mockPutter{}
	body := []byte(`{"segments": []}`)
	putter.On("PutObject", "transcripts-bucket", "transcripts/2026/07/run-1.json", int64(len(body)), "application/json").Return(nil)

	a := newMinioArchiver(putter, "transcripts-bucket", nil)
	a.now = func() time.Time { return time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC) }

	key, err := a.Archive(context.Background(), "run-1", body)
	require.NoError(t, err)
	assert.Equal(t, "transcripts/2026/07/run-1.json", key)
	assert.Equal(t, body, putter.body)
	putter.AssertExpectations(t)
}

func TestArchiveError(t *testing.T) {
	putter := &mockPutter{}
	putter.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("access denied"))

	_, err := newMinioArchiver(putter, "b", nil).Archive(context.Background(), "r", []byte("{}"))
	assert.ErrorContains(t, err, "access denied")
}

func TestNoop(t *testing.T) {
	key, err := Noop{}.Archive(context.Background(), "r", []byte("{}"))
	assert.NoError(t, err)
	assert.Empty(t, key)
}
