package s3storage

import (
	"errors"
	"net/http"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/airename/pkg/config"
)

func TestNew_RequiresEndpointAndBucket(t *testing.T) {
	_, err := New(config.S3Config{Endpoint: "localhost:9000"})
	assert.Error(t, err)

	c, err := New(config.S3Config{Endpoint: "localhost:9000", Bucket: "airename", Region: "us-east-1"})
	require.NoError(t, err)
	assert.Equal(t, "airename", c.Bucket())
}

func TestNormalizePrefix(t *testing.T) {
	assert.Equal(t, "", NormalizePrefix(""))
	assert.Equal(t, "history/", NormalizePrefix("history"))
	assert.Equal(t, "history/", NormalizePrefix("/history/"))
}

func TestJoinKey(t *testing.T) {
	assert.Equal(t, "archives/irAiRename20240101_120000.zip", JoinKey("archives", "irAiRename20240101_120000.zip"))
	assert.Equal(t, "key", JoinKey("", "/key"))
}

func TestWrapNotFound(t *testing.T) {
	err := wrapNotFound("history/x", minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound})
	assert.True(t, errors.Is(err, ErrNotFound))

	err = wrapNotFound("history/x", minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden})
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "get object history/x")
}

func TestLastSegment(t *testing.T) {
	assert.Equal(t, "a.zip", lastSegment("archives/2024/a.zip"))
	assert.Equal(t, "a.zip", lastSegment("a.zip"))
}
