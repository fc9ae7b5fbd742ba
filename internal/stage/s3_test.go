package stage

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewS3Stage(t *testing.T) {
	client := s3.New(s3.Options{Region: "us-east-1"})
	st := NewS3Stage(client, &S3Config{BucketName: "bucket"})

	assert.NotNil(t, st.uploader)
	assert.NotNil(t, st.downloader)
	assert.Equal(t, "bucket", st.config.BucketName)
}

func TestNewS3StageWithConfig(t *testing.T) {
	st, err := NewS3StageWithConfig(&S3Config{
		BucketName: "bucket",
		Region:     "us-east-1",
		AccessKey:  "key",
		SecretKey:  "secret",
		Endpoint:   "http://localhost:9000",
	})
	require.NoError(t, err)
	assert.NotNil(t, st.client)
}

func TestPutDirectoryMissingDir(t *testing.T) {
	client := s3.New(s3.Options{Region: "us-east-1"})
	st := NewS3Stage(client, &S3Config{BucketName: "bucket"})

	_, err := st.PutDirectory(context.Background(), "/does/not/exist", "@stg/prefix/", nil)
	assert.Error(t, err)
}
