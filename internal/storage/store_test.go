package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Save(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:8080")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), Object{WorkspaceID: "ws-1", Name: "../../etc/Spec.PDF"}, strings.NewReader("hello"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/ws-1/"))
	assert.True(t, strings.HasSuffix(url, ".pdf"))

	rel := strings.TrimPrefix(url, "http://localhost:8080/uploads/")
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestLocalStore_RejectsBadWorkspaceID(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)

	for _, id := range []string{"", "../x", `a\b`} {
		_, err := store.Save(context.Background(), Object{WorkspaceID: id, Name: "a.txt"}, strings.NewReader("x"))
		assert.Error(t, err, id)
	}
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	b, _ := io.ReadAll(params.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Store_Save(t *testing.T) {
	fake := &fakeS3{}
	store := &S3Store{client: fake, bucket: "connecta-files", region: "eu-west-1"}

	url, err := store.Save(context.Background(), Object{WorkspaceID: "ws-1", Name: "logo.png", ContentType: "image/png", Size: 3}, strings.NewReader("png"))
	require.NoError(t, err)

	key := aws.ToString(fake.input.Key)
	assert.True(t, strings.HasPrefix(key, "collabo/ws-1/"))
	assert.Equal(t, "connecta-files", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "image/png", aws.ToString(fake.input.ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(fake.input.ContentLength))
	assert.Equal(t, "png", fake.body)
	assert.Equal(t, "https://connecta-files.s3.eu-west-1.amazonaws.com/"+key, url)
}

func TestS3Store_SaveWithPublicBaseURL(t *testing.T) {
	fake := &fakeS3{}
	store := &S3Store{client: fake, bucket: "b", region: "r", baseURL: "https://cdn.connecta.app"}

	url, err := store.Save(context.Background(), Object{WorkspaceID: "ws-1", Name: "a.txt"}, strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.connecta.app/"+aws.ToString(fake.input.Key), url)
}

func TestS3Store_SaveError(t *testing.T) {
	store := &S3Store{client: &fakeS3{err: errors.New("access denied")}, bucket: "b", region: "r"}

	_, err := store.Save(context.Background(), Object{WorkspaceID: "ws-1", Name: "a.txt"}, strings.NewReader("x"))
	assert.ErrorContains(t, err, "access denied")
}
