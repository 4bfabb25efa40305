package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"

	"restaurant-chatbot/internal/source"
)

type fakeS3 struct {
	out    *s3.GetObjectOutput
	err    error
	lastIn *s3.GetObjectInput
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.lastIn = in
	return f.out, f.err
}

func TestParseURI(t *testing.T) {
	bucket, key, err := ParseURI("s3://menus/prod/menu.csv")
	require.NoError(t, err)
	require.Equal(t, "menus", bucket)
	require.Equal(t, "prod/menu.csv", key)

	for _, bad := range []string{"menu.csv", "s3://", "s3://bucket", "s3://bucket/", "s3:///key"} {
		_, _, err := ParseURI(bad)
		require.Error(t, err, bad)
	}
}

func TestIsURI(t *testing.T) {
	require.True(t, IsURI(" s3://b/k"))
	require.False(t, IsURI("/data/menu.csv"))
}

func TestNew_Validates(t *testing.T) {
	_, err := New(nil, "s3://b/k")
	require.ErrorContains(t, err, "must not be nil")

	_, err = New(&fakeS3{}, "menu.csv")
	require.Error(t, err)
}

func TestOpen_HappyPath(t *testing.T) {
	api := &fakeS3{out: &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("City,State short\nAustin,TX\n"))}}
	src, err := New(api, "s3://areas/us-cities.csv")
	require.NoError(t, err)
	require.Equal(t, "s3://areas/us-cities.csv", src.Name())

	rc, err := src.Open(context.Background())
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Contains(t, string(body), "Austin")
	require.Equal(t, "areas", *api.lastIn.Bucket)
	require.Equal(t, "us-cities.csv", *api.lastIn.Key)
}

func TestOpen_ErrorIsUnavailable(t *testing.T) {
	src, err := New(&fakeS3{err: errors.New("NoSuchKey")}, "s3://b/k.csv")
	require.NoError(t, err)
	_, err = src.Open(context.Background())
	require.ErrorIs(t, err, source.ErrUnavailable)
	require.ErrorContains(t, err, "NoSuchKey")
}

func TestOpen_EmptyBody(t *testing.T) {
	src, err := New(&fakeS3{out: &s3.GetObjectOutput{}}, "s3://b/k.csv")
	require.NoError(t, err)
	_, err = src.Open(context.Background())
	require.ErrorIs(t, err, source.ErrUnavailable)
}
