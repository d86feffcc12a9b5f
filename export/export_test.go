package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStorePutGetList(t *testing.T) {
	ctx := context.Background()
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	info, err := store.Put(ctx, "pipeline/b.json", []byte(`{"b":1}`), "application/json")
	require.NoError(t, err)
	assert.Equal(t, "pipeline/b.json", info.Key)
	assert.Equal(t, int64(7), info.Size)

	_, err = store.Put(ctx, "pipeline/a.json", []byte(`{}`), "")
	require.NoError(t, err)
	_, err = store.Put(ctx, "other/c.json", []byte(`{}`), "")
	require.NoError(t, err)

	_, err = store.Put(ctx, "pipeline/b.json", []byte(`{}`), "")
	assert.Error(t, err, "blobs are write-once")

	list, err := store.List(ctx, "pipeline/")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "pipeline/a.json", list[0].Key)

	data, err := store.Get(ctx, "pipeline/b.json")
	require.NoError(t, err)
	assert.Equal(t, `{"b":1}`, string(data))

	_, err = store.Get(ctx, "pipeline/missing.json")
	assert.True(t, errors.Is(err, ErrBlobNotFound))
}

func TestSanitizeKey(t *testing.T) {
	for _, bad := range []string{"", "  ", "/etc/passwd", "../up", "a/../../b"} {
		_, err := sanitizeKey(bad)
		assert.Error(t, err, bad)
	}
	k, err := sanitizeKey("pipeline//x.json")
	require.NoError(t, err)
	assert.Equal(t, "pipeline/x.json", k)
}

func TestExportSnapshot(t *testing.T) {
	ctx := context.Background()
	mem := db.NewMemoryStore()
	require.NoError(t, db.SeedDemoData(ctx, mem))
	board := pipeline.NewBoard(mem)

	blobs, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	at := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	exporter := NewExporter(blobs, WithClock(func() time.Time { return at }))

	snap, info, err := exporter.Export(ctx, board)
	require.NoError(t, err)

	id, err := ulid.Parse(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(at), id.Time())
	assert.Equal(t, SnapshotKey(snap.ID), info.Key)
	assert.True(t, strings.HasPrefix(info.Key, "pipeline/"))

	require.Len(t, snap.Groups, 6)
	assert.Equal(t, 6, snap.Summary.Deals)
	assert.Equal(t, 144500.0, snap.Summary.TotalValue)
	assert.Equal(t, 15000.0, snap.Summary.WonValue)

	loaded, err := exporter.Load(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.Summary, loaded.Summary)
	assert.Equal(t, models.StageLead, loaded.Groups[0].Stage.ID)
	assert.True(t, at.Equal(loaded.GeneratedAt))

	list, err := exporter.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

// fakeS3 answers the two calls an export makes: PutObject and ListObjectsV2.
type fakeS3 struct {
	puts map[string]string
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	key := strings.TrimPrefix(req.URL.Path, "/exports/")
	switch {
	case req.Method == http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		f.puts[key] = string(body)
		return &http.Response{StatusCode: 200, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"Etag": {`"etag"`}}}, nil
	case req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2":
		var b strings.Builder
		b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
		for k := range f.puts {
			b.WriteString("<Contents><Key>" + k + "</Key><Size>10</Size><LastModified>2026-01-01T00:00:00Z</LastModified></Contents>")
		}
		b.WriteString("</ListBucketResult>")
		return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(b.String())), Header: http.Header{"Content-Type": {"application/xml"}}}, nil
	}
	return &http.Response{StatusCode: 501, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
}

func TestS3StorePutAndList(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{puts: map[string]string{}}

	store, err := NewS3Store(ctx, S3Config{
		Bucket:          "exports",
		Endpoint:        "https://mock.s3.local",
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
	}, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: fake}
	})
	require.NoError(t, err)
	assert.Equal(t, "s3://exports", store.Location())

	info, err := store.Put(ctx, "pipeline/x.json", []byte(`{"ok":true}`), "application/json")
	require.NoError(t, err)
	assert.Equal(t, "pipeline/x.json", info.Key)
	assert.Contains(t, fake.puts, "pipeline/x.json")

	list, err := store.List(ctx, "pipeline/")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "pipeline/x.json", list[0].Key)
}

func TestNewS3StoreNeedsBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{})
	assert.Error(t, err)
}
