package awss3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	qt "github.com/frankban/quicktest"
	"github.com/juju/clock/testclock"

	"github.com/EgorLis/hashdrop/internal/capability"
	"github.com/EgorLis/hashdrop/internal/domain"
)

const hash = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

func newOffline(c *qt.C) (*Storage, *testclock.Clock) {
	st, err := New(context.Background(), Config{
		Endpoint:  "http://localhost:9000",
		Region:    "us-east-1",
		Bucket:    "files",
		AccessKey: "AKIDEXAMPLE",
		SecretKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
		PathStyle: true,
	}, log.New(io.Discard, "", 0))
	c.Assert(err, qt.IsNil)
	clk := testclock.NewClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	st.clock = clk
	return st, clk
}

func TestSignPut(t *testing.T) {
	c := qt.New(t)
	st, clk := newOffline(c)
	key := domain.NewObjectKey("myBucket", hash)

	signed, err := st.SignPut(context.Background(), key, capability.TTL)
	c.Assert(err, qt.IsNil)
	c.Assert(signed.ExpiresAt, qt.Equals, clk.Now().Add(capability.TTL))

	u, err := url.Parse(signed.URL)
	c.Assert(err, qt.IsNil)
	c.Assert(u.Host, qt.Equals, "localhost:9000")
	c.Assert(u.Path, qt.Equals, "/files/myBucket/"+hash)
	c.Assert(u.Query().Get("X-Amz-Expires"), qt.Equals, "300")

	d, err := capability.Codec{Bucket: "files", PathStyle: true}.Decode(signed.URL)
	c.Assert(err, qt.IsNil)
	c.Assert(d.Key, qt.Equals, key)
}

func TestSignGetSetsDisposition(t *testing.T) {
	c := qt.New(t)
	st, _ := newOffline(c)

	signed, err := st.SignGet(context.Background(), domain.NewObjectKey("myBucket", hash), time.Minute, "q1 report.pdf")
	c.Assert(err, qt.IsNil)
	u, err := url.Parse(signed.URL)
	c.Assert(err, qt.IsNil)
	c.Assert(u.Query().Get("response-content-disposition"), qt.Equals, `attachment; filename="q1 report.pdf"`)
}

func TestIsNotFound(t *testing.T) {
	c := qt.New(t)
	c.Assert(isNotFound(&smithy.GenericAPIError{Code: "NotFound"}), qt.IsTrue)
	c.Assert(isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}), qt.IsFalse)
	c.Assert(isNotFound(io.EOF), qt.IsFalse)
}

// fakeS3 — минимальный path-style S3: PUT, GET, HEAD и ListObjectsV2.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	maxKeys string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if bucket != "files" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch {
	case r.Method == http.MethodGet && r.URL.Query().Get("list-type") == "2":
		f.maxKeys = r.URL.Query().Get("max-keys")
		prefix := r.URL.Query().Get("prefix")
		var sb strings.Builder
		sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"><Name>files</Name><IsTruncated>false</IsTruncated>`)
		for k, b := range f.objects {
			if strings.HasPrefix(k, prefix) {
				fmt.Fprintf(&sb, "<Contents><Key>%s</Key><Size>%d</Size></Contents>", k, len(b))
			}
		}
		sb.WriteString("</ListBucketResult>")
		w.Header().Set("Content-Type", "application/xml")
		_, _ = io.WriteString(w, sb.String())
	case r.Method == http.MethodPut:
		b, _ := io.ReadAll(r.Body)
		f.objects[key] = b
		f.types[key] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag-1"`)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet || r.Method == http.MethodHead:
		b, ok := f.objects[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", f.types[key])
		w.Header().Set("Content-Length", fmt.Sprint(len(b)))
		w.Header().Set("ETag", `"etag-1"`)
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write(b)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) object(key string) ([]byte, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objects[key], f.maxKeys
}

func TestPutGetListRoundTrip(t *testing.T) {
	c := qt.New(t)
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	c.Cleanup(srv.Close)

	st, err := New(context.Background(), Config{
		Endpoint:  srv.URL,
		Region:    "us-east-1",
		Bucket:    "files",
		AccessKey: "AKIDEXAMPLE",
		SecretKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
		PathStyle: true,
	}, log.New(io.Discard, "", 0))
	c.Assert(err, qt.IsNil)
	ctx := context.Background()
	key := domain.NewObjectKey("myBucket", hash)
	body := []byte("%PDF-1.4 report")

	ok, err := st.Exists(ctx, key)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)

	err = st.Put(ctx, key, bytes.NewReader(body), int64(len(body)), "application/pdf")
	c.Assert(err, qt.IsNil)
	stored, _ := fake.object(key.String())
	c.Assert(stored, qt.DeepEquals, body)

	ok, err = st.Exists(ctx, key)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)

	rc, info, err := st.Get(ctx, key)
	c.Assert(err, qt.IsNil)
	got, err := io.ReadAll(rc)
	rc.Close()
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, body)
	c.Assert(info.Size, qt.Equals, int64(len(body)))
	c.Assert(info.ContentType, qt.Equals, "application/pdf")

	keys, err := st.List(ctx, "myBucket/")
	c.Assert(err, qt.IsNil)
	c.Assert(keys, qt.DeepEquals, []domain.ObjectKey{key})
	_, maxKeys := fake.object(key.String())
	c.Assert(maxKeys, qt.Equals, "1000")
}
