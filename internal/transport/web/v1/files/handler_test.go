package files

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/EgorLis/hashdrop/internal/domain"
)

const hash = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

var key = domain.NewObjectKey("myBucket", hash)

type fakeWorkflow struct {
	gotCand domain.UploadCandidate
	gotBody []byte
	gotURL  string
	gotRef  string
	gotList [2]string
	err     error
	dl      domain.Download
}

func (f *fakeWorkflow) capture(cand domain.UploadCandidate) {
	f.gotCand = cand
	rc, err := cand.Open()
	if err != nil {
		return
	}
	defer rc.Close()
	f.gotBody, _ = io.ReadAll(rc)
}

func (f *fakeWorkflow) capability(dir domain.Direction) domain.TransferCapability {
	now := time.Now()
	return domain.TransferCapability{
		Direction: dir,
		ObjectKey: key,
		URL:       "https://files.s3.amazonaws.com/" + key.String() + "?X-Amz-Signature=1",
		IssuedAt:  now,
		ExpiresAt: now.Add(5 * time.Minute),
	}
}

func (f *fakeWorkflow) RequestUpload(_ context.Context, cand domain.UploadCandidate) (domain.TransferCapability, error) {
	f.capture(cand)
	if f.err != nil {
		return domain.TransferCapability{}, f.err
	}
	return f.capability(domain.DirectionUpload), nil
}

func (f *fakeWorkflow) CommitUpload(_ context.Context, cand domain.UploadCandidate, u string) (domain.ObjectKey, error) {
	f.capture(cand)
	f.gotURL = u
	return key, f.err
}

func (f *fakeWorkflow) RequestDownload(_ context.Context, ref string) (domain.TransferCapability, error) {
	f.gotRef = ref
	if f.err != nil {
		return domain.TransferCapability{}, f.err
	}
	return f.capability(domain.DirectionDownload), nil
}

func (f *fakeWorkflow) DownloadWithCapability(_ context.Context, u string) (domain.Download, error) {
	f.gotURL = u
	return f.dl, f.err
}

func (f *fakeWorkflow) List(_ context.Context, prefix, suffix string) ([]domain.ObjectKey, error) {
	f.gotList = [2]string{prefix, suffix}
	return []domain.ObjectKey{key}, f.err
}

func (f *fakeWorkflow) PutDirect(_ context.Context, cand domain.UploadCandidate) (domain.ObjectKey, error) {
	f.capture(cand)
	return key, f.err
}

func (f *fakeWorkflow) GetDirect(_ context.Context, ref string) (domain.Download, error) {
	f.gotRef = ref
	return f.dl, f.err
}

type part struct {
	name, filename string
	body           []byte
}

func multipartRequest(c *qt.C, target string, parts []part, fields map[string]string) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.name, p.filename)
		c.Assert(err, qt.IsNil)
		_, err = fw.Write(p.body)
		c.Assert(err, qt.IsNil)
	}
	for k, v := range fields {
		c.Assert(mw.WriteField(k, v), qt.IsNil)
	}
	c.Assert(mw.Close(), qt.IsNil)
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newHandler(wf *fakeWorkflow) *Handler {
	return &Handler{Log: log.New(io.Discard, "", 0), Workflow: wf, MaxUploadSize: 1 << 20}
}

func decode(c *qt.C, rec *httptest.ResponseRecorder) map[string]any {
	var env map[string]any
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &env), qt.IsNil)
	return env
}

func TestRequestUploadReturnsCapability(t *testing.T) {
	c := qt.New(t)
	wf := &fakeWorkflow{}
	rec := httptest.NewRecorder()

	req := multipartRequest(c, "/api/v2/s3_bucket/presigned-url", []part{{"file", "report.pdf", []byte("hello world")}}, nil)
	newHandler(wf).RequestUpload(rec, req)

	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(wf.gotCand.Name, qt.Equals, "report.pdf")
	c.Assert(wf.gotCand.Size, qt.Equals, int64(11))
	c.Assert(string(wf.gotBody), qt.Equals, "hello world")

	resp := decode(c, rec)["response"].(map[string]any)
	c.Assert(resp["type"], qt.Equals, "Upload")
	c.Assert(resp["expiration"], qt.Equals, "5Min")
	c.Assert(resp["valid"], qt.Equals, true)
	c.Assert(resp["objectKey"], qt.Equals, key.String())
	c.Assert(resp["cid"], qt.Matches, "bafkrei.*")
}

func TestRequestUploadRejectsMultipleFiles(t *testing.T) {
	c := qt.New(t)
	rec := httptest.NewRecorder()

	req := multipartRequest(c, "/", []part{
		{"file", "a.txt", []byte("a")},
		{"file", "b.txt", []byte("b")},
	}, nil)
	newHandler(&fakeWorkflow{}).RequestUpload(rec, req)

	c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(decode(c, rec)["error"].(map[string]any)["kind"], qt.Equals, "MultipleFileSelection")
}

func TestRequestUploadCountsEmptyParts(t *testing.T) {
	c := qt.New(t)
	wf := &fakeWorkflow{}
	rec := httptest.NewRecorder()

	req := multipartRequest(c, "/", []part{
		{"file", "empty.txt", nil},
		{"file", "a.txt", []byte("a")},
	}, nil)
	newHandler(wf).RequestUpload(rec, req)
	c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(decode(c, rec)["error"].(map[string]any)["kind"], qt.Equals, "MultipleFileSelection")
	c.Assert(wf.gotCand.Name, qt.Equals, "")
}

func TestRequestUploadSingleEmptyPart(t *testing.T) {
	c := qt.New(t)
	rec := httptest.NewRecorder()

	req := multipartRequest(c, "/", []part{{"file", "empty.txt", nil}}, nil)
	newHandler(&fakeWorkflow{}).RequestUpload(rec, req)
	c.Assert(rec.Code, qt.Equals, http.StatusNotAcceptable)
	c.Assert(decode(c, rec)["error"].(map[string]any)["kind"], qt.Equals, "EmptyFile")
}

func TestRequestUploadNoFile(t *testing.T) {
	c := qt.New(t)
	rec := httptest.NewRecorder()

	req := multipartRequest(c, "/", nil, map[string]string{"other": "x"})
	newHandler(&fakeWorkflow{}).RequestUpload(rec, req)
	c.Assert(rec.Code, qt.Equals, http.StatusNotAcceptable)
	c.Assert(decode(c, rec)["error"].(map[string]any)["kind"], qt.Equals, "EmptyFile")
}

func TestRequestUploadNotMultipart(t *testing.T) {
	c := qt.New(t)
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	newHandler(&fakeWorkflow{}).RequestUpload(rec, req)
	c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)
}

func TestRequestUploadBodyTooLarge(t *testing.T) {
	c := qt.New(t)
	rec := httptest.NewRecorder()

	h := newHandler(&fakeWorkflow{})
	h.MaxUploadSize = 1024
	req := multipartRequest(c, "/", []part{{"file", "big.bin", make([]byte, 3<<20)}}, nil)
	h.RequestUpload(rec, req)
	c.Assert(rec.Code, qt.Equals, http.StatusRequestEntityTooLarge)
}

func TestRequestUploadWorkflowError(t *testing.T) {
	c := qt.New(t)
	rec := httptest.NewRecorder()

	wf := &fakeWorkflow{err: domain.Errorf(domain.ErrAlreadyExists, "file already exists with name: %s", key)}
	req := multipartRequest(c, "/", []part{{"file", "report.pdf", []byte("x")}}, nil)
	newHandler(wf).RequestUpload(rec, req)

	c.Assert(rec.Code, qt.Equals, http.StatusConflict)
	e := decode(c, rec)["error"].(map[string]any)
	c.Assert(e["kind"], qt.Equals, "AlreadyExists")
	c.Assert(e["text"], qt.Equals, "already exists: file already exists with name: "+key.String())
}

func TestCommitUpload(t *testing.T) {
	c := qt.New(t)
	wf := &fakeWorkflow{}
	rec := httptest.NewRecorder()
	u := "https://files.s3.amazonaws.com/" + key.String() + "?X-Amz-Signature=1"

	req := multipartRequest(c, "/", []part{{"file", "report.pdf", []byte("hello world")}}, map[string]string{"presignedUrl": u})
	newHandler(wf).CommitUpload(rec, req)

	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(wf.gotURL, qt.Equals, u)
	c.Assert(decode(c, rec)["response"].(map[string]any)["objectKey"], qt.Equals, key.String())
}

func TestCommitUploadRequiresURL(t *testing.T) {
	c := qt.New(t)
	rec := httptest.NewRecorder()

	req := multipartRequest(c, "/", []part{{"file", "report.pdf", []byte("x")}}, nil)
	newHandler(&fakeWorkflow{}).CommitUpload(rec, req)
	c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(decode(c, rec)["error"].(map[string]any)["kind"], qt.Equals, "BadParams")
}

func TestCommitUploadExpired(t *testing.T) {
	c := qt.New(t)
	rec := httptest.NewRecorder()

	wf := &fakeWorkflow{err: domain.Errorf(domain.ErrCapabilityExpired, "presigned url expired or was tampered with")}
	req := multipartRequest(c, "/", []part{{"file", "report.pdf", []byte("x")}}, map[string]string{"presignedUrl": "https://h/a/b"})
	newHandler(wf).CommitUpload(rec, req)
	c.Assert(rec.Code, qt.Equals, http.StatusForbidden)
}

func TestRequestDownload(t *testing.T) {
	c := qt.New(t)
	wf := &fakeWorkflow{}
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(url.Values{"objectName": {key.String()}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	newHandler(wf).RequestDownload(rec, req)

	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(wf.gotRef, qt.Equals, key.String())
	c.Assert(decode(c, rec)["response"].(map[string]any)["type"], qt.Equals, "Download")
}

func TestRequestDownloadNotFound(t *testing.T) {
	c := qt.New(t)
	rec := httptest.NewRecorder()

	wf := &fakeWorkflow{err: domain.Errorf(domain.ErrNotFound, "file not exists with name: %s", key)}
	req := httptest.NewRequest(http.MethodPost, "/?objectName="+url.QueryEscape(key.String()), nil)
	newHandler(wf).RequestDownload(rec, req)
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)
}

func TestDownloadWithCapabilityStreams(t *testing.T) {
	c := qt.New(t)
	rec := httptest.NewRecorder()

	wf := &fakeWorkflow{dl: domain.Download{
		ObjectKey:   key,
		Body:        io.NopCloser(strings.NewReader("hello world")),
		Size:        11,
		ContentType: "text/plain",
	}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(url.Values{"presignedUrl": {"https://h/" + key.String()}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	newHandler(wf).DownloadWithCapability(rec, req)

	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(rec.Body.String(), qt.Equals, "hello world")
	c.Assert(rec.Header().Get("Content-Type"), qt.Equals, "text/plain")
	c.Assert(rec.Header().Get("Content-Length"), qt.Equals, "11")
	c.Assert(rec.Header().Get("Content-Disposition"), qt.Equals, "attachment; filename="+hash)
}

func TestDownloadWithCapabilityEmpty(t *testing.T) {
	c := qt.New(t)
	rec := httptest.NewRecorder()

	wf := &fakeWorkflow{err: domain.Errorf(domain.ErrEmptyResult, "empty object")}
	req := httptest.NewRequest(http.MethodPost, "/?presignedUrl=https://h/a/b", nil)
	newHandler(wf).DownloadWithCapability(rec, req)
	c.Assert(rec.Code, qt.Equals, http.StatusBadGateway)
}

func TestList(t *testing.T) {
	c := qt.New(t)
	wf := &fakeWorkflow{}
	rec := httptest.NewRecorder()

	newHandler(wf).List(rec, httptest.NewRequest(http.MethodGet, "/?startWith=myBucket/&endWith=e9", nil))
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(wf.gotList, qt.Equals, [2]string{"myBucket/", "e9"})
	resp := decode(c, rec)["response"].(map[string]any)
	c.Assert(resp["count"], qt.Equals, 1.0)
}

func TestUploadAndDownloadDirect(t *testing.T) {
	c := qt.New(t)
	wf := &fakeWorkflow{}

	rec := httptest.NewRecorder()
	req := multipartRequest(c, "/", []part{{"file", "report.pdf", []byte("hello world")}}, nil)
	newHandler(wf).UploadDirect(rec, req)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(string(wf.gotBody), qt.Equals, "hello world")

	wf.dl = domain.Download{ObjectKey: key, Body: io.NopCloser(strings.NewReader("hello world")), Size: 11}
	rec = httptest.NewRecorder()
	newHandler(wf).DownloadDirect(rec, httptest.NewRequest(http.MethodGet, "/?objectName="+url.QueryEscape(key.String()), nil))
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(wf.gotRef, qt.Equals, key.String())
	c.Assert(rec.Header().Get("Content-Type"), qt.Equals, "application/octet-stream")
	c.Assert(rec.Body.String(), qt.Equals, "hello world")
}
