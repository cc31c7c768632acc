package workflow

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/EgorLis/hashdrop/internal/domain"
)

var errMock = errors.New("mock error")

// ---------- fake S3: шлюз + http-эндпоинт для подписанных ссылок ----------

type fakeStore struct {
	mu      sync.Mutex
	objects map[domain.ObjectKey][]byte
	types   map[domain.ObjectKey]string

	// statusOverride подменяет ответ на прямую передачу (403, 500...)
	statusOverride int
	existsErr      error
	expiresShift   time.Duration

	existsCalls int
	signCalls   int
	putCalls    int
	lastName    string
	getCtx      context.Context

	srv *httptest.Server
}

func newFakeStore() *fakeStore {
	s := &fakeStore{
		objects: map[domain.ObjectKey][]byte{},
		types:   map[domain.ObjectKey]string{},
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	return s
}

func (s *fakeStore) Close() { s.srv.Close() }

func (s *fakeStore) serveHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	override := s.statusOverride
	s.mu.Unlock()
	if override != 0 {
		w.WriteHeader(override)
		return
	}
	key := domain.ObjectKey(strings.TrimPrefix(r.URL.Path, "/"))
	switch r.Method {
	case http.MethodPut:
		b, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.objects[key] = b
		s.types[key] = r.Header.Get("Content-Type")
		s.putCalls++
		s.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		s.mu.Lock()
		b, ok := s.objects[key]
		s.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(b)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *fakeStore) urlFor(key domain.ObjectKey) string {
	return s.srv.URL + "/" + key.String() + "?X-Amz-Expires=300&X-Amz-Signature=deadbeef"
}

func (s *fakeStore) Exists(_ context.Context, key domain.ObjectKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.existsCalls++
	if s.existsErr != nil {
		return false, s.existsErr
	}
	_, ok := s.objects[key]
	return ok, nil
}

func (s *fakeStore) Put(_ context.Context, key domain.ObjectKey, r io.Reader, _ int64, contentType string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCalls++
	s.objects[key] = b
	s.types[key] = contentType
	return nil
}

func (s *fakeStore) Get(ctx context.Context, key domain.ObjectKey) (io.ReadCloser, domain.BlobInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCtx = ctx
	b, ok := s.objects[key]
	if !ok {
		return nil, domain.BlobInfo{}, errMock
	}
	return io.NopCloser(bytes.NewReader(b)), domain.BlobInfo{Size: int64(len(b)), ContentType: s.types[key]}, nil
}

func (s *fakeStore) List(_ context.Context, prefix string) ([]domain.ObjectKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ObjectKey
	for k := range s.objects {
		if strings.HasPrefix(k.String(), prefix) {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *fakeStore) SignPut(_ context.Context, key domain.ObjectKey, ttl time.Duration) (domain.SignedURL, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signCalls++
	return domain.SignedURL{URL: s.urlFor(key), ExpiresAt: time.Now().Add(ttl + s.expiresShift)}, nil
}

func (s *fakeStore) SignGet(_ context.Context, key domain.ObjectKey, ttl time.Duration, name string) (domain.SignedURL, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signCalls++
	s.lastName = name
	return domain.SignedURL{URL: s.urlFor(key), ExpiresAt: time.Now().Add(ttl + s.expiresShift)}, nil
}

func (s *fakeStore) Ping(context.Context) error { return nil }

func (s *fakeStore) set(key domain.ObjectKey, b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = b
}

func (s *fakeStore) override(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusOverride = status
}

func (s *fakeStore) calls() (exists, sign, put int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.existsCalls, s.signCalls, s.putCalls
}

// ---------- fake ledger ----------

type fakeLedger struct {
	mu      sync.Mutex
	nextID  int64
	records map[domain.ObjectKey]domain.FileRecord
	saves   int

	saveErr error
	findErr error
	incrErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: map[domain.ObjectKey]domain.FileRecord{}}
}

func (l *fakeLedger) Save(_ context.Context, rec domain.FileRecord) (domain.FileRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.saveErr != nil {
		return domain.FileRecord{}, l.saveErr
	}
	l.saves++
	if existing, ok := l.records[rec.ObjectKey]; ok {
		return existing, nil
	}
	l.nextID++
	rec.ID = l.nextID
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	l.records[rec.ObjectKey] = rec
	return rec, nil
}

func (l *fakeLedger) FindByObjectKey(_ context.Context, key domain.ObjectKey) (domain.FileRecord, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.findErr != nil {
		return domain.FileRecord{}, false, l.findErr
	}
	rec, ok := l.records[key]
	return rec, ok, nil
}

func (l *fakeLedger) IncrementDownloads(_ context.Context, key domain.ObjectKey) (domain.FileRecord, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.incrErr != nil {
		return domain.FileRecord{}, false, l.incrErr
	}
	rec, ok := l.records[key]
	if !ok {
		return domain.FileRecord{}, false, nil
	}
	rec.DownloadCount++
	l.records[key] = rec
	return rec, true, nil
}

func (l *fakeLedger) Ping(context.Context) error { return nil }
func (l *fakeLedger) Close()                     {}

func (l *fakeLedger) get(key domain.ObjectKey) (domain.FileRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[key]
	return rec, ok
}

// ---------- fake cache ----------

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return c.data[key], nil
}

func (c *fakeCache) Set(_ context.Context, key string, val []byte, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = val
	return nil
}

func (c *fakeCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(string(c.data[key]), 10, 64)
	n++
	c.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func (c *fakeCache) Ping(context.Context) error { return nil }
func (c *fakeCache) Close()                     {}

// ---------- candidate ----------

type candidateFile struct {
	opens int
}

func (f *candidateFile) candidate(name string, data []byte) domain.UploadCandidate {
	return domain.UploadCandidate{
		Name:        name,
		ContentType: "application/pdf",
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			f.opens++
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}
