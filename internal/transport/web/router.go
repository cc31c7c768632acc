package web

import (
	"log"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/EgorLis/hashdrop/internal/docs"
	"github.com/EgorLis/hashdrop/internal/domain"
	"github.com/EgorLis/hashdrop/internal/logx"
	"github.com/EgorLis/hashdrop/internal/transport/web/mw"
	v1 "github.com/EgorLis/hashdrop/internal/transport/web/v1"
	"github.com/EgorLis/hashdrop/internal/transport/web/v1/files"
	"github.com/EgorLis/hashdrop/internal/transport/web/v1/health"
)

func newRouter(hh *health.Handler, fh *files.Handler, metrics http.Handler, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /v1/healthz", hh.Liveness)
	mux.HandleFunc("GET /v1/readyz", hh.Readiness)

	// v2: подписанные ссылки (тело формы ограничивает сам хендлер)
	mux.HandleFunc("/api/v2/s3_bucket/presigned-url", allow(http.MethodPost, logger, fh.RequestUpload))
	mux.HandleFunc("/api/v2/s3_bucket/upload-file-using-presigned-url", allow(http.MethodPost, logger, fh.CommitUpload))
	mux.HandleFunc("/api/v2/s3_bucket/download-presigned-url", allow(http.MethodPost, logger, limitBody(64<<10, fh.RequestDownload)))
	mux.HandleFunc("/api/v2/s3_bucket/download-file-using-presigned-url", allow(http.MethodPost, logger, limitBody(64<<10, fh.DownloadWithCapability)))
	mux.HandleFunc("/api/v2/s3_bucket/list", allow(http.MethodGet, logger, fh.List))

	// v1: прямая передача через сервер
	mux.HandleFunc("/api/v1/s3_bucket/upload", allow(http.MethodPost, logger, fh.UploadDirect))
	mux.HandleFunc("/api/v1/s3_bucket/download", allow(http.MethodGet, logger, fh.DownloadDirect))

	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	// swagger
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// 🔗 middleware
	return mw.WithRequestID(mw.Logging(logger)(gzhttp.GzipHandler(mux)))
}

// allow — 405 в общем конверте вместо текстового ответа ServeMux.
// GET пропускает и HEAD.
func allow(method string, logger *log.Logger, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method && !(method == http.MethodGet && r.Method == http.MethodHead) {
			logx.Warn(logger, mw.RequestIDFromCtx(r.Context()), "router", "method not allowed", "method", r.Method, "path", r.URL.Path)
			w.Header().Set("Allow", method)
			v1.WriteDomainError(w, r, domain.Errorf(domain.ErrMethodNotAllowed, "%s is not supported, use %s", r.Method, method))
			return
		}
		h(w, r)
	}
}

func limitBody(n int64, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, n)
		h(w, r)
	}
}
