package health

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/EgorLis/hashdrop/internal/domain"
	"github.com/EgorLis/hashdrop/internal/logx"
	"github.com/EgorLis/hashdrop/internal/transport/web/mw"
	v1 "github.com/EgorLis/hashdrop/internal/transport/web/v1"
)

type Pinger interface {
	Ping(context.Context) error
}

type Handler struct {
	Log     *log.Logger
	DB      Pinger
	Cache   Pinger // nil, если Redis не настроен
	Storage Pinger
}

// Liveness godoc
// @Summary      Liveness probe
// @Description  Проверка, жив ли сервис (не зависит от БД/кэша/хранилища)
// @Tags         health
// @Produce      json
// @Success      200  {object}  domain.APIEnvelope{data=string}
// @Router       /v1/healthz [get]
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	v1.WriteOKData(w, r, "ok")
}

// Readiness godoc
// @Summary      Readiness probe
// @Description  Проверка готовности: пинг реестра, кэша и хранилища
// @Tags         health
// @Produce      json
// @Success      200  {object}  domain.APIEnvelope{data=string}
// @Failure      503  {object}  domain.APIEnvelope
// @Router       /v1/readyz [get]
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	const op = "health.readiness"
	reqID := mw.RequestIDFromCtx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	deps := []struct {
		name string
		p    Pinger
	}{
		{"db", h.DB},
		{"cache", h.Cache},
		{"storage", h.Storage},
	}
	for _, d := range deps {
		if d.p == nil {
			continue
		}
		if err := d.p.Ping(ctx); err != nil {
			logx.Error(h.Log, reqID, op, d.name+" ping failed", err)
			v1.WriteEnvelope(w, r, http.StatusServiceUnavailable,
				domain.Fail(domain.ErrCodeUnexpected, domain.KindUnexpected, d.name+" is not ready"))
			return
		}
	}

	v1.WriteOKData(w, r, "ready")
}
