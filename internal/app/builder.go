package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/EgorLis/hashdrop/internal/capability"
	"github.com/EgorLis/hashdrop/internal/config"
	"github.com/EgorLis/hashdrop/internal/domain"
	"github.com/EgorLis/hashdrop/internal/hashing"
	redisx "github.com/EgorLis/hashdrop/internal/infra/cache/redis"
	"github.com/EgorLis/hashdrop/internal/infra/database/postgres"
	"github.com/EgorLis/hashdrop/internal/infra/storage/awss3"
	s3storage "github.com/EgorLis/hashdrop/internal/infra/storage/s3"
	"github.com/EgorLis/hashdrop/internal/transfer"
	"github.com/EgorLis/hashdrop/internal/transport/web"
	"github.com/EgorLis/hashdrop/internal/workflow"
)

// Options — то, что приходит из флагов командной строки.
type Options struct {
	EnvFile string
	Addr    string
}

type App struct {
	config *config.Config
	server *web.Server
	log    *log.Logger
	ledger domain.FilesLedger
	cache  domain.Cache
}

func Build(ctx context.Context, opts Options) (*App, error) {
	base := log.New(os.Stdout, "[app] ", log.LstdFlags)

	serverLog := log.New(base.Writer(), base.Prefix()+"[server] ", base.Flags())
	pgLog := log.New(base.Writer(), base.Prefix()+"[postgres] ", base.Flags())
	s3Log := log.New(base.Writer(), base.Prefix()+"[s3] ", base.Flags())
	redisLog := log.New(base.Writer(), base.Prefix()+"[redis] ", base.Flags())
	wfLog := log.New(base.Writer(), base.Prefix()+"[workflow] ", base.Flags())

	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("failed load config: %w", err)
	}
	base.Printf("\n  configuration: %s-------------------", cfg)

	// Неизвестный алгоритм — ошибка конфигурации, а не первого запроса.
	if _, err := hashing.New(cfg.HashAlgorithm); err != nil {
		return nil, fmt.Errorf("failed init hashing: %w", err)
	}

	base.Println("init PostgreSQL")
	pgRepo, err := postgres.NewPGRepo(ctx, pgLog, cfg.GetDSN(), cfg.DBScheme)
	if err != nil {
		return nil, fmt.Errorf("failed init postgres: %w", err)
	}
	base.Println("PostgreSQL is initialized")

	base.Printf("init S3 storage (driver=%s)", cfg.S3Driver)
	gateway, err := newGateway(ctx, cfg, s3Log)
	if err != nil {
		pgRepo.Close()
		return nil, fmt.Errorf("failed init s3: %w", err)
	}
	origin, err := gatewayOrigin(ctx, gateway, cfg.S3Folder)
	if err != nil {
		pgRepo.Close()
		return nil, fmt.Errorf("failed resolve s3 origin: %w", err)
	}
	base.Printf("S3 storage is initialized (origin=%s)", origin)

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		base.Println("init Redis")
		rc := redisx.New(redisx.Config{
			Addr:      cfg.RedisAddr,
			DB:        cfg.RedisDB,
			Password:  cfg.RedisPassword,
			Namespace: "hashdrop",
		}, redisLog)
		if err := rc.Ping(ctx); err != nil {
			pgRepo.Close()
			return nil, fmt.Errorf("failed init redis: %w", err)
		}
		cache = rc
		base.Println("Redis is initialized")
	} else {
		base.Println("REDIS_ADDR is empty, list cache disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	base.Println("init Workflow")
	wf := workflow.New(workflow.Config{
		Folder:        cfg.S3Folder,
		MaxUploadSize: cfg.MaxUploadBytes,
		HashAlgorithm: cfg.HashAlgorithm,
		CallTimeout:   cfg.CallTimeout,
		ListCacheTTL:  cfg.ListCacheTTL,
	}, workflow.Deps{
		Log:      wfLog,
		Gateway:  gateway,
		Ledger:   pgRepo,
		Issuer:   capability.NewIssuer(gateway, nil),
		Codec:    capability.Codec{Bucket: cfg.S3Bucket, PathStyle: cfg.S3PathStyle, Origin: origin},
		Transfer: transfer.New(cfg.CallTimeout),
		Cache:    cache,
		Metrics:  workflow.NewMetrics(reg),
	})

	base.Println("init Server")
	deps := web.Deps{
		Workflow:      wf,
		MaxUploadSize: cfg.MaxUploadBytes,
		DB:            pgRepo,
		Storage:       gateway,
		Metrics:       promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}
	if cache != nil {
		deps.Cache = cache
	}
	server := web.New(serverLog, listenAddr(opts.Addr, cfg.AppPort), deps)
	base.Println("Server is initialized")

	base.Println("build ended")
	return &App{
		config: cfg,
		server: server,
		log:    base,
		ledger: pgRepo,
		cache:  cache,
	}, nil
}

func newGateway(ctx context.Context, cfg *config.Config, logger *log.Logger) (domain.BlobGateway, error) {
	switch cfg.S3Driver {
	case config.DriverAWS:
		return awss3.New(ctx, awss3.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PathStyle: cfg.S3PathStyle,
		}, logger)
	default:
		return s3storage.New(s3storage.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			PathStyle: cfg.S3PathStyle,
		}, logger)
	}
}

// gatewayOrigin — scheme://host, под которым шлюз подписывает ссылки.
// Подпись считается локально, сам объект не нужен.
func gatewayOrigin(ctx context.Context, gw domain.BlobGateway, folder string) (string, error) {
	signed, err := gw.SignGet(ctx, domain.NewObjectKey(folder, "origin"), time.Minute, "")
	if err != nil {
		return "", err
	}
	return capability.OriginOf(signed.URL)
}

// listenAddr: флаг важнее APP_PORT; голый порт превращается в ":port".
func listenAddr(flagAddr, port string) string {
	addr := flagAddr
	if addr == "" {
		addr = port
	}
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	return addr
}

func (a *App) Run(ctx context.Context) error {
	a.log.Println("start application...")
	go a.server.Run()
	<-ctx.Done()
	a.log.Println("stop application...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.server.Close(stopCtx)
	a.ledger.Close()
	if a.cache != nil {
		a.cache.Close()
	}
	return nil
}
