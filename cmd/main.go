package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"receivables-desk/internal/clients"
	"receivables-desk/internal/config"
	"receivables-desk/internal/repository"
	"receivables-desk/internal/service"
	"receivables-desk/internal/transport/rest"
	"receivables-desk/internal/transport/websocket"
	"receivables-desk/pkg/database/postgres"
	"receivables-desk/pkg/metrics"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system env or defaults")
	}

	// top-level context which we can cancel on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.Load()

	db := mustInitPostgres(cfg.Postgres)
	defer postgres.Close(db)

	redisClient := mustInitRedis(cfg.Redis)
	defer redisClient.Close()

	storageClient, err := clients.NewLocalStorage(cfg.Storage.Dir, cfg.Storage.PublicPrefix, cfg.Storage.ExternalURL)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}

	exportStorage := storageClient.WithNamespace(clients.ExportNamespace)

	var (
		attachmentStore service.BlobStore = storageClient
		exportStore     service.BlobStore = exportStorage
		s3Client        *clients.S3Client
	)
	if cfg.S3.Enabled {
		s3Client = mustInitS3(ctx, cfg.S3, cfg.Storage)
		attachmentStore = s3Client
		exportStore = s3Client
	}

	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)
	wsClient := clients.NewWebSocketClient(wsHub)

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.NewCollector()
	}

	receivableRepo := repository.NewReceivableRepository(db)
	securityRepo := repository.NewSecurityRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	receivableSvc := service.NewReceivableService(receivableRepo, redisClient, exportStore, wsClient, collector, cfg.ExportPrefix)
	attachmentSvc := service.NewAttachmentService(attachmentStore, cfg.Storage.MaxUploadMB<<20, collector)
	checkoutSvc := service.NewCheckoutService(securityRepo, paymentRepo, redisClient, time.Duration(cfg.SecurityCacheTTL)*time.Second, wsClient, collector)
	exportSvc := service.NewExportService(redisClient)

	handler := rest.NewHandler(receivableSvc, attachmentSvc, checkoutSvc, exportSvc, cfg.ExportPrefix, int64(cfg.Storage.MaxUploadMB)<<20)
	router := handler.InitRouter()

	// /files, /ws and /metrics sit next to the API router
	root := chi.NewRouter()

	root.Get("/files/*", func(w http.ResponseWriter, r *http.Request) {
		file := chi.URLParam(r, "*")

		// S3 references are presigned per read so stored links never expire
		if s3Client != nil {
			u, err := s3Client.PresignedURL(r.Context(), file)
			if err != nil {
				log.Printf("[S3] presign %s: %v", file, err)
				http.Error(w, "failed to access file", http.StatusInternalServerError)
				return
			}
			http.Redirect(w, r, u, http.StatusFound)
			return
		}

		path, err := storageClient.Path(file)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "failed to access file", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", clients.OriginalName(file)))
		http.ServeFile(w, r, path)
	})

	root.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		subscriber := r.URL.Query().Get("subscriber")
		if subscriber == "" {
			http.Error(w, "subscriber required", http.StatusBadRequest)
			return
		}
		log.Printf("[WS] connected: subscriber=%s", subscriber)
		wsHub.HandleWebSocket(w, r, subscriber)
	})

	if collector != nil {
		root.Handle("/metrics", collector.Handler())
	}

	root.Mount("/", router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      withCORS(root),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on :%s\n", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srvErr <- err
			return
		}
		srvErr <- nil
	}()

	// generated exports are only kept for 30 minutes; uploads live outside
	// the export namespace and stay
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := exportStorage.CleanupOlderThan(30 * time.Minute); err != nil {
					log.Printf("storage cleanup error: %v", err)
				}
			}
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-srvErr:
		if err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	case sig := <-stop:
		log.Printf("Shutdown signal received: %v", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server Shutdown error: %v", err)
		}

		// stops the websocket hub and the cleaner
		cancel()

		log.Println("Shutdown complete")
	}
}

func mustInitPostgres(cfg config.PostgresConfig) *sql.DB {
	db, err := postgres.NewPostgresConnection(postgres.ConnectionInfo{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.User,
		DBName:   cfg.DBName,
		SSLMode:  cfg.SSLMode,
		Password: cfg.Password,
	})
	if err != nil {
		log.Fatalf("postgres init error: %v", err)
	}
	return db
}

func mustInitRedis(cfg config.RedisConfig) *clients.RedisClient {
	client, err := clients.NewRedisClient(clients.RedisConfig{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: time.Duration(cfg.DialTimeout) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		Prefix:      cfg.Prefix,
	})
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}
	return client
}

func mustInitS3(ctx context.Context, cfg config.S3Config, storage config.StorageConfig) *clients.S3Client {
	initCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := clients.NewS3Client(initCtx, clients.S3Config{
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		Bucket:          cfg.Bucket,
		UseSSL:          cfg.UseSSL,
		Region:          cfg.Region,
		Prefix:          cfg.Prefix,
		PublicPrefix:    storage.PublicPrefix,
		BaseURL:         storage.ExternalURL,
	})
	if err != nil {
		log.Fatalf("s3 init error: %v", err)
	}
	log.Printf("[S3] storing attachments and exports in bucket %s", cfg.Bucket)
	return client
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")

			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Subscriber, X-Requested-With")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
