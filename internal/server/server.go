// Package server boots the catalog service: it constructs every backing
// dependency explicitly, wires the HTTP stack, and owns graceful shutdown.
//
// Boot policy: the primary store is mandatory, without MongoDB there is
// nothing authoritative to serve, so startup fails. Every other backend
// (search, broker, blob store, cache) degrades: the service comes up,
// logs the gap, and the affected fan-out steps fail visibly in metrics
// instead of blocking requests.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/vipani/app/controllers"
	"github.com/shashiranjanraj/vipani/app/repositories"
	"github.com/shashiranjanraj/vipani/app/routes"
	"github.com/shashiranjanraj/vipani/app/services"
	"github.com/shashiranjanraj/vipani/config"
	"github.com/shashiranjanraj/vipani/pkg/blob"
	"github.com/shashiranjanraj/vipani/pkg/bus"
	"github.com/shashiranjanraj/vipani/pkg/cache"
	"github.com/shashiranjanraj/vipani/pkg/logger"
	"github.com/shashiranjanraj/vipani/pkg/metrics"
	"github.com/shashiranjanraj/vipani/pkg/middleware"
	"github.com/shashiranjanraj/vipani/pkg/reqid"
	"github.com/shashiranjanraj/vipani/pkg/response"
	"github.com/shashiranjanraj/vipani/pkg/router"
	"github.com/shashiranjanraj/vipani/pkg/search"
)

const shutdownTimeout = 10 * time.Second

// Server holds the constructed dependencies so shutdown can release them in
// order.
type Server struct {
	http       *http.Server
	mongo      *mongo.Client
	publisher  *bus.Publisher
	cache      *cache.Cache
	logHandler *logger.MongoHandler
}

// New builds the whole service. Nothing is bound lazily: when New returns,
// every dependency a request may touch is either connected or explicitly
// absent.
func New(ctx context.Context) (*Server, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}

	s := &Server{}

	// Primary store, mandatory.
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(config.MongoURI()))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	s.mongo = client
	db := client.Database(config.MongoDatabase())

	// Optional Mongo log persistence, fanned out alongside stdout.
	if col := config.MongoLogCollection(); col != "" {
		s.logHandler = logger.NewMongoHandler(db.Collection(col))
		logger.SetHandler(logger.NewMultiHandler(
			slog.NewJSONHandler(os.Stdout, nil),
			s.logHandler,
		))
	}

	// Search index: degrade on failure, reconcile out-of-band.
	idx, err := search.New(search.Config{
		Addresses: []string{config.ElasticAddr()},
		Username:  config.ElasticUsername(),
		Password:  config.ElasticPassword(),
		Index:     config.ElasticIndex(),
	})
	if err != nil {
		return nil, err
	}
	if err := idx.EnsureSchema(ctx); err != nil {
		logger.Error("search index bootstrap failed", "index", idx.Name(), "error", err)
	}

	// Event bus: degrade to a visible no-op when the broker is down.
	var publisher services.EventPublisher
	if p, err := bus.Connect(config.AMQPURL()); err != nil {
		logger.Error("broker unavailable, events will be dropped", "error", err)
		publisher = bus.NopPublisher{}
	} else {
		s.publisher = p
		publisher = p
	}

	// Blob store: absent means uploads fail fast with 503.
	blobs, err := blob.Open(ctx, db)
	if err != nil {
		logger.Error("blob store unavailable, uploads disabled", "error", err)
		blobs = nil
	}

	// Read cache, optional.
	if c, err := cache.New(ctx, config.RedisAddr(), config.RedisPassword()); err != nil {
		logger.Warn("cache unavailable, reads uncached", "error", err)
	} else {
		s.cache = c
	}

	productRepo := repositories.NewProductRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)

	service := services.NewProductService(productRepo, categoryRepo, blobs, idx, publisher, s.cache)
	controller := controllers.NewProductController(service)

	r := router.New()
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.CatalogCORSOptions(config.CORSOrigins()...)))
	r.Use(middleware.RateLimit(300, time.Minute))

	r.Get("/healthz", "healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.Message(w, "ok")
	})
	r.Get("/metrics", "metrics", metrics.Handler())

	routes.RegisterAPI(r, controller)

	s.http = &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s, nil
}

// Run serves until ctx is cancelled, then shuts the stack down in reverse
// dependency order.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("vipani listening", "addr", s.http.Addr, "env", config.AppEnv())
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down")
	err := s.http.Shutdown(shutdownCtx)

	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	_ = s.cache.Close()
	if s.logHandler != nil {
		s.logHandler.Close()
	}
	_ = s.mongo.Disconnect(shutdownCtx)

	return err
}
