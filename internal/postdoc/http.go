// Пакет HTTP API сервиса постов: сессии редактирования, команды редактора, сохранение и выгрузка постов.
//
// Основные возможности:
//   - Открытие сессии редактирования поста и применение команд панели инструментов.
//   - Сохранение очищенного содержимого в таблицу posts.
//   - Выгрузка поста в Markdown, PDF, HTML-страницу и TipTap JSON.
//   - Метрики Prometheus на отдельном адресе.
package postdoc

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/agencia-site/postdoc/internal/postdoc/config"
	"github.com/agencia-site/postdoc/internal/postdoc/cronmanager"
	"github.com/agencia-site/postdoc/internal/postdoc/sessions"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

type Services struct {
	db       *gorm.DB
	cfg      *config.Config
	sessions *sessions.Manager
	cron     *cronmanager.CronManager
	version  string

	e       *echo.Echo
	metrics *echo.Echo

	registry   *prometheus.Registry
	transforms *prometheus.CounterVec
}

func ServerHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderServer, "Postdoc")
		return next(c)
	}
}

// NewServer собирает API и сервер метрик. Серверы запускаются через Run.
func NewServer(db *gorm.DB, cfg *config.Config, version string) (*Services, error) {
	sm, err := sessions.NewManager(cfg.MaxSessions, sessions.WithHistoryDepth(cfg.HistoryDepth))
	if err != nil {
		return nil, err
	}

	s := &Services{
		db:       db,
		cfg:      cfg,
		sessions: sm,
		version:  version,
		registry: prometheus.NewRegistry(),
	}

	if err := s.registerMetrics(); err != nil {
		return nil, err
	}

	s.cron = cronmanager.NewCronManager(cronmanager.JobRegistry{
		"sessions_sweep": cronmanager.Job{
			Func:     func() { s.sessions.SweepIdle(cfg.SessionIdle()) },
			Schedule: "* * * * *", // every minute
		},
	})
	if err := s.cron.LoadJobs(); err != nil {
		return nil, err
	}

	s.e = s.newAPI()
	s.metrics = echo.New()
	s.metrics.HideBanner = true
	s.metrics.HidePort = true
	s.metrics.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: s.registry}))

	return s, nil
}

func (s *Services) registerMetrics() error {
	bootTimeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "postdoc",
		Name:      "boot_time",
		Help:      "Server startup time",
	})
	bootTimeGauge.Set(float64(time.Now().UnixMilli()))

	s.transforms = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "postdoc",
		Name:      "transforms_total",
		Help:      "Editor commands by op and result",
	}, []string{"op", "result"})

	sessionsGauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "postdoc",
		Name:      "editing_sessions",
		Help:      "Open editing sessions",
	}, func() float64 { return float64(s.sessions.Len()) })

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		bootTimeGauge, s.transforms, sessionsGauge,
	} {
		if err := s.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *Services) newAPI() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httpErrorHandler
	e.Validator = NewRequestValidator()

	e.Use(ServerHeader)
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit(s.cfg.BodyLimit))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     9,
		MinLength: 2048,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "postdoc",
		Registerer: s.registry,
	}))
	e.Pre(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/metrics")
		},
	}))

	apiGroup := e.Group("/api/")

	s.AddSessionServices(apiGroup)
	s.AddPostServices(apiGroup)

	apiGroup.GET("version/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"version":       s.version,
			"history_depth": s.cfg.HistoryDepth,
			"max_sessions":  s.cfg.MaxSessions,
		})
	})

	apiGroup.GET("_health/", func(c echo.Context) error {
		if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	return e
}

// Run запускает API, сервер метрик и расписание задач. При отмене ctx серверы останавливаются
// с ожиданием активных запросов.
func (s *Services) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	s.cron.Start()

	g.Go(func() error {
		slog.Info("API server start", "addr", s.cfg.ListenAddr)
		if err := s.e.Start(s.cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if !s.cfg.MetricsDisabled {
		g.Go(func() error {
			slog.Info("Metrics server start", "addr", s.cfg.MetricsAddr)
			if err := s.metrics.Start(s.cfg.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down gracefully")
		s.cron.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(s.e.Shutdown(shutdownCtx), s.metrics.Shutdown(shutdownCtx))
	})

	return g.Wait()
}
