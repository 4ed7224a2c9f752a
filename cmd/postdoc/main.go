// Основной пакет сервиса постов. Загружает конфигурацию, открывает базу, применяет миграции
// и запускает HTTP API и сервер метрик до получения сигнала остановки.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agencia-site/postdoc/internal/postdoc"
	"github.com/agencia-site/postdoc/internal/postdoc/config"
	"github.com/agencia-site/postdoc/internal/postdoc/dao"
	"github.com/agencia-site/postdoc/internal/postdoc/gormlogger"
	"github.com/joho/godotenv"
)

var version string = "DEV"

// Пример запуска: go run ./cmd/postdoc --trace
func main() {
	paramQueries := flag.Bool("paramQueries", true, "Mask queries params in log")
	noMigration := flag.Bool("noMigration", false, "Turn off DB migration")
	trace := flag.Bool("trace", false, "Verbose logs and sql trace")
	flag.Parse()

	PrintBanner()

	if *trace {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Set prod log format
	if version != "DEV" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Load .env file", "err", err)
	}

	cfg := config.ReadConfig()

	slog.Info("Postdoc start.")

	db, err := dao.Open(cfg.DatabaseDSN, cfg.IsPostgres(), gormlogger.NewGormLogger(slog.Default(), time.Second*2, *paramQueries))
	if err != nil {
		slog.Error("Fail init DB connection", "err", err)
		os.Exit(1)
	}

	if !*noMigration {
		if err := dao.Migrate(db); err != nil {
			slog.Error("Migrate models", "err", err)
			os.Exit(1)
		}
		slog.Info("All models migrated successfully")
	}

	server, err := postdoc.NewServer(db, cfg, version)
	if err != nil {
		slog.Error("Init server", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		slog.Error("Server fail", "err", err)
		os.Exit(1)
	}
	slog.Info("Postdoc stopped")
}

func PrintBanner() {
	banner := `
                 _      _
 _ __   ___  ___| |_ __| | ___   ___
| '_ \ / _ \/ __| __/ _  |/ _ \ / __|
| |_) | (_) \__ \ || (_| | (_) | (__
| .__/ \___/|___/\__\__,_|\___/ \___| %s
|_|
Blog post editor backend
----------------------------------------------------
`
	colorReset := "\033[0m"
	colorYellow := "\033[33m"

	formattedVersion := version
	if version == "DEV" {
		formattedVersion = colorYellow + version + colorReset
	}

	fmt.Printf(banner, formattedVersion)
}
