package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/npezzotti/go-direct-chat/internal/api"
	"github.com/npezzotti/go-direct-chat/internal/config"
	"github.com/npezzotti/go-direct-chat/internal/database"
	"github.com/npezzotti/go-direct-chat/internal/server"
	"github.com/npezzotti/go-direct-chat/internal/stats"
)

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	dsn            string
	signingSecret  string
	staticDir      string
	allowedOrigins stringSliceFlag
)

func main() {
	logger := log.New(os.Stderr, "[chatdm] ", log.LstdFlags)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal("config:", err)
	}

	flag.StringVar(&addr, "addr", cfg.ServerAddr, "server address")
	flag.StringVar(&dsn, "dsn", cfg.DatabaseDSN, "database connection string")
	flag.StringVar(&signingSecret, "signing-secret", cfg.SigningSecret, "base64 encoded token signing secret")
	flag.StringVar(&staticDir, "static-dir", cfg.StaticDir, "directory of UI assets to serve, if any")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.Parse()

	cfg.ServerAddr = addr
	cfg.DatabaseDSN = dsn
	cfg.SigningSecret = signingSecret
	cfg.StaticDir = staticDir
	if len(allowedOrigins) > 0 {
		cfg.AllowedOrigins = allowedOrigins
	}

	if err := cfg.Finalize(); err != nil {
		logger.Fatal("config:", err)
	}

	dbConn, err := database.NewPgChatRepository(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("db open:", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Fatal("db close:", err)
		}
	}()

	if err := dbConn.Migrate(); err != nil {
		logger.Fatal("migrate:", err)
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	chatServer, err := server.NewChatServer(logger, dbConn, statsUpdater, cfg.HistoryLimit, cfg.TypingExpiry)
	if err != nil {
		logger.Fatal("new chat server:", err)
	}

	app := api.NewChatApp(mux, logger, chatServer, dbConn, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := app.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("shutting down chat server...")
	if err := chatServer.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("chat server shutdown:", err)
	}

	logger.Println("shutdown complete")
}
