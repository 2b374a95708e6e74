// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/mhollis/bridge/internal/auth"
	"github.com/mhollis/bridge/internal/handlers"
	"github.com/mhollis/bridge/internal/history"
	"github.com/mhollis/bridge/internal/room"
	"github.com/mhollis/bridge/internal/session"
)

func main() {
	logger := logrus.New()
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logrus.DebugLevel)
	}

	if err := auth.Init(); err != nil {
		log.Fatalf("auth init failed: %v", err)
	}

	// Redis is optional: without it actions stay in the in-memory log and
	// the historian simply has nothing to drain.
	rdb, err := history.ConnectRedis()
	if err != nil {
		logger.Warnf("Redis unavailable, action history is in-memory only: %v", err)
		rdb = nil
	}
	recorder := history.NewRecorder(rdb, history.QueueName(), logger)

	srv := handlers.NewServer(
		room.NewStore(logger),
		session.NewRegistry(),
		recorder,
		logger,
	)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("bridge server listening on %s", addr)
	if err := http.ListenAndServe(addr, handlers.NewRouter(srv)); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
