// cmd/historian/main.go runs the archival service: it drains the action
// queue the game server publishes to Redis and persists it to Postgres.
package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/mhollis/bridge/internal/database"
	"github.com/mhollis/bridge/internal/historian"
	"github.com/mhollis/bridge/internal/history"
)

func main() {
	logger := logrus.New()

	if err := database.ConnectDB(); err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer database.DB.Close()

	rdb, err := history.ConnectRedis()
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}

	svc := historian.New(rdb, historian.Options{
		QueueName:  history.QueueName(),
		BatchSize:  getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		FlushDelay: time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
		Inactivity: time.Duration(getEnvInt("ROOM_INACTIVITY_TIMEOUT_SEC", 600)) * time.Second,
	}, logger)
	go svc.Run()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	<-sigs

	svc.Stop()
	logger.Info("historian shutdown complete")
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
