package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"tagtrack/internal/audit"
	"tagtrack/internal/config"
	"tagtrack/internal/store"
	"tagtrack/internal/store/postgres"
	"tagtrack/internal/store/sqlite"
)

// Worker drains the audit queue and persists events. Runs next to the API so
// user-management requests never wait on the audit write.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	st, err := openStore(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("store connect failed: %v", err)
	}
	defer st.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var q audit.Queue
	if cfg.QueueBackend == "memory" {
		q = audit.NewInMemory(64)
	} else {
		q = audit.NewRedisQueue(redisClient.Client, "tagtrack:audit")
	}

	events, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("audit worker started, waiting for events...")
	for e := range events {
		if err := st.InsertAuditEvent(ctx, &e); err != nil {
			log.Printf("persist audit event failed: %v", err)
			continue
		}
		log.Printf("recorded %s by %s", e.Action, e.ActorID)
	}

	log.Println("audit worker stopped")
}

func openStore(dsn string) (store.Store, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.New(dsn)
	}
	return sqlite.New(dsn)
}
