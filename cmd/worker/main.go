package main

import (
	"log"
	"time"

	"go.uber.org/zap"

	"projectpulse/config"
	"projectpulse/internal/db"
	"projectpulse/internal/mq"
	"projectpulse/internal/mqhandler"
	"projectpulse/internal/redis"
	"projectpulse/internal/repository"
	"projectpulse/internal/util"
)

// 去重 key 保留 24 小时，覆盖 MQ 的重投窗口绰绰有余
const dedupTTL = 24 * time.Hour

func main() {
	cfg := config.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	dbConn, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}

	rdb := redis.NewClient(cfg.Redis)
	deduper := util.NewDeduper(rdb, dedupTTL)

	activityRepo := repository.NewActivityRepository(dbConn)
	userRepo := repository.NewUserRepository(dbConn)

	handler := mqhandler.NewActivityRecordedHandler(activityRepo, userRepo, deduper, logger)

	consumer, err := mq.NewConsumer(cfg.MQ.URL, mq.RoutingKeyActivityRecorded, logger)
	if err != nil {
		log.Fatalf("failed to init consumer: %v", err)
	}
	defer consumer.Close()
	consumer.SetHandler(handler.Handle)

	logger.Info("Activity worker starting",
		zap.String("routing_key", mq.RoutingKeyActivityRecorded),
	)

	// StartConsuming blocks until the channel is closed
	if err := consumer.StartConsuming(); err != nil {
		logger.Fatal("consumer start failed", zap.Error(err))
	}
}
