package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"projectpulse/config"
	"projectpulse/internal/api"
	"projectpulse/internal/db"
	"projectpulse/internal/model"
	"projectpulse/internal/mq"
	"projectpulse/internal/repository"
	"projectpulse/internal/service/auth"
	"projectpulse/internal/service/authz"
	"projectpulse/internal/service/feed"
	"projectpulse/internal/service/ledger"
	"projectpulse/internal/service/riskissue"
)

const feedSnapshotLimit = 50

func main() {
	// 1. Load config
	cfg := config.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// 2. Init DB
	dbConn, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}

	// 3. Init RabbitMQ Producer
	producer, err := mq.NewProducer(cfg.MQ.URL)
	if err != nil {
		log.Fatalf("failed to init producer: %v", err)
	}
	defer producer.Close()

	// 4. Init repositories
	userRepo := repository.NewUserRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn, logger)
	taskRepo := repository.NewTaskRepository(dbConn, logger)
	expenditureRepo := repository.NewExpenditureRepository(dbConn, logger)
	riskIssueRepo := repository.NewRiskIssueRepository(dbConn, logger)
	membershipRepo := repository.NewMembershipRepository(dbConn, logger)
	activityRepo := repository.NewActivityRepository(dbConn)

	// 5. Init services
	gate := authz.NewGate()
	authService := auth.NewService(userRepo, cfg.JWT.Secret)
	ledgerView := ledger.NewView(expenditureRepo)
	riskIssueManager := riskissue.NewManager(riskIssueRepo, projectRepo, gate, producer, logger)

	// 6. Init activity feed hub（后台轮询，请求路径只读快照）
	fetch := func(ctx context.Context) ([]model.ActivityEvent, error) {
		return activityRepo.ListRecent(ctx, feedSnapshotLimit)
	}
	pollInterval := time.Duration(cfg.Feed.PollSeconds) * time.Second
	hub := feed.NewHub(fetch, pollInterval, logger)
	defer hub.Close()

	// 7. Init handlers
	handlers := api.Handlers{
		Auth:         api.NewAuthHandler(authService, userRepo, logger),
		Project:      api.NewProjectHandler(projectRepo, taskRepo, expenditureRepo, membershipRepo, gate, producer, logger),
		Task:         api.NewTaskHandler(taskRepo, projectRepo, gate, producer, logger),
		Expenditure:  api.NewExpenditureHandler(expenditureRepo, projectRepo, ledgerView, gate, producer, logger),
		RiskIssue:    api.NewRiskIssueHandler(riskIssueManager, logger),
		Member:       api.NewMemberHandler(membershipRepo, projectRepo, userRepo, gate, producer, logger),
		Notification: api.NewNotificationHandler(hub, logger),
	}

	// 8. Init router and run
	router := api.NewRouter(handlers, cfg.JWT.Secret)
	if err := router.Run(cfg.Server.Port); err != nil {
		logger.Fatal("server start failed", zap.Error(err))
	}
}
