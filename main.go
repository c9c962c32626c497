package main

import (
	"context"

	api "workbid-backend/cmd/api"
	authdomain "workbid-backend/internal/auth/domain"
	authRepo "workbid-backend/internal/auth/repository"
	authUsecase "workbid-backend/internal/auth/usecase"
	notifdomain "workbid-backend/internal/notification/domain"
	"workbid-backend/internal/notification/feed"
	"workbid-backend/internal/notification/push"
	notifRepo "workbid-backend/internal/notification/repository"
	notifUsecase "workbid-backend/internal/notification/usecase"
	"workbid-backend/pkg/config"
	"workbid-backend/pkg/database"
	"workbid-backend/pkg/fcm"
	"workbid-backend/pkg/sse"

	"cloud.google.com/go/pubsub"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))

	cfg := config.Load()
	ctx := context.Background()

	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to database: %s", err)
	}
	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&authdomain.DeviceToken{},
		&notifdomain.NotificationRecord{},
		&notifRepo.CursorState{},
	); err != nil {
		logrus.Fatalf("failed to migrate database: %s", err)
	}

	// Repositories
	userRepo := authRepo.NewUserRepository(db)
	tokenRepo := authRepo.NewDeviceTokenRepository(db)
	recordRepo := notifRepo.NewRecordRepository(db)
	cursorRepo := notifRepo.NewCursorRepository(db)

	// SSE hub for UI surfaces
	sseManager := sse.NewManager()
	go sseManager.Run()

	// FCM is optional: without credentials, alerts silently no-op.
	var fcmClient *fcm.Client
	if cfg.FirebaseCredentials != "" {
		fcmClient, err = fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			logrus.Warnf("FCM unavailable, push alerts disabled: %s", err)
			fcmClient = nil
		}
	} else {
		logrus.Info("no Firebase credentials configured, push alerts disabled")
	}
	notifier := push.NewNotifier(fcmClient, tokenRepo, push.NewUserAlertSettings(userRepo))

	// Change feed over Pub/Sub. Without a project id the service still
	// runs; notifications are only visible in-app via the store.
	var liveSource feed.LiveSource
	var publisher feed.EventPublisher
	if cfg.GoogleProjectID != "" {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.GoogleProjectID)
		if err != nil {
			logrus.Fatalf("failed to create pubsub client: %s", err)
		}
		liveSource, err = feed.NewPubsubSource(ctx, pubsubClient, cfg.PubSubTopic)
		if err != nil {
			logrus.Fatalf("failed to open change feed: %s", err)
		}
		publisher, err = feed.NewPublisher(ctx, pubsubClient, cfg.PubSubTopic)
		if err != nil {
			logrus.Fatalf("failed to create feed publisher: %s", err)
		}
	} else {
		logrus.Warn("GOOGLE_PROJECT_ID not configured, change feed disabled")
		liveSource = feed.NopSource{}
	}

	// Notification engine
	manager := notifUsecase.NewManager(liveSource, recordRepo, cursorRepo, notifier, sseManager, cfg.ShownIDCap)
	notifService := notifUsecase.NewService(recordRepo, publisher, manager)

	// Session collaborator drives the engine lifecycle.
	authUc := authUsecase.NewAuthUsecase(userRepo, tokenRepo, cfg)
	authUc.SetSessionHooks(
		func(recipientID string) { manager.StartSession(ctx, recipientID) },
		func(recipientID string) { manager.StopSession(ctx, recipientID) },
	)

	handler := api.NewHandler(authUc, tokenRepo, notifService, sseManager)

	logrus.Infof("server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		logrus.Fatalf("failed to start server: %s", err)
	}
}
