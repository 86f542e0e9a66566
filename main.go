package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thucvinguyen/coder-management/config"
	"github.com/thucvinguyen/coder-management/handlers"
	"github.com/thucvinguyen/coder-management/logging"
	"github.com/thucvinguyen/coder-management/notifications"
	"github.com/thucvinguyen/coder-management/repositories"
	"github.com/thucvinguyen/coder-management/services"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: %v", err)
	}

	if err := logging.InitLogger(logging.Options{
		SystemName: "coder-management",
		File:       cfg.LogFile,
		Level:      cfg.LogLevel,
		Console:    true,
	}); err != nil {
		logging.Logger.Fatalf("Event ID: LOGGER_INIT_FAILED, Description: %v", err)
	}
	defer logging.Close()

	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting coder management service...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logging.Logger.Warnf("Event ID: DB_DISCONNECT_FAILED, Description: %v", err)
		}
	}()

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB database %s", cfg.MongoDBName)

	db := client.Database(cfg.MongoDBName)
	taskRepo := repositories.NewTaskRepository(db.Collection(cfg.TasksCollection))
	userRepo := repositories.NewUserRepository(db.Collection(cfg.UsersCollection))
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: Failed to create user indexes: %v", err)
	}

	store, err := notificationStore(cfg)
	if err != nil {
		logging.Logger.Fatalf("Event ID: NOTIFICATIONS_INIT_FAILED, Description: %v", err)
	}
	defer store.Close()

	notificationService := notifications.NewService(store, notifications.NewBreaker("notifications-cb", 5*time.Second))
	taskService := services.NewTaskService(taskRepo, userRepo, notificationService)
	userService := services.NewUserService(userRepo, taskRepo)

	router := handlers.NewRouter(handlers.RouterConfig{
		Tasks:          taskService,
		Users:          userService,
		Notifications:  notificationService,
		CORSOrigin:     cfg.CORSOrigin,
		RequestTimeout: cfg.RequestTimeout,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logging.Logger.Info("Event ID: SERVER_SHUTDOWN, Description: Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Errorf("Event ID: SERVER_SHUTDOWN_FAILED, Description: %v", err)
	}
}

// notificationStore uses Cassandra when CASS_DB is set and an in-process store otherwise.
func notificationStore(cfg config.Config) (notifications.Store, error) {
	if !cfg.NotificationsEnabled() {
		logging.Logger.Warn("Event ID: NOTIFICATIONS_IN_MEMORY, Description: CASS_DB not set, notifications are kept in memory")
		return notifications.NewMemoryStore(), nil
	}

	store, err := notifications.NewCassandraStore(cfg.CassandraHosts, cfg.CassandraKeyspace, logging.Logger)
	if err != nil {
		return nil, err
	}
	if err := store.CreateTable(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
