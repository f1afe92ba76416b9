package api

import (
	"context"
	"fmt"

	_ "adagency/docs"
	"adagency/internal/app/catalog"
	"adagency/internal/app/config"
	"adagency/internal/app/dsn"
	"adagency/internal/app/dto"
	"adagency/internal/app/handler"
	"adagency/internal/app/middleware"
	"adagency/internal/app/orders"
	"adagency/internal/app/payment"
	"adagency/internal/app/redis"
	"adagency/internal/app/repository"
	"adagency/internal/app/storage"
	"adagency/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// StartServer собирает зависимости и запускает HTTP-сервер.
// Возвращается только при ошибке старта или остановке сервера.
func StartServer(ctx context.Context) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	dsnStr := dsn.FromEnv()
	if dsnStr == "" {
		return fmt.Errorf("DB_HOST is not set, check your .env file")
	}
	repo, err := repository.New(dsnStr)
	if err != nil {
		return fmt.Errorf("ошибка инициализации репозитория: %w", err)
	}
	defer repo.Close()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// MinIO необязателен: без него загрузка изображений отвечает 503
	var images handler.ImageStore
	if cfg.MinIO.Endpoint != "" {
		minioClient, err := storage.NewMinIOClient(ctx, cfg.MinIO)
		if err != nil {
			logrus.Warn("MinIO is unavailable, image upload disabled: ", err)
		} else {
			images = minioClient
		}
	}

	dto.RegisterValidators()

	cat := catalog.New(repo, redisClient, catalog.TTL{
		Services:  cfg.Cache.ServicesTTL,
		Resources: cfg.Cache.ResourcesTTL,
	})
	authHandler := handler.NewAuthHandler(repo, redisClient, cfg)
	apiHandler := handler.NewAPIHandler(
		repo,
		cat,
		orders.NewService(repo),
		payment.NewService(repo),
		images,
		authHandler,
	)
	authMiddleware := middleware.NewAuthMiddleware(redisClient, cfg)

	application := pkg.NewApp(cfg, gin.Default(), apiHandler, authMiddleware)
	return application.RunApp()
}
