package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"realtime_chat_service/internal/chat/app"
	"realtime_chat_service/internal/chat/repository"
	"realtime_chat_service/internal/chat/router"
	"realtime_chat_service/pkg/config"
	"realtime_chat_service/pkg/database"
	"realtime_chat_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	cfg := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)

	// 2. 建立 Mongo 連線 (存訊息、房間、reaction)
	ctx := context.Background()
	mongoURI := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.Mongo.User, cfg.Mongo.Password, cfg.Mongo.Host, cfg.Mongo.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    mongoURI,
			RetryCount:    cfg.Mongo.RetryCount,
			RetryInterval: time.Duration(cfg.Mongo.RetryInterval),
		},
		cfg.Mongo.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s]", mongoURI)),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	// 3. 建立 Redis 連線 (Pub/Sub)
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}

	// 4. 建立 PostgreSQL 連線 (使用者資料)
	pgURI := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.UserDB.User, cfg.UserDB.Password, cfg.UserDB.Host, cfg.UserDB.Port, cfg.UserDB.Database)
	pgPool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    pgURI,
		RetryCount:    cfg.UserDB.RetryCount,
		RetryInterval: time.Duration(cfg.UserDB.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to postgreSQL database after retries",
			zap.String("address", fmt.Sprintf("[%s]", pgURI)),
			zap.Error(err),
		)
	}
	defer pgPool.Close()

	// 5. 初始化 Repository
	sessionRepo := repository.NewMongoSessionRepository(mongo.Database)
	msgRepo := repository.NewMongoMessageRepository(mongo.Database)
	reactionRepo := repository.NewMongoReactionRepository(mongo.Database)
	userRepo := repository.NewUserRepository(pgPool)
	previewRepo := repository.NewHTTPLinkPreviewRepository(time.Duration(cfg.Preview.TimeoutSeconds) * time.Second)
	pub := repository.NewRedisPubSub(redisClient)

	// 6. 初始化 UseCases
	roomUC := app.NewRoomUseCase(sessionRepo)
	sendMessageUC := app.NewSendMessageUseCase(sessionRepo, msgRepo, previewRepo, pub)
	statusUC := app.NewStatusUseCase(msgRepo, pub)
	reactionUC := app.NewReactionUseCase(reactionRepo, pub)
	typingUC := app.NewTypingUseCase(sessionRepo, pub)
	presence := app.NewPresenceRegistry()

	// 7. 啟動 Fiber
	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	// 注册路由
	router.RegisterRoutes(r, app.NewChatWebsocketHandler(
		presence, userRepo, roomUC, sendMessageUC, statusUC, reactionUC, typingUC, pub,
	))

	// Listen
	port := ":" + cfg.Port
	log.Printf("Chat Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
