package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messaging-service/internal/auth"
	"messaging-service/internal/db"
	"messaging-service/internal/handlers"
	"messaging-service/internal/messaging"
	"messaging-service/internal/middleware"
	"messaging-service/internal/observability"
	"messaging-service/internal/rabbitmq"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
	"messaging-service/internal/ws"
)

const serviceName = "messaging-service"

func main() {
	ctx := context.Background()

	shutdownTracer, err := telemetry.InitTracer(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to init tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("tracer shutdown: %v", err)
		}
	}()

	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	verifier := auth.NewJWTVerifier(secret)

	amqpURL := getEnv("AMQP_URL", "")
	exchange := getEnv("AMQP_EXCHANGE", "messaging.events")
	publisher := rabbitmq.NewPublisher(amqpURL, exchange)
	defer publisher.Close()
	log.Printf("event publisher mode=%s", rabbitmq.PublisherMode(publisher))

	audit := telemetry.NewAuditEmitter(publisher, getEnv("AUDIT_ROUTING_KEY", "audit.messaging"), serviceName, getEnv("ENVIRONMENT", "development"))

	if amqpPub, err := observability.NewAMQPPublisher(amqpURL, exchange); err == nil {
		observability.SetPublisher(amqpPub)
		defer amqpPub.Close()
	} else {
		log.Printf("ws event publishing disabled: %v", err)
	}

	userRepo := repositories.NewUserRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	groupRepo := repositories.NewGroupRepo(database)
	groupMessageRepo := repositories.NewGroupMessageRepo(database)

	hub := ws.NewHub()

	messageService := messaging.NewMessageService(userRepo, messageRepo, hub)
	conversationService := messaging.NewConversationService(messageRepo, groupMessageRepo)
	groupService := messaging.NewGroupService(userRepo, groupRepo, groupMessageRepo, hub)

	messageHandler := handlers.NewMessageHandler(messageService, conversationService, audit)
	groupHandler := handlers.NewGroupHandler(groupService, audit)
	wsHandler := ws.NewHandler(hub, verifier, messageService, groupService)

	router := gin.Default()
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(verifier)

	router.POST("/messages", authMiddleware, messageHandler.SendMessage)
	router.GET("/messages/conversations", authMiddleware, messageHandler.GetConversations)
	router.GET("/messages/unread", authMiddleware, messageHandler.GetUnreadSummary)
	router.GET("/messages/with/:user_id", authMiddleware, messageHandler.GetConversationMessages)
	router.PUT("/messages/read/:user_id", authMiddleware, messageHandler.MarkConversationRead)
	router.PUT("/messages/:message_id/read", authMiddleware, messageHandler.MarkMessageRead)
	router.DELETE("/messages/:message_id", authMiddleware, messageHandler.DeleteMessage)

	router.POST("/groups", authMiddleware, groupHandler.CreateGroup)
	router.GET("/groups", authMiddleware, groupHandler.ListGroups)
	router.GET("/groups/:group_id", authMiddleware, groupHandler.GetGroup)
	router.PUT("/groups/:group_id", authMiddleware, groupHandler.UpdateGroup)
	router.DELETE("/groups/:group_id", authMiddleware, groupHandler.DeleteGroup)
	router.GET("/groups/:group_id/members", authMiddleware, groupHandler.ListMembers)
	router.POST("/groups/:group_id/members", authMiddleware, groupHandler.AddMember)
	router.DELETE("/groups/:group_id/members/:user_id", authMiddleware, groupHandler.RemoveMember)
	router.POST("/groups/:group_id/leave", authMiddleware, groupHandler.LeaveGroup)
	router.PUT("/groups/:group_id/members/:user_id/admin", authMiddleware, groupHandler.PromoteAdmin)
	router.DELETE("/groups/:group_id/members/:user_id/admin", authMiddleware, groupHandler.DemoteAdmin)
	router.GET("/groups/:group_id/messages", authMiddleware, groupHandler.GetGroupMessages)
	router.POST("/groups/:group_id/messages", authMiddleware, groupHandler.PostGroupMessage)
	router.PUT("/group-messages/:message_id", authMiddleware, groupHandler.EditGroupMessage)
	router.DELETE("/group-messages/:message_id", authMiddleware, groupHandler.DeleteGroupMessage)
	router.POST("/group-messages/:message_id/read", authMiddleware, groupHandler.MarkGroupMessageRead)

	router.GET("/ws", wsHandler.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, audit, getEnv("DEBUG_ROUTES", "") == "true")

	port := getEnv("PORT", "8083")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
