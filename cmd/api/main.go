package main

import (
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"copyprocloud/internal/database"
	"copyprocloud/internal/infra/email"
	"copyprocloud/internal/infra/telegram"
	"copyprocloud/internal/infra/yookassa"
	"copyprocloud/internal/middleware"
	"copyprocloud/internal/modules/auth"
	"copyprocloud/internal/modules/catalog"
	"copyprocloud/internal/modules/chat"
	"copyprocloud/internal/modules/notification"
	"copyprocloud/internal/modules/order"
	"copyprocloud/internal/modules/payment"
	"copyprocloud/internal/modules/promo"
	jwtsvc "copyprocloud/internal/pkg/jwt"
	"copyprocloud/internal/repository"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is empty")
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	promoRepo := repository.NewPromoCodeRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	chatRepo := repository.NewChatRepository(db)
	templateRepo := repository.NewNotificationTemplateRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	j := jwtsvc.New(secret, 24*time.Hour)
	slogger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	catalogService := catalog.NewService(serviceRepo)
	catalogHandler := catalog.NewHandler(catalogService)

	orderService := order.NewService(orderRepo, serviceRepo, activityRepo, reminderRepo)
	orderHandler := order.NewHandler(orderService)

	promoService := promo.NewService(promoRepo)
	promoHandler := promo.NewHandler(promoService)

	var paymentService *payment.Service
	if shopID, ykSecret := os.Getenv("YUKASSA_SHOP_ID"), os.Getenv("YUKASSA_SECRET_KEY"); shopID != "" && ykSecret != "" {
		ykClient := yookassa.NewClient(shopID, ykSecret, os.Getenv("PAYMENT_SUCCESS_URL"), slogger)
		paymentService = payment.NewService(paymentRepo, orderRepo, orderRepo, promoService, ykClient, settingsRepo, reminderRepo, activityRepo, log.Printf)
	} else {
		paymentService = payment.NewService(paymentRepo, orderRepo, orderRepo, promoService, nil, settingsRepo, reminderRepo, activityRepo, log.Printf)
	}
	paymentHandler := payment.NewHandler(paymentService, log.Printf)

	hub := chat.NewHub()
	defer hub.Close()
	chatService := chat.NewService(chatRepo, orderRepo, reminderRepo, log.Printf)
	chatHandler := chat.NewHandler(chatService, hub, log.Printf)

	var emailSender notification.EmailSender
	if key := os.Getenv("EMAIL_API_KEY"); key != "" {
		emailSender = email.NewClient(os.Getenv("EMAIL_API_URL"), key, os.Getenv("EMAIL_FROM"), slogger)
	}
	var telegramSender notification.TelegramSender
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		tgClient, err := telegram.NewClient(token, slogger)
		if err != nil {
			log.Printf("level=error msg=telegram client init failed err=%v", err)
		} else {
			telegramSender = tgClient
		}
	}
	dispatcher := notification.NewDispatcher(templateRepo, userRepo, emailSender, telegramSender, log.Printf)
	notificationService := notification.NewService(reminderRepo, dispatcher, log.Printf)
	notificationHandler := notification.NewHandler(notificationService, templateRepo)

	r := gin.New()
	r.Use(gin.Logger(), middleware.ErrorLogger(), middleware.CORS())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)
		catalogHandler.RegisterPublicRoutes(v1)
		promoHandler.RegisterPublicRoutes(v1)
		paymentHandler.RegisterPublicRoutes(v1)

		// заказ может оформить и гость, поэтому OptionalAuth
		form := v1.Group("/")
		form.Use(middleware.OptionalAuth(j))
		{
			orderHandler.RegisterPublicRoutes(form)
		}

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			orderHandler.RegisterClientRoutes(protected)
			chatHandler.RegisterProtectedRoutes(protected)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.Auth(j), middleware.AdminOnly())
		{
			orderHandler.RegisterAdminRoutes(admin)
			promoHandler.RegisterAdminRoutes(admin)
			paymentHandler.RegisterAdminRoutes(admin)
			catalogHandler.RegisterAdminRoutes(admin)
			notificationHandler.RegisterAdminRoutes(admin)
		}
	}

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
