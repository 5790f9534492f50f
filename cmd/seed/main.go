package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"

	"copyprocloud/internal/database"
	"copyprocloud/internal/domain"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "copypro.db"
	}
	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	// ================== ADMIN ==================
	log.Println("Creating admin...")
	adminHash, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	admin := domain.User{
		Email:        "admin@copypro.cloud",
		PasswordHash: string(adminHash),
		Role:         domain.RoleAdmin,
		Name:         "Администратор",
	}
	db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "role", "name"}),
	}).Create(&admin)
	log.Println("Admin: admin@copypro.cloud / admin123")

	// ================== SERVICES ==================
	log.Println("Creating catalog services...")
	services := []domain.CatalogService{
		{
			Slug: "seo-article", Name: "SEO-статья", Category: "seo",
			Description:     "Оптимизированная статья под ключевые запросы",
			MinPrice:        150000, MaxPrice: 800000,
			MinDeliveryDays: 3, MaxDeliveryDays: 7, Active: true,
		},
		{
			Slug: "landing-copy", Name: "Текст для лендинга", Category: "marketing",
			Description:     "Продающий текст посадочной страницы",
			MinPrice:        500000, MaxPrice: 2500000,
			MinDeliveryDays: 5, MaxDeliveryDays: 10, Active: true,
		},
		{
			Slug: "product-card", Name: "Карточка товара", Category: "ecommerce",
			Description:     "Описание товара для маркетплейса",
			MinPrice:        50000, MaxPrice: 200000,
			MinDeliveryDays: 1, MaxDeliveryDays: 3, Active: true,
		},
		{
			Slug: "email-campaign", Name: "Email-рассылка", Category: "marketing",
			Description:     "Серия писем для прогрева базы",
			MinPrice:        300000, MaxPrice: 1200000,
			MinDeliveryDays: 3, MaxDeliveryDays: 7, Active: true,
		},
		{
			Slug: "social-pack", Name: "Посты для соцсетей", Category: "smm",
			Description:     "Пакет постов на месяц",
			MinPrice:        200000, MaxPrice: 900000,
			MinDeliveryDays: 2, MaxDeliveryDays: 5, Active: true,
		},
	}
	for i := range services {
		db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "category", "description", "min_price", "max_price", "min_delivery_days", "max_delivery_days", "active"}),
		}).Create(&services[i])
	}

	// ================== NOTIFICATION TEMPLATES ==================
	log.Println("Creating notification templates...")
	templates := []domain.NotificationTemplate{
		{
			Channel: domain.ChannelEmail, EventType: domain.EventOrderCreated,
			Subject: "Заказ {{order_id}} принят",
			Body:    "<p>Здравствуйте, {{contact_name}}!</p><p>Ваш заказ «{{service_name}}» принят в работу. Мы свяжемся с вами в ближайшее время.</p>",
			Active:  true,
		},
		{
			Channel: domain.ChannelEmail, EventType: domain.EventPaymentSucceeded,
			Subject: "Оплата заказа {{order_id}} получена",
			Body:    "<p>Здравствуйте, {{contact_name}}!</p><p>Оплата по заказу «{{service_name}}» прошла успешно. Заказ передан исполнителю.</p>",
			Active:  true,
		},
		{
			Channel: domain.ChannelEmail, EventType: domain.EventPaymentFailed,
			Subject: "Оплата заказа {{order_id}} не прошла",
			Body:    "<p>Здравствуйте, {{contact_name}}!</p><p>К сожалению, оплата по заказу «{{service_name}}» не прошла. Попробуйте ещё раз или выберите другой способ оплаты.</p>",
			Active:  true,
		},
		{
			Channel: domain.ChannelEmail, EventType: domain.EventOrderCompleted,
			Subject: "Заказ {{order_id}} выполнен",
			Body:    "<p>Здравствуйте, {{contact_name}}!</p><p>Работа по заказу «{{service_name}}» завершена. Результат доступен в личном кабинете.</p>",
			Active:  true,
		},
		{
			Channel: domain.ChannelEmail, EventType: domain.EventChatMessage,
			Subject: "Новое сообщение по заказу {{order_id}}",
			Body:    "<p>По вашему заказу «{{service_name}}» пришло новое сообщение. Ответьте в чате заказа.</p>",
			Active:  true,
		},
		{
			Channel: domain.ChannelTelegram, EventType: domain.EventPaymentSucceeded,
			Body:    "Оплата заказа {{order_id}} ({{service_name}}) получена.",
			Active:  true,
		},
		{
			Channel: domain.ChannelTelegram, EventType: domain.EventChatMessage,
			Body:    "Новое сообщение по заказу {{order_id}}.",
			Active:  true,
		},
	}
	for i := range templates {
		t := templates[i]
		var existing domain.NotificationTemplate
		err := db.Where("channel = ? AND event_type = ?", t.Channel, t.EventType).First(&existing).Error
		if err == nil {
			t.ID = existing.ID
		}
		db.Save(&t)
	}

	// ================== PROMO CODES ==================
	log.Println("Creating promo codes...")
	maxUses := 100
	promos := []domain.PromoCode{
		{
			Code: "WELCOME10", DiscountType: domain.DiscountPercentage, DiscountValue: 10,
			MinOrderAmount: 500000, MaxUses: &maxUses, Active: true,
			ValidFrom:  time.Now().AddDate(0, -1, 0),
			ValidUntil: time.Now().AddDate(1, 0, 0),
		},
		{
			Code: "FIX500", DiscountType: domain.DiscountFixed, DiscountValue: 50000,
			MinOrderAmount: 100000, Active: true,
			ValidFrom:  time.Now().AddDate(0, -1, 0),
			ValidUntil: time.Now().AddDate(0, 6, 0),
		},
	}
	for i := range promos {
		db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"discount_type", "discount_value", "min_order_amount", "max_uses", "active", "valid_from", "valid_until"}),
		}).Create(&promos[i])
	}

	log.Println("Seed completed!")
	log.Println("Admin: admin@copypro.cloud / admin123")
	log.Println("Promo: WELCOME10 (10%, от 5000.00), FIX500 (500.00, от 1000.00)")
}
