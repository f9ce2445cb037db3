package main

import (
	"fmt"

	"marketplace/config"
	"marketplace/database"
	availabilityRepo "marketplace/database/repository/availability"
	bookingRepo "marketplace/database/repository/booking"
	catalogRepo "marketplace/database/repository/catalog"
	"marketplace/database/repository/memory"
	notificationRepo "marketplace/database/repository/notification"
	providerRepo "marketplace/database/repository/provider"
	reviewRepo "marketplace/database/repository/review"
	subscriptionRepo "marketplace/database/repository/subscription"
	userRepo "marketplace/database/repository/user"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// repositories is the storage backend selected by STORE_DRIVER.
type repositories struct {
	Bookings      bookingRepo.BookingRepository
	Providers     providerRepo.ProviderRepository
	Users         userRepo.UserRepository
	Availability  availabilityRepo.AvailabilityRepository
	Notifications notificationRepo.NotificationRepository
	Reviews       reviewRepo.ReviewRepository
	Catalog       catalogRepo.CatalogRepository
	Subscriptions subscriptionRepo.SubscriptionRepository
	Tx            database.Transactor
	Mongo         *mongo.Client
}

func openRepositories(logger *zap.Logger) (*repositories, error) {
	switch config.AppConfig.StoreDriver {
	case "memory":
		logger.Warn("using in-memory store; data is lost on restart")
		s := memory.NewStore()
		return &repositories{
			Bookings:      s.Bookings(),
			Providers:     s.Providers(),
			Users:         s.Users(),
			Availability:  s.Availability(),
			Notifications: s.Notifications(),
			Reviews:       s.Reviews(),
			Catalog:       s.Catalog(),
			Subscriptions: s.Subscriptions(),
			Tx:            s,
		}, nil
	case "mongo":
		return openMongo(logger)
	}
	return nil, fmt.Errorf("unknown STORE_DRIVER %q", config.AppConfig.StoreDriver)
}

func openMongo(logger *zap.Logger) (*repositories, error) {
	client, err := database.InitDB(logger)
	if err != nil {
		return nil, err
	}
	db := database.DB()
	repos := &repositories{Tx: database.NewMongoTransactor(client), Mongo: client}

	if repos.Bookings, err = bookingRepo.NewMongoBookingRepo(db); err != nil {
		return nil, err
	}
	if repos.Providers, err = providerRepo.NewMongoProviderRepo(db); err != nil {
		return nil, err
	}
	if repos.Users, err = userRepo.NewMongoUserRepo(db); err != nil {
		return nil, err
	}
	if repos.Availability, err = availabilityRepo.NewMongoAvailabilityRepo(db); err != nil {
		return nil, err
	}
	if repos.Notifications, err = notificationRepo.NewMongoNotificationRepo(db); err != nil {
		return nil, err
	}
	if repos.Reviews, err = reviewRepo.NewMongoReviewRepo(db); err != nil {
		return nil, err
	}
	if repos.Catalog, err = catalogRepo.NewMongoCatalogRepo(db); err != nil {
		return nil, err
	}
	if repos.Subscriptions, err = subscriptionRepo.NewMongoSubscriptionRepo(db); err != nil {
		return nil, err
	}
	return repos, nil
}
