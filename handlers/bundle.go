package handlers

import "marketplace/utils"

// HandlerBundle groups everything the router needs.
type HandlerBundle struct {
	Bookings      *BookingHandler
	Providers     *ProviderHandler
	Catalog       *CatalogHandler
	Subscriptions *SubscriptionHandler
	Notifications *NotificationHandler
	Admin         *AdminHandler
	Health        *utils.HealthMonitor

	JWTSecret  []byte
	AdminToken string
}
