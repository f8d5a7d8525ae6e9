package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"eventease/handlers"
	"eventease/middleware"
	"eventease/model"
)

func SetupRoutes(app *fiber.App, h *handlers.Handler) {
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api", logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	api.Get("/health", handlers.Health)

	auth := middleware.Authorize(h.SigningKey, h.Store)
	admin := middleware.RequireRole(model.RoleAdmin)
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleOrganizer)

	//Auth
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", h.Signup)
	authGroup.Post("/login", h.Login)
	authGroup.Get("/me", auth, h.Me)

	//Events
	events := api.Group("/events")
	events.Get("/", h.GetEvents)
	events.Get("/:id", h.GetEvent)
	events.Post("/", auth, staff, h.CreateEvent)
	events.Put("/:id", auth, staff, h.UpdateEvent)
	events.Delete("/:id", auth, admin, h.DeleteEvent)

	//Registrations
	registrations := api.Group("/registrations", auth)
	registrations.Post("/register", h.Register)
	registrations.Get("/check/:eventId", h.CheckRegistration)
	registrations.Get("/my-registrations", h.MyRegistrations)
	registrations.Get("/event/:eventId", staff, h.EventRegistrations)
	registrations.Delete("/:id", h.CancelRegistration)

	//Admin
	adminGroup := api.Group("/admin", auth, admin)
	adminGroup.Get("/users", h.GetUsers)
	adminGroup.Get("/users/:id", h.GetUser)
	adminGroup.Put("/users/:id/role", h.UpdateUserRole)
	adminGroup.Delete("/users/:id", h.DeleteUser)
	adminGroup.Get("/stats", h.GetStats)
	adminGroup.Post("/events/:id/export", h.ExportRegistrations)

	//Subscriptions
	subscriptions := api.Group("/subscriptions")
	subscriptions.Post("/", h.Subscribe)
	subscriptions.Post("/unsubscribe", h.Unsubscribe)
	subscriptions.Get("/", auth, admin, h.GetSubscribers)
	subscriptions.Put("/:id", auth, admin, h.UpdateSubscriber)
	subscriptions.Delete("/:id", auth, admin, h.DeleteSubscriber)

	//Notifications
	notifications := api.Group("/notifications", auth)
	notifications.Get("/", h.GetNotifications)
	notifications.Patch("/read-all", h.MarkAllNotificationsRead)
	notifications.Patch("/:id/read", h.MarkNotificationRead)
	notifications.Delete("/:id", h.DeleteNotification)
	notifications.Post("/", admin, h.SendNotification)
}
