package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"

	"github.com/meetsync/scheduler/config"
	"github.com/meetsync/scheduler/internal/handler"
	"github.com/meetsync/scheduler/internal/middleware"
	"github.com/meetsync/scheduler/internal/notify"
	"github.com/meetsync/scheduler/internal/repository"
	"github.com/meetsync/scheduler/internal/service"
	"github.com/meetsync/scheduler/pkg/database"
	"github.com/meetsync/scheduler/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// Notification transport. Bookings work without it; delivery is
	// best-effort by contract.
	var dispatcher *notify.Dispatcher
	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Printf("RabbitMQ unavailable, notifications disabled: %v", err)
		dispatcher = notify.NewDispatcher(nil)
	} else {
		defer publisher.Close()
		dispatcher = notify.NewDispatcher(publisher)
	}

	// Repositories
	slotRepo := repository.NewSlotRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	// Services
	slotSvc := service.NewSlotService(slotRepo, bookingRepo)
	bookingSvc := service.NewBookingService(slotRepo, bookingRepo, dispatcher)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "scheduler"})
	})

	handler.NewSlotHandler(slotSvc).RegisterRoutes(e)
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(e)

	log.Printf("Scheduler starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
