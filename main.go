package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"casa-tiana-server/routes"
	"casa-tiana-server/services"
	"casa-tiana-server/storage"
	"casa-tiana-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	// Initialize services
	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	// Minimal middleware - compression only
	app.Use(iris.Compression)

	// JWT Verifiers
	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	// Health check endpoint
	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	// Routes
	rooms := app.Party("/api/rooms")
	{
		rooms.Get("/", routes.GetRooms)
	}

	availability := app.Party("/api/availability")
	{
		availability.Get("/{roomType}/calendar", routes.GetRoomCalendar)
		availability.Get("/{roomType}/summary", routes.GetAvailabilitySummary)
		availability.Post("/check", routes.CheckRange)
		availability.Post("/calculate-price", routes.CalculateBookingPrice)
	}

	reservations := app.Party("/api/reservations")
	{
		reservations.Post("/", routes.CreateReservation)
		reservations.Get("/{number}", routes.GetReservation)
		reservations.Post("/{number}/cancel", routes.CancelReservation)
	}

	promotions := app.Party("/api/promotions")
	{
		promotions.Post("/validate", routes.ValidatePromotion)
	}

	payment := app.Party("/api/payment")
	{
		payment.Post("/initiate", routes.InitiatePayment)
		payment.Post("/callback", routes.PaymentCallback)
	}

	calendar := app.Party("/api/calendar")
	{
		calendar.Get("/{roomType}", routes.ExportRoomCalendar)
	}

	auth := app.Party("/api/auth")
	{
		auth.Post("/login", routes.Login)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.StaffOnlyMiddleware)
	{
		admin.Get("/reservations", routes.AdminListReservations)
		admin.Get("/reservations/{id}", routes.AdminGetReservation)
		admin.Post("/reservations", routes.AdminCreateReservation)
		admin.Patch("/reservations/{id}/status", routes.AdminUpdateReservationStatus)
		admin.Post("/reservations/expire-pending", routes.ExpirePendingReservations)
		admin.Post("/reservations/archive", utils.AdminOnlyMiddleware, routes.AdminArchiveReservations)

		admin.Get("/calendars", routes.AdminListCalendars)
		admin.Post("/calendars", routes.AdminCreateCalendar)
		admin.Put("/calendars/{id:uint}", routes.AdminUpdateCalendar)
		admin.Delete("/calendars/{id:uint}", routes.AdminDeleteCalendar)
		admin.Post("/calendars/sync", routes.AdminSyncCalendars)
		admin.Delete("/calendars/blocks", utils.AdminOnlyMiddleware, routes.AdminClearBlockedDates)

		admin.Get("/promotions", routes.AdminListPromotions)
		admin.Post("/promotions", routes.AdminCreatePromotion)
		admin.Put("/promotions/{id:uint}", routes.AdminUpdatePromotion)
		admin.Patch("/promotions/{id:uint}/toggle", routes.AdminTogglePromotion)
		admin.Delete("/promotions/{id:uint}", utils.AdminOnlyMiddleware, routes.AdminDeletePromotion)

		admin.Get("/rooms/status", routes.AdminListRoomStatuses)
		admin.Get("/rooms/{roomType}/status", routes.AdminGetRoomStatus)
		admin.Put("/rooms/{roomType}/status", routes.AdminSetRoomStatus)

		admin.Get("/users", utils.AdminOnlyMiddleware, routes.AdminListUsers)
		admin.Post("/users", utils.SuperAdminOnlyMiddleware, routes.AdminCreateUser)
		admin.Patch("/users/{id:uint}/role", utils.SuperAdminOnlyMiddleware, routes.AdminChangeUserRole)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	startCalendarSyncLoop()

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("🚀 Server starting on %s\n", addr)

	// Start server
	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}

// startCalendarSyncLoop runs the external calendar synchronizer on a fixed
// interval (CALENDAR_SYNC_MINUTES, default 30). Each pass is bounded so a
// hanging feed cannot wedge the loop.
func startCalendarSyncLoop() {
	minutes := 30
	if m, err := strconv.Atoi(os.Getenv("CALENDAR_SYNC_MINUTES")); err == nil && m > 0 {
		minutes = m
	}

	sync := services.NewCalendarSync(&services.GormBlockStore{DB: storage.DB}, log.Default())
	go func() {
		ticker := time.NewTicker(time.Duration(minutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			report := sync.SyncAll(ctx)
			cancel()
			if len(report.Failed) > 0 {
				log.Printf("⚠️ calendar sync finished with %d failures", len(report.Failed))
			}
		}
	}()
}
