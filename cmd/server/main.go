package main

import (
	"log"
	"strings"

	"butterbakery-backend/internal/activity"
	"butterbakery-backend/internal/admin"
	"butterbakery-backend/internal/auth"
	"butterbakery-backend/internal/cashbox"
	"butterbakery-backend/internal/config"
	"butterbakery-backend/internal/dashboard"
	"butterbakery-backend/internal/database"
	"butterbakery-backend/internal/models"
	"butterbakery-backend/internal/notifications"
	"butterbakery-backend/internal/sales"
	"butterbakery-backend/internal/targets"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "حدث خطأ غير متوقع في الخادم",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// إدارة الفروع
	adminRoutes.Post("/branches", admin.CreateBranchHandler())
	adminRoutes.Get("/branches", admin.ListBranchesHandler())
	adminRoutes.Get("/branches/:id", admin.GetBranchHandler())
	adminRoutes.Put("/branches/:id", admin.UpdateBranchHandler())
	adminRoutes.Delete("/branches/:id", admin.DeactivateBranchHandler())
	adminRoutes.Post("/branches/:id/users", admin.CreateBranchUserHandler())
	adminRoutes.Get("/branches/:id/users", admin.ListBranchUsersHandler())

	// صندوق النقدية
	protected.Post("/cash-box",
		auth.RequireRole(models.RoleAdmin, models.RoleAccountant), cashbox.CreateCashBoxHandler())
	protected.Get("/cash-box", cashbox.GetCashBoxHandler())
	protected.Get("/cash-box/balance", cashbox.GetCashBoxBalanceHandler())
	protected.Post("/cash-box/transactions",
		auth.RequireRole(models.RoleAdmin, models.RoleAccountant, models.RoleSupervisor), cashbox.CreateTransactionHandler())
	protected.Get("/cash-box/transactions", cashbox.ListTransactionsHandler())
	protected.Get("/cash-box/transactions/:id", cashbox.GetTransactionHandler())
	protected.Get("/cash-box/report", cashbox.CashBoxReportHandler())
	protected.Post("/cash-box/process-daily-sales/:id",
		auth.RequireRole(models.RoleAdmin, models.RoleAccountant, models.RoleSupervisor), cashbox.ProcessDailySalesHandler())

	// التحويلات إلى المركز الرئيسي
	protected.Post("/cash-transfers",
		auth.RequireRole(models.RoleAdmin, models.RoleAccountant, models.RoleSupervisor), cashbox.CreateTransferHandler())
	protected.Get("/cash-transfers", cashbox.ListTransfersHandler())
	protected.Get("/cash-transfers/report", cashbox.TransfersReportHandler())
	protected.Get("/cash-transfers/:id", cashbox.GetTransferHandler())
	protected.Post("/cash-transfers/:id/approve",
		auth.RequireRole(models.RoleAdmin), cashbox.ApproveTransferHandler())
	protected.Post("/cash-transfers/:id/reject",
		auth.RequireRole(models.RoleAdmin), cashbox.RejectTransferHandler())

	// المبيعات اليومية
	protected.Post("/daily-sales", sales.CreateDailySalesHandler())
	protected.Get("/daily-sales", sales.ListDailySalesHandler())
	protected.Get("/daily-sales/:id", sales.GetDailySalesHandler())

	// الأهداف الشهرية
	protected.Post("/targets", auth.RequireRole(models.RoleAdmin), targets.CreateTargetHandler())
	protected.Get("/targets", targets.ListTargetsHandler())
	protected.Get("/targets/achievement", targets.TargetAchievementHandler())

	// الإشعارات والتنبيهات
	protected.Get("/notifications", notifications.ListNotificationsHandler())
	protected.Post("/notifications/:id/read", notifications.MarkNotificationReadHandler())
	protected.Post("/notifications/generate-alerts",
		auth.RequireRole(models.RoleAdmin), notifications.GenerateAlertsHandler())

	// سجل الحركات
	protected.Get("/activities", activity.ListActivitiesHandler())

	// لوحة المتابعة
	protected.Get("/dashboard/summary", dashboard.SummaryHandler())

	log.Println("server listening on port", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
