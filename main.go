package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"visionary-backend/conn"
	"visionary-backend/coupons"
	"visionary-backend/finance"
	"visionary-backend/generation"
	"visionary-backend/login"
	"visionary-backend/messages"
	"visionary-backend/migrations"
	"visionary-backend/openai"
	"visionary-backend/plans"
	"visionary-backend/profile"
	"visionary-backend/quota"
	"visionary-backend/receipts"
	"visionary-backend/stats"
)

func main() {
	_ = godotenv.Load()

	db, err := conn.NewMySQL()
	if err != nil {
		log.Fatalf("mysql connection failed: %v", err)
	}
	migrations.Init(db)
	if err := migrations.Migrate(); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}
	if err := migrations.SeedAdminUser(); err != nil {
		log.Printf("seed admin user failed: %v", err)
	}
	if err := migrations.SeedDefaultCoupons(); err != nil {
		log.Printf("seed coupons failed: %v", err)
	}
	stats.Init(db)

	planRepo := plans.NewRepository(db)
	receiptRepo := receipts.NewRepository(db)
	couponRepo := coupons.NewRepository(db)
	messageRepo := messages.NewRepository(db)

	r := gin.Default()
	r.Use(login.TokenExpiryHeader())

	r.POST("/login", login.Handler)
	r.POST("/register", login.RegisterHandler)
	r.GET("/session", login.SessionHandler)
	r.POST("/logout", login.LogoutHandler)
	r.POST("/refresh", login.RefreshHandler)
	r.POST("/change-password", login.ChangePasswordHandler)

	finance.RegisterRoutes(r)
	generation.NewHandler(openai.NewClient(), quota.NewValidator(db), plans.NewStore(planRepo)).RegisterRoutes(r)
	plans.NewHandler(planRepo).RegisterRoutes(r)
	receipts.NewHandler(receiptRepo, couponRepo).RegisterRoutes(r)
	coupons.NewHandler(couponRepo).RegisterRoutes(r)
	messages.NewHandler(messageRepo).RegisterRoutes(r)
	profile.NewHandler(planRepo).RegisterRoutes(r)
	stats.RegisterAdminRoutes(r, receiptRepo)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
