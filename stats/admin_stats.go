package stats

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"visionary-backend/login"
	"visionary-backend/receipts"

	"github.com/gin-gonic/gin"
)

var db *sql.DB

// Init sets the DB connection for stats queries
func Init(database *sql.DB) {
	db = database
}

// AdminStatsResponse is the admin dashboard aggregate.
type AdminStatsResponse struct {
	Users     UserStats      `json:"users"`
	Financial FinancialStats `json:"financial"`
	Activity  ActivityStats  `json:"activity"`
}

type UserStats struct {
	Total        int `json:"total"`
	Subscribed   int `json:"subscribed"`
	NewThisMonth int `json:"new_this_month"`
}

type FinancialStats struct {
	TotalRevenue    float64 `json:"total_revenue"`
	MonthlyRevenue  float64 `json:"monthly_revenue"`
	PendingReceipts int     `json:"pending_receipts"`
}

type ActivityStats struct {
	TotalPlans     int `json:"total_plans"`
	PlansThisMonth int `json:"plans_this_month"`
	OpenMessages   int `json:"open_messages"`
}

// RegisterAdminRoutes registers the admin dashboard endpoint
func RegisterAdminRoutes(r *gin.Engine, receiptRepo *receipts.Repository) {
	r.GET("/admin/stats", login.RequireAdmin(), func(c *gin.Context) {
		resp, err := collect(receiptRepo)
		if err != nil {
			log.Printf("[stats][error] %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not collect statistics"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": resp})
	})
}

func collect(receiptRepo *receipts.Repository) (*AdminStatsResponse, error) {
	if db == nil {
		return nil, sql.ErrConnDone
	}
	var resp AdminStatsResponse
	monthStart := time.Now().AddDate(0, 0, 1-time.Now().Day()).Truncate(24 * time.Hour)

	if err := db.QueryRow(`SELECT COUNT(1) FROM users`).Scan(&resp.Users.Total); err != nil {
		return nil, err
	}
	if err := db.QueryRow(`SELECT COUNT(1) FROM users WHERE subscription_status='active' AND tier <> 'free'`).Scan(&resp.Users.Subscribed); err != nil {
		return nil, err
	}
	if err := db.QueryRow(`SELECT COUNT(1) FROM users WHERE created_at >= ?`, monthStart).Scan(&resp.Users.NewThisMonth); err != nil {
		return nil, err
	}

	total, err := receiptRepo.ApprovedRevenue(time.Time{})
	if err != nil {
		return nil, err
	}
	resp.Financial.TotalRevenue = total
	monthly, err := receiptRepo.ApprovedRevenue(monthStart)
	if err != nil {
		return nil, err
	}
	resp.Financial.MonthlyRevenue = monthly
	pending, err := receiptRepo.CountByStatus(receipts.StatusPending)
	if err != nil {
		return nil, err
	}
	resp.Financial.PendingReceipts = pending

	if err := db.QueryRow(`SELECT COUNT(1) FROM plans`).Scan(&resp.Activity.TotalPlans); err != nil {
		return nil, err
	}
	if err := db.QueryRow(`SELECT COUNT(1) FROM plans WHERE created_at >= ?`, monthStart).Scan(&resp.Activity.PlansThisMonth); err != nil {
		return nil, err
	}
	if err := db.QueryRow(`SELECT COUNT(1) FROM messages WHERE replied=0`).Scan(&resp.Activity.OpenMessages); err != nil {
		return nil, err
	}
	return &resp, nil
}
