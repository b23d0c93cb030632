package profile

import (
	"log"
	"net/http"
	"time"

	"visionary-backend/login"
	"visionary-backend/migrations"
	"visionary-backend/plans"
	"visionary-backend/quota"
	"visionary-backend/tiers"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	plans *plans.Repository
}

func NewHandler(planRepo *plans.Repository) *Handler {
	return &Handler{plans: planRepo}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/profile", h.getProfile)
	r.POST("/profile/preferences", h.updatePreferences)
}

// getProfile returns the account plus a usage block so the dashboard can
// render quota and storage meters in one roundtrip.
func (h *Handler) getProfile(c *gin.Context) {
	user := login.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	// Lazy expiry: an active subscription past its end date reads as
	// expired. The limits themselves follow tier and pending status only.
	if user.SubscriptionStatus == migrations.StatusActive && user.SubscriptionEndDate.Valid && user.SubscriptionEndDate.Time.Before(time.Now()) {
		if err := migrations.ExpireSubscription(user.ID); err != nil {
			log.Printf("[profile][expire_failed] user_id=%d err=%v", user.ID, err)
		} else {
			user.SubscriptionStatus = migrations.StatusExpired
			log.Printf("[profile][expired] user_id=%d end_date=%s", user.ID, user.SubscriptionEndDate.Time.Format(time.RFC3339))
		}
	}

	today := quota.Today()
	limit := quota.DailyLimit(user)
	used := quota.EffectiveCount(user, today)
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}

	storageUsed, err := h.plans.CountByUser(user.ID)
	if err != nil {
		log.Printf("[profile][storage_count_failed] user_id=%d err=%v", user.ID, err)
	}

	resp := gin.H{
		"id":                   user.ID,
		"name":                 user.Name,
		"phone":                user.Phone,
		"email":                user.Email,
		"role":                 user.Role,
		"tier":                 string(user.Tier),
		"subscription_status":  user.SubscriptionStatus,
		"dark_mode":            user.DarkMode,
		"language":             user.Language,
		"created_at":           user.CreatedAt.Format(time.RFC3339),
		"usage": gin.H{
			"daily_limit":     limit,
			"used_today":      used,
			"remaining_today": remaining,
			"storage_used":    storageUsed,
			"storage_cap":     tiers.For(user.Tier).StorageCap,
		},
	}
	if user.SubscriptionEndDate.Valid {
		resp["subscription_end_date"] = user.SubscriptionEndDate.Time.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *Handler) updatePreferences(c *gin.Context) {
	user := login.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var body struct {
		DarkMode *bool   `json:"dark_mode"`
		Language *string `json:"language"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	darkMode := user.DarkMode
	if body.DarkMode != nil {
		darkMode = *body.DarkMode
	}
	language := user.Language
	if body.Language != nil {
		if *body.Language != "en" && *body.Language != "fi" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported language"})
			return
		}
		language = *body.Language
	}
	if err := migrations.UpdateUserPreferences(user.ID, darkMode, language); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save preferences"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dark_mode": darkMode, "language": language})
}
