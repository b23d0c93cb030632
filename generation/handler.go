package generation

import (
	"log"
	"net/http"
	"strings"

	"visionary-backend/finance"
	"visionary-backend/login"
	"visionary-backend/plans"
	"visionary-backend/quota"
	"visionary-backend/sse"

	"github.com/gin-gonic/gin"
)

// Handler orchestrates one generation request: quota reservation, a single
// AI call, then usage and plan-store bookkeeping. The quota reservation is
// atomic, and it is compensated (released) when the AI call fails so a
// failed generation never consumes quota.
type Handler struct {
	AI    AIClient
	Quota *quota.Validator
	Store *plans.Store
}

func NewHandler(ai AIClient, v *quota.Validator, store *plans.Store) *Handler {
	return &Handler{AI: ai, Quota: v, Store: store}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/generate", h.Generate)
	r.POST("/generate/stream", h.GenerateStream)
}

type request struct {
	Language string                   `json:"language"`
	Form     finance.BusinessFormData `json:"form"`
}

func (h *Handler) Generate(c *gin.Context) {
	user := login.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}
	lang := normalizeLang(req.Language)

	today := quota.Today()
	limit := quota.DailyLimit(user)
	ok, err := h.Quota.Reserve(c.Request.Context(), user.ID, today, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check usage"})
		return
	}
	if !ok {
		h.denyLimit(c, user.SubscriptionStatus, limit)
		return
	}
	used := quota.EffectiveCount(user, today) + 1

	text, err := h.AI.GeneratePlan(c.Request.Context(), req.Form, lang, user.Tier)
	if err != nil {
		log.Printf("[generation][failed] user_id=%d err=%v", user.ID, err)
		if rerr := h.Quota.Release(c.Request.Context(), user.ID, today); rerr != nil {
			log.Printf("[generation][release_failed] user_id=%d err=%v", user.ID, rerr)
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "plan generation failed, please try again"})
		return
	}

	p := &plans.SavedPlan{CompanyName: req.Form.CompanyName, PlanText: text, FormData: req.Form}
	resp := gin.H{
		"plan":      text,
		"remaining": limit - used,
	}
	if _, err := h.Store.Record(user, p); err != nil {
		// The generation already succeeded; never discard its result over a
		// bookkeeping failure.
		log.Printf("[generation][save_failed] user_id=%d err=%v", user.ID, err)
		resp["warning"] = "plan generated but could not be saved"
	} else {
		resp["plan_id"] = p.ID
	}
	c.JSON(http.StatusOK, resp)
}

// GenerateStream applies the same gatekeeping as Generate, then streams
// tokens over SSE while accumulating the full text for bookkeeping.
func (h *Handler) GenerateStream(c *gin.Context) {
	user := login.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}
	lang := normalizeLang(req.Language)

	today := quota.Today()
	limit := quota.DailyLimit(user)
	ok, err := h.Quota.Reserve(c.Request.Context(), user.ID, today, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check usage"})
		return
	}
	if !ok {
		h.denyLimit(c, user.SubscriptionStatus, limit)
		return
	}

	ch, err := h.AI.StreamPlan(c.Request.Context(), req.Form, lang, user.Tier)
	if err != nil {
		log.Printf("[generation][failed] user_id=%d stream=1 err=%v", user.ID, err)
		if rerr := h.Quota.Release(c.Request.Context(), user.ID, today); rerr != nil {
			log.Printf("[generation][release_failed] user_id=%d err=%v", user.ID, rerr)
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "plan generation failed, please try again"})
		return
	}

	var full strings.Builder
	out := make(chan string)
	go func() {
		defer close(out)
		for token := range ch {
			full.WriteString(token)
			out <- token
		}
	}()
	sse.Stream(c, out)

	p := &plans.SavedPlan{CompanyName: req.Form.CompanyName, PlanText: full.String(), FormData: req.Form}
	if _, err := h.Store.Record(user, p); err != nil {
		log.Printf("[generation][save_failed] user_id=%d stream=1 err=%v", user.ID, err)
	}
}

func (h *Handler) denyLimit(c *gin.Context, status string, limit int) {
	msg := "Daily limit reached. Upgrade your plan or try again tomorrow."
	if status == "pending" {
		msg = "Trial limit: 1 proposal allowed while pending approval. Please wait for admin."
	}
	c.JSON(http.StatusForbidden, gin.H{"error": msg, "limit": limit})
}

func normalizeLang(lang string) string {
	if lang == "fi" {
		return "fi"
	}
	return "en"
}
