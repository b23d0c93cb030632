package receipts

import (
	"encoding/base64"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"visionary-backend/coupons"
	mailer "visionary-backend/email"
	"visionary-backend/files"
	"visionary-backend/login"
	"visionary-backend/migrations"
	"visionary-backend/tiers"
)

type Handler struct {
	repo    *Repository
	coupons *coupons.Repository
}

func NewHandler(repo *Repository, couponRepo *coupons.Repository) *Handler {
	return &Handler{repo: repo, coupons: couponRepo}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/checkout/receipt", h.submit)
	r.GET("/receipts", h.list)

	admin := r.Group("/", login.RequireAdmin())
	admin.POST("/receipts/:id/approve", h.approve)
	admin.POST("/receipts/:id/reject", h.reject)
}

func maxReceiptBytes() int64 {
	mb := 10
	if v := os.Getenv("MAX_RECEIPT_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			mb = n
		}
	}
	return int64(mb) << 20
}

// submit records a manual payment claim: the requested tier, the price
// after any coupon, and the uploaded proof. The account then enters the
// pending regime (one trial generation until the admin decides).
func (h *Handler) submit(c *gin.Context) {
	user := login.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	tier := tiers.Tier(c.PostForm("tier"))
	if !tiers.Paid(tier) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a paid tier (plus or pro) is required"})
		return
	}

	upFile, err := c.FormFile("receipt")
	if err != nil || upFile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please attach your payment receipt"})
		return
	}
	if upFile.Size <= 0 || upFile.Size > maxReceiptBytes() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receipt file is empty or too large"})
		return
	}

	discount := 0
	if code := strings.TrimSpace(c.PostForm("coupon")); code != "" {
		cp, err := h.coupons.GetByCode(code)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not validate coupon"})
			return
		}
		if cp == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid code"})
			return
		}
		discount = cp.DiscountPercent
	}
	price := tiers.For(tier).MonthlyPrice * (1 - float64(discount)/100)

	f, err := upFile.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read receipt file"})
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read receipt file"})
		return
	}

	contentType := upFile.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	fileData := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)

	// For PDF receipts the admin console shows an extracted text snippet
	// instead of an image preview. Best effort only.
	preview := ""
	if strings.ToLower(filepath.Ext(upFile.Filename)) == ".pdf" {
		tmpDir := "./tmp"
		_ = os.MkdirAll(tmpDir, 0o755)
		tmp := filepath.Join(tmpDir, uuid.NewString()+".pdf")
		if err := os.WriteFile(tmp, data, 0o644); err == nil {
			if text, err := files.ExtractPDFText(tmp, 2000); err == nil {
				preview = strings.TrimSpace(text)
			} else {
				log.Printf("[receipts][preview_failed] user_id=%d file=%s err=%v", user.ID, upFile.Filename, err)
			}
			_ = os.Remove(tmp)
		}
	}

	rc := Receipt{
		UserID:      user.ID,
		Email:       user.Email,
		Tier:        tier,
		Amount:      price,
		FileName:    upFile.Filename,
		FileData:    fileData,
		TextPreview: preview,
		Status:      StatusPending,
	}
	if err := h.repo.Insert(&rc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := migrations.MarkSubscriptionPending(user.ID, tier); err != nil {
		log.Printf("[receipts][pending_mark_failed] user_id=%d receipt_id=%d err=%v", user.ID, rc.ID, err)
	}
	if err := mailer.SendReceiptReceived(user.Email, tier, price); err != nil {
		log.Printf("send receipt-received email failed for %s: %v", user.Email, err)
	}
	log.Printf("[receipts][submitted] user_id=%d receipt_id=%d tier=%s amount=%.2f discount=%d", user.ID, rc.ID, tier, price, discount)

	rc.FileData = "" // keep the response light
	c.JSON(http.StatusCreated, gin.H{"data": rc, "message": "Receipt sent! Admin will review. You can create 1 trial proposal while waiting."})
}

func (h *Handler) list(c *gin.Context) {
	user := login.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	userID := user.ID
	if user.Role == "admin" {
		userID = 0
	}
	list, err := h.repo.List(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// approve is terminal: the receipt flips to approved and the user gains
// the paid tier for the full subscription term from the approval moment.
func (h *Handler) approve(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	rc, err := h.repo.GetByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "receipt not found"})
		return
	}
	ok, err := h.repo.UpdateStatus(id, StatusApproved)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "receipt already processed"})
		return
	}
	endDate := time.Now().Add(tiers.SubscriptionTerm)
	if err := migrations.ActivateSubscription(rc.UserID, rc.Tier, endDate); err != nil {
		// The receipt is approved; a failed cascade must be visible, not
		// silently swallowed.
		log.Printf("[receipts][cascade_failed] receipt_id=%d user_id=%d err=%v", id, rc.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "receipt approved but user update failed"})
		return
	}
	if err := mailer.SendReceiptApproved(rc.Email, rc.Tier, endDate); err != nil {
		log.Printf("send approval email failed for %s: %v", rc.Email, err)
	}
	log.Printf("[receipts][approved] receipt_id=%d user_id=%d tier=%s end_date=%s", id, rc.UserID, rc.Tier, endDate.Format(time.RFC3339))
	c.JSON(http.StatusOK, gin.H{"status": "approved", "subscription_end_date": endDate.Format(time.RFC3339)})
}

func (h *Handler) reject(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	rc, err := h.repo.GetByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "receipt not found"})
		return
	}
	ok, err := h.repo.UpdateStatus(id, StatusRejected)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "receipt already processed"})
		return
	}
	if err := migrations.ClearPendingSubscription(rc.UserID, rc.Tier); err != nil {
		log.Printf("[receipts][clear_pending_failed] receipt_id=%d user_id=%d err=%v", id, rc.UserID, err)
	}
	if err := mailer.SendReceiptRejected(rc.Email, rc.Tier); err != nil {
		log.Printf("send rejection email failed for %s: %v", rc.Email, err)
	}
	log.Printf("[receipts][rejected] receipt_id=%d user_id=%d tier=%s", id, rc.UserID, rc.Tier)
	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}
