package coupons

import (
	"net/http"
	"strconv"
	"strings"

	"visionary-backend/login"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/coupons/apply", h.apply)

	admin := r.Group("/", login.RequireAdmin())
	admin.GET("/coupons", h.list)
	admin.POST("/coupons", h.create)
	admin.DELETE("/coupons/:id", h.delete)
}

func (h *Handler) apply(c *gin.Context) {
	var body struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Code) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please enter a code"})
		return
	}
	cp, err := h.repo.GetByCode(strings.TrimSpace(body.Code))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if cp == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": cp.Code, "discount_percent": cp.DiscountPercent})
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.repo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *Handler) create(c *gin.Context) {
	var cp Coupon
	if err := c.ShouldBindJSON(&cp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	cp.Code = strings.ToUpper(strings.TrimSpace(cp.Code))
	if cp.Code == "" || cp.DiscountPercent < 0 || cp.DiscountPercent > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code and a discount between 0 and 100 are required"})
		return
	}
	if err := h.repo.Create(&cp); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, cp)
}

func (h *Handler) delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.repo.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
