package messages

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"visionary-backend/login"

	"github.com/gin-gonic/gin"
)

// Message is a contact-form entry from a user to the studio.
type Message struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Replied   bool      `json:"replied"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(m *Message) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	res, err := r.db.Exec(`INSERT INTO messages (user_id, user_name, user_email, subject, message, replied, created_at) VALUES (?,?,?,?,?,0,?)`,
		m.UserID, m.UserName, m.UserEmail, m.Subject, m.Message, m.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = int(id)
	return nil
}

// List returns all messages newest first; userID 0 means every user.
func (r *Repository) List(userID int) ([]Message, error) {
	rows, err := r.db.Query(`SELECT id, user_id, user_name, user_email, subject, message, replied, created_at FROM messages WHERE (?=0 OR user_id=?) ORDER BY created_at DESC, id DESC`, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.UserName, &m.UserEmail, &m.Subject, &m.Message, &m.Replied, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repository) MarkReplied(id int) error {
	_, err := r.db.Exec(`UPDATE messages SET replied=1 WHERE id=?`, id)
	return err
}

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/messages", h.create)
	r.GET("/messages", h.list)
	r.POST("/messages/:id/replied", login.RequireAdmin(), h.markReplied)
}

func (h *Handler) create(c *gin.Context) {
	user := login.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "please login to send a message"})
		return
	}
	var body struct {
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if strings.TrimSpace(body.Subject) == "" || strings.TrimSpace(body.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please fill all fields"})
		return
	}
	m := Message{
		UserID:    user.ID,
		UserName:  user.Name,
		UserEmail: user.Email,
		Subject:   strings.TrimSpace(body.Subject),
		Message:   strings.TrimSpace(body.Message),
	}
	if err := h.repo.Insert(&m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, m)
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

func (h *Handler) markReplied(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.repo.MarkReplied(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
