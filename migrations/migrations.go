package migrations

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"visionary-backend/tiers"
)

type User struct {
	ID                  int          `db:"id"`
	Name                string       `db:"name"`
	Phone               string       `db:"phone"`
	Email               string       `db:"email"`
	Password            string       `db:"password"`
	Role                string       `db:"role"`
	Tier                tiers.Tier   `db:"tier"`
	SubscriptionStatus  string       `db:"subscription_status"`
	SubscriptionEndDate sql.NullTime `db:"subscription_end_date"`
	GenerationsToday    int          `db:"generations_today"`
	LastGenerationDate  string       `db:"last_generation_date"` // calendar date YYYY-MM-DD, not a timestamp
	DarkMode            bool         `db:"dark_mode"`
	Language            string       `db:"language"`
	CreatedAt           time.Time    `db:"created_at"`
	UpdatedAt           time.Time    `db:"updated_at"`
}

// Subscription statuses stored on the user row.
const (
	StatusNone    = "none"
	StatusPending = "pending"
	StatusActive  = "active"
	StatusExpired = "expired"
)

var db *sql.DB

// Init sets the DB connection for migrations and queries
func Init(database *sql.DB) {
	db = database
}

// Migrate creates required tables if they do not exist
func Migrate() error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	createUsers := `
	CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		phone VARCHAR(50) NOT NULL DEFAULT '',
		email VARCHAR(191) NOT NULL UNIQUE,
		password VARCHAR(191) NOT NULL,
		role VARCHAR(50) NOT NULL DEFAULT 'user',
		tier VARCHAR(20) NOT NULL DEFAULT 'free',
		subscription_status VARCHAR(20) NOT NULL DEFAULT 'none',
		subscription_end_date DATETIME NULL,
		generations_today INT NOT NULL DEFAULT 0,
		last_generation_date VARCHAR(10) NOT NULL DEFAULT '',
		dark_mode TINYINT(1) NOT NULL DEFAULT 0,
		language VARCHAR(5) NOT NULL DEFAULT 'en',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createUsers); err != nil {
		return err
	}

	createPlans := `
	CREATE TABLE IF NOT EXISTS plans (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL,
		user_email VARCHAR(191) NOT NULL,
		company_name VARCHAR(191) NOT NULL,
		plan_text LONGTEXT NOT NULL,
		form_data LONGTEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createPlans); err != nil {
		return err
	}

	createReceipts := `
	CREATE TABLE IF NOT EXISTS receipts (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL,
		email VARCHAR(191) NOT NULL,
		tier VARCHAR(20) NOT NULL,
		amount DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		file_name VARCHAR(255) NOT NULL,
		file_data LONGTEXT NOT NULL,
		text_preview TEXT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createReceipts); err != nil {
		return err
	}

	createCoupons := `
	CREATE TABLE IF NOT EXISTS coupons (
		id INT AUTO_INCREMENT PRIMARY KEY,
		code VARCHAR(50) NOT NULL UNIQUE,
		discount_percent INT NOT NULL DEFAULT 0
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createCoupons); err != nil {
		return err
	}

	createMessages := `
	CREATE TABLE IF NOT EXISTS messages (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL,
		user_name VARCHAR(100) NOT NULL,
		user_email VARCHAR(191) NOT NULL,
		subject VARCHAR(191) NOT NULL,
		message TEXT NOT NULL,
		replied TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createMessages); err != nil {
		return err
	}
	return nil
}

// SeedAdminUser inserts the admin account if it doesn't exist
func SeedAdminUser() error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@sanistudio.com"
	}
	pass := os.Getenv("ADMIN_PASSWORD")
	if pass == "" {
		pass = "admin"
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(1) FROM users WHERE email = ?", email).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		_, err := db.Exec(
			"INSERT INTO users (name, email, password, role, tier, subscription_status) VALUES (?, ?, ?, ?, ?, ?)",
			"Admin", email, pass, "admin", string(tiers.Pro), StatusActive,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// SeedDefaultCoupons inserts the launch coupons when the table is empty
func SeedDefaultCoupons() error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(1) FROM coupons").Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		if _, err := db.Exec(`INSERT INTO coupons (code, discount_percent) VALUES ('SANI10', 10)`); err != nil {
			return err
		}
		if _, err := db.Exec(`INSERT INTO coupons (code, discount_percent) VALUES ('PROMO20', 20)`); err != nil {
			return err
		}
	}
	return nil
}

const userColumns = "id, name, IFNULL(phone,''), email, password, role, tier, subscription_status, subscription_end_date, generations_today, IFNULL(last_generation_date,''), dark_mode, IFNULL(language,'en'), created_at, updated_at"

func scanUser(row *sql.Row) *User {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Phone, &u.Email, &u.Password, &u.Role, &u.Tier, &u.SubscriptionStatus,
		&u.SubscriptionEndDate, &u.GenerationsToday, &u.LastGenerationDate, &u.DarkMode, &u.Language,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil
	}
	return &u
}

// GetUserByEmail retrieves a user from DB by email
func GetUserByEmail(email string) *User {
	if db == nil {
		return nil
	}
	return scanUser(db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", email))
}

// GetUserByID retrieves a user by its ID
func GetUserByID(id int) *User {
	if db == nil {
		return nil
	}
	return scanUser(db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id))
}

// CreateUser inserts a new user record with free-tier defaults
func CreateUser(name, phone, email, password, role string) error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	_, err := db.Exec(
		"INSERT INTO users (name, phone, email, password, role, tier, subscription_status, generations_today) VALUES (?, ?, ?, ?, ?, 'free', 'none', 0)",
		name, phone, email, password, role,
	)
	return err
}

// EmailExists checks if a user with the given email exists
func EmailExists(email string) (bool, error) {
	if db == nil {
		return false, fmt.Errorf("db is not initialized")
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(1) FROM users WHERE email = ?", email).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateUserPassword updates the password for the given user id
func UpdateUserPassword(id int, password string) error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	_, err := db.Exec("UPDATE users SET password = ?, updated_at = NOW() WHERE id = ?", password, id)
	return err
}

// UpdateUserPreferences persists the display preferences on the user row
func UpdateUserPreferences(id int, darkMode bool, language string) error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	_, err := db.Exec("UPDATE users SET dark_mode = ?, language = ?, updated_at = NOW() WHERE id = ?", darkMode, language, id)
	return err
}

// MarkSubscriptionPending records a submitted receipt: the requested tier is
// stored and the account enters the single-trial pending regime.
func MarkSubscriptionPending(id int, tier tiers.Tier) error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	_, err := db.Exec("UPDATE users SET tier = ?, subscription_status = ?, updated_at = NOW() WHERE id = ?",
		string(tier), StatusPending, id)
	return err
}

// ActivateSubscription is the cascade of an approved receipt.
func ActivateSubscription(id int, tier tiers.Tier, endDate time.Time) error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	_, err := db.Exec("UPDATE users SET tier = ?, subscription_status = ?, subscription_end_date = ?, updated_at = NOW() WHERE id = ?",
		string(tier), StatusActive, endDate, id)
	return err
}

// ClearPendingSubscription resets a rejected claimant back to 'none'. Only
// applies while the account is still pending on that tier.
func ClearPendingSubscription(id int, tier tiers.Tier) error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	_, err := db.Exec("UPDATE users SET subscription_status = ?, updated_at = NOW() WHERE id = ? AND subscription_status = ? AND tier = ?",
		StatusNone, id, StatusPending, string(tier))
	return err
}

// ExpireSubscription flips an active account whose end date has passed.
func ExpireSubscription(id int) error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	_, err := db.Exec("UPDATE users SET subscription_status = ?, updated_at = NOW() WHERE id = ? AND subscription_status = ?",
		StatusExpired, id, StatusActive)
	return err
}
