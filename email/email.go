package email

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"time"

	"visionary-backend/tiers"
)

func send(to, subject, body string) error {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}
	if host == "" || port == "" || user == "" || pass == "" || from == "" {
		return fmt.Errorf("SMTP environment variables missing")
	}
	addr := fmt.Sprintf("%s:%s", host, port)
	auth := smtp.PlainAuth("", user, pass, host)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", from, to, subject, body))
	return smtp.SendMail(addr, auth, from, []string{to}, msg)
}

func SendWelcome(to string) error {
	subject := "Welcome to Visionary"
	body := "Thanks for signing up. Your free plan is ready: one business proposal per day, five saved plans."
	if err := send(to, subject, body); err != nil {
		return err
	}
	log.Printf("[EMAIL] welcome sent to %s", to)
	return nil
}

// SendReceiptReceived confirms a payment receipt reached the review queue.
func SendReceiptReceived(to string, tier tiers.Tier, amount float64) error {
	subject := "Receipt received"
	body := fmt.Sprintf(`We received your payment receipt for the %s plan (%.2f EUR).

An administrator will review it shortly. While you wait you can create one trial proposal.`, tier, amount)
	if err := send(to, subject, body); err != nil {
		return err
	}
	log.Printf("[EMAIL] receipt received notification sent to %s", to)
	return nil
}

func SendReceiptApproved(to string, tier tiers.Tier, endDate time.Time) error {
	subject := "Subscription activated"
	body := fmt.Sprintf("Your %s subscription is now active until %s. Happy planning!", tier, endDate.Format("2006-01-02"))
	if err := send(to, subject, body); err != nil {
		return err
	}
	log.Printf("[EMAIL] approval notification sent to %s", to)
	return nil
}

func SendReceiptRejected(to string, tier tiers.Tier) error {
	subject := "Receipt could not be verified"
	body := fmt.Sprintf(`We could not verify your payment receipt for the %s plan.

Please double-check the transfer and submit a new receipt, or contact support.`, tier)
	if err := send(to, subject, body); err != nil {
		return err
	}
	log.Printf("[EMAIL] rejection notification sent to %s", to)
	return nil
}
