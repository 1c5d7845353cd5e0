package services

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"casa-tiana-server/models"

	gomail "gopkg.in/gomail.v2"
)

// Mailer sends transactional guest email. Every send is fire-and-forget: a
// delivery failure is logged and never fails the operation that triggered it.
type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewMailer() *Mailer {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if port == 0 {
		port = 587
	}
	return &Mailer{
		host: os.Getenv("SMTP_HOST"),
		port: port,
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASSWORD"),
		from: os.Getenv("SMTP_FROM"),
	}
}

func (m *Mailer) send(to, subject, body string) {
	if m.host == "" {
		log.Printf("⚠️  SMTP not configured, skipping email %q to %s", subject, to)
		return
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	if err := d.DialAndSend(msg); err != nil {
		log.Printf("❌ email %q to %s failed: %v", subject, to, err)
		return
	}
	log.Printf("📧 email %q sent to %s", subject, to)
}

// SendReservationConfirmed tells the guest their payment went through.
func (m *Mailer) SendReservationConfirmed(r *models.Reservation, room *models.Room) {
	body := fmt.Sprintf(
		"Olá %s,\n\nA sua reserva %s está confirmada.\n\nQuarto: %s\nCheck-in: %s\nCheck-out: %s\nNoites: %d\nTotal: %.0f CVE\n\nAté breve,\nCasa Tiana",
		r.GuestName, r.ReservationNumber, room.Name,
		r.CheckIn.Format("02/01/2006"), r.CheckOut.Format("02/01/2006"),
		r.Nights, r.TotalPrice,
	)
	m.send(r.GuestEmail, "Reserva confirmada - "+r.ReservationNumber, body)
}

// SendPendingPaymentReminder nudges a guest whose reservation is still
// awaiting payment.
func (m *Mailer) SendPendingPaymentReminder(r *models.Reservation, room *models.Room) {
	body := fmt.Sprintf(
		"Olá %s,\n\nA sua reserva %s (%s, %s a %s) aguarda pagamento de %.0f CVE.\nSem pagamento a reserva expira em %s.\n\nCasa Tiana",
		r.GuestName, r.ReservationNumber, room.Name,
		r.CheckIn.Format("02/01/2006"), r.CheckOut.Format("02/01/2006"),
		r.TotalPrice, r.ExpiresAt.Format("02/01/2006 15:04"),
	)
	m.send(r.GuestEmail, "Pagamento pendente - "+r.ReservationNumber, body)
}

// SendWelcome greets a guest shortly before arrival.
func (m *Mailer) SendWelcome(r *models.Reservation, room *models.Room) {
	body := fmt.Sprintf(
		"Olá %s,\n\nEstamos à sua espera no dia %s (quarto %s).\n\nBoa viagem,\nCasa Tiana",
		r.GuestName, r.CheckIn.Format("02/01/2006"), room.Name,
	)
	m.send(r.GuestEmail, "Bem-vindo à Casa Tiana", body)
}
