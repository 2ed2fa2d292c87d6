package utils

import (
	"fmt"
	"html"
	"net/smtp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// MailerConfig holds SMTP settings.
type MailerConfig struct {
	From        string
	Password    string
	SMTPHost    string
	SMTPPort    string
	CompanyName string
	BaseURL     string
}

// Mailer sends the transactional HTML emails.
type Mailer struct {
	cfg  MailerConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(cfg MailerConfig) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail}
}

// Enabled reports whether SMTP is configured.
func (m *Mailer) Enabled() bool {
	return m != nil && m.cfg.From != "" && m.cfg.Password != "" && m.cfg.SMTPHost != ""
}

const emailHeader = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #f4f8fb; padding: 20px;">
			<h2 style="color: #1e6fa8; margin: 0;">%s</h2>
		</div>
`

const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
			<p>&copy; %d %s. All rights reserved.</p>
		</div>
	</div>
</body>
</html>
`

func (m *Mailer) wrap(content string) string {
	company := html.EscapeString(m.cfg.CompanyName)
	return fmt.Sprintf(emailHeader, company) + content + fmt.Sprintf(emailFooter, time.Now().Year(), company)
}

func (m *Mailer) sendEmail(to []string, subject, body string) error {
	if !m.Enabled() {
		return fmt.Errorf("email configuration not set")
	}

	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", m.cfg.CompanyName, m.cfg.From),
		"To":           strings.Join(to, ","),
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var msg strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&msg, "%s: %s\r\n", k, headers[k])
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.SMTPHost)
	if err := m.send(m.cfg.SMTPHost+":"+m.cfg.SMTPPort, auth, m.cfg.From, to, []byte(msg.String())); err != nil {
		log.Error().Err(err).Strs("to", to).Msg("failed to send email")
		return err
	}

	log.Debug().Strs("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

// BookingLine is one confirmed booking listed in a confirmation email.
type BookingLine struct {
	TourTitle      string
	StartDate      time.Time
	NumberOfPeople int
	Total          float64
}

func (m *Mailer) SendBookingConfirmationEmail(to, name, paymentReference string, lines []BookingLine, total float64) error {
	var rows strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&rows, `<tr><td style="padding: 6px 0;">%s</td><td>%s</td><td style="text-align: center;">%d</td><td style="text-align: right;">$%.2f</td></tr>`,
			html.EscapeString(l.TourTitle), l.StartDate.Format("Jan 2, 2006"), l.NumberOfPeople, l.Total)
	}

	subject := fmt.Sprintf("Booking Confirmed - %s", m.cfg.CompanyName)
	body := m.wrap(fmt.Sprintf(`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Your trip is booked!</h1>
					<p>Hello %s,</p>
					<p>Thank you for your payment. Your reference is <strong>%s</strong>.</p>
					<table style="width: 100%%; border-collapse: collapse;">
						<tr><th style="text-align: left;">Tour</th><th style="text-align: left;">Start</th><th>Travelers</th><th style="text-align: right;">Total</th></tr>
						%s
					</table>
					<p style="text-align: right;"><strong>Paid: $%.2f</strong></p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/bookings" style="background-color: #1e6fa8; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">View My Bookings</a>
					</div>
				</div>`,
		html.EscapeString(name), html.EscapeString(paymentReference), rows.String(), total, m.cfg.BaseURL))

	return m.sendEmail([]string{to}, subject, body)
}

func (m *Mailer) SendBookingCanceledEmail(to, name, tourTitle string) error {
	subject := fmt.Sprintf("Booking Canceled - %s", m.cfg.CompanyName)
	body := m.wrap(fmt.Sprintf(`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Booking Canceled</h1>
					<p>Hello %s,</p>
					<p>Your booking for <strong>%s</strong> has been canceled.</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/tours" style="background-color: #1e6fa8; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Browse Tours</a>
					</div>
				</div>`,
		html.EscapeString(name), html.EscapeString(tourTitle), m.cfg.BaseURL))

	return m.sendEmail([]string{to}, subject, body)
}

func (m *Mailer) SendPasswordResetEmail(to, otp string, validFor time.Duration) error {
	subject := fmt.Sprintf("Password Reset Code - %s", m.cfg.CompanyName)
	body := m.wrap(fmt.Sprintf(`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Reset your password</h1>
					<p>Use the code below to reset your password. It expires in %d minutes.</p>
					<p style="font-size: 28px; letter-spacing: 6px; text-align: center;"><strong>%s</strong></p>
					<p>If you did not request a reset you can ignore this email.</p>
				</div>`,
		int(validFor.Minutes()), html.EscapeString(otp)))

	return m.sendEmail([]string{to}, subject, body)
}
