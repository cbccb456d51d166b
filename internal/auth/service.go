package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/psoni/portfolio-api/internal/notification"
	"github.com/psoni/portfolio-api/internal/user"
)

// OTPTTL is how long an emailed code stays valid.
const OTPTTL = 10 * time.Minute

var (
	// ErrInvalidCredentials covers unknown username, non-admin account and
	// wrong password alike, so responses cannot be used to enumerate users.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotificationFailure means the code could not be emailed. The stored
	// OTP is cleared before this is returned.
	ErrNotificationFailure = errors.New("failed to send OTP")
	// ErrInvalidUser means the verify request referenced an unknown user.
	ErrInvalidUser = errors.New("invalid user")
	// ErrOTPExpired means no code is pending, the code expired, or a
	// concurrent attempt already consumed it.
	ErrOTPExpired = errors.New("OTP expired or invalid")
	// ErrInvalidOTP means the submitted code does not match the pending one.
	ErrInvalidOTP = errors.New("invalid OTP")
)

// Challenge is what a successful OTP request hands back to the client. The
// request identifier is the user ID and is not a secret: possession of the
// emailed code is the actual proof of identity.
type Challenge struct {
	MaskedEmail string
	RequestID   string
}

// Service orchestrates the two-step admin login: password check then OTP
// issuance, OTP check then session token issuance.
type Service struct {
	users    user.Repository
	notifier notification.Notifier
	tokens   *TokenIssuer
	logger   *slog.Logger
}

// NewService builds the auth service.
func NewService(users user.Repository, notifier notification.Notifier, tokens *TokenIssuer, logger *slog.Logger) *Service {
	return &Service{users: users, notifier: notifier, tokens: tokens, logger: logger}
}

// RequestOTP validates the password, stores a fresh code valid for OTPTTL
// and emails it to the account's registered address. A definitive delivery
// failure clears the stored code again so the user is never left with an
// "issued" OTP that was never sent.
func (s *Service) RequestOTP(ctx context.Context, username, password string) (Challenge, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Challenge{}, ErrInvalidCredentials
		}
		return Challenge{}, err
	}
	if !u.IsAdmin {
		return Challenge{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return Challenge{}, ErrInvalidCredentials
	}

	code, err := GenerateOTP()
	if err != nil {
		return Challenge{}, err
	}
	expiry := time.Now().Add(OTPTTL)

	if err := s.users.SetOTP(ctx, u.ID, code, expiry); err != nil {
		return Challenge{}, err
	}

	if err := s.notifier.Send(ctx, otpMessage(u.Email, code)); err != nil {
		s.logger.Error("otp email delivery failed", "user_id", u.ID, "error", err)
		if clearErr := s.users.ClearOTP(ctx, u.ID); clearErr != nil {
			s.logger.Error("clear undelivered otp", "user_id", u.ID, "error", clearErr)
		}
		return Challenge{}, ErrNotificationFailure
	}

	return Challenge{MaskedEmail: MaskEmail(u.Email), RequestID: u.ID}, nil
}

// VerifyOTP checks the submitted code and, exactly once per issued code,
// returns a signed session token. Consumption is a conditional update in the
// store, so a concurrent attempt with the same code loses the race and gets
// ErrOTPExpired. Expiry is inclusive: a code whose expiry equals the current
// instant is already expired.
func (s *Service) VerifyOTP(ctx context.Context, requestID, otp string) (string, error) {
	u, err := s.users.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", ErrInvalidUser
		}
		return "", err
	}

	now := time.Now()
	if u.OTPCode == nil || u.OTPExpiry == nil || !u.OTPExpiry.After(now) {
		return "", ErrOTPExpired
	}
	if *u.OTPCode != otp {
		return "", ErrInvalidOTP
	}

	consumed, err := s.users.ConsumeOTP(ctx, u.ID, otp, now)
	if err != nil {
		return "", err
	}
	if !consumed {
		return "", ErrOTPExpired
	}

	return s.tokens.Issue(u)
}

// MaskEmail hides most of the local part for display: abcdef@example.com
// becomes abc****@example.com. Local parts of three runes or fewer are
// masked entirely.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return "****"
	}
	local, domain := email[:at], email[at:]
	runes := []rune(local)
	if len(runes) <= 3 {
		return "****" + domain
	}
	return string(runes[:3]) + "****" + domain
}

func otpMessage(email, code string) notification.Message {
	return notification.Message{
		To:      email,
		Subject: "Your Admin Login OTP",
		Body:    fmt.Sprintf("Your one-time password for admin login is %s. It expires in 10 minutes.", code),
		HTMLBody: fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #4a5568;">Portfolio Admin Login OTP</h2>
  <p>Your one-time password for admin login is:</p>
  <div style="background-color: #f7fafc; padding: 20px; border-radius: 6px; text-align: center;">
    <h1 style="font-size: 36px; margin: 0; color: #2d3748; letter-spacing: 8px;">%s</h1>
  </div>
  <p style="color: #718096; margin-top: 20px;">This OTP will expire in 10 minutes.</p>
  <p style="color: #718096;">If you didn't request this OTP, please ignore this email.</p>
</div>`, code),
	}
}
