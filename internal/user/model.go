package user

import "time"

// User represents an account able to sign in to the admin area. Accounts are
// provisioned out-of-band (seed scripts); the API never creates or deletes
// them.
//
// OTPCode and OTPExpiry are either both nil or both set. A set code is valid
// strictly before OTPExpiry and is cleared when consumed, expired out, or
// when delivery of the code definitively failed.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash []byte
	IsAdmin      bool
	OTPCode      *string
	OTPExpiry    *time.Time
	CreatedAt    time.Time
}
