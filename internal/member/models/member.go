package models

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	id "memberd/pkg/domain"
	dErrors "memberd/pkg/domain-errors"
)

// Value objects in this package validate at construction. A Member is never
// assembled from unvalidated parts; handlers parse raw strings through the
// Parse functions and invalid values simply do not exist past that point.

const (
	loginIDMinLen = 4
	loginIDMaxLen = 16
	nameMaxLen    = 10
)

var (
	loginIDPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	// RFC-lite shape check: local@domain.tld. Full RFC 5322 parsing is
	// deliberately out of scope; delivery failures catch the rest.
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
)

// LoginID is a validated member login identifier: 4-16 alphanumeric chars.
type LoginID string

func (l LoginID) String() string {
	return string(l)
}

// ParseLoginID constructs a LoginID from external input.
func ParseLoginID(s string) (LoginID, error) {
	if strings.TrimSpace(s) == "" {
		return "", dErrors.New(dErrors.CodeValidation, "login id cannot be blank")
	}
	if !loginIDPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeValidation, "login id must contain only letters and digits")
	}
	if len(s) < loginIDMinLen || len(s) > loginIDMaxLen {
		return "", dErrors.Newf(dErrors.CodeValidation, "login id must be %d-%d characters", loginIDMinLen, loginIDMaxLen)
	}
	return LoginID(s), nil
}

// Name is a validated member display name: 1-10 letters in any script.
type Name string

func (n Name) String() string {
	return string(n)
}

// ParseName constructs a Name from external input. Any Unicode letter is
// accepted so Latin and Hangul names validate alike.
func ParseName(s string) (Name, error) {
	if strings.TrimSpace(s) == "" {
		return "", dErrors.New(dErrors.CodeValidation, "name cannot be blank")
	}
	runes := []rune(s)
	if len(runes) > nameMaxLen {
		return "", dErrors.Newf(dErrors.CodeValidation, "name must be at most %d characters", nameMaxLen)
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) {
			return "", dErrors.New(dErrors.CodeValidation, "name must contain only letters")
		}
	}
	return Name(s), nil
}

// Masked returns the name with everything after the first rune replaced by
// '*'. Single-rune names are returned as-is.
func (n Name) Masked() string {
	runes := []rune(string(n))
	if len(runes) < 2 {
		return string(n)
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-1)
}

// Email is a validated email address.
type Email string

func (e Email) String() string {
	return string(e)
}

// ParseEmail constructs an Email from external input.
func ParseEmail(s string) (Email, error) {
	if !emailPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeValidation, "email address is malformed")
	}
	return Email(s), nil
}

// BirthDate is a validated calendar date, never in the future.
type BirthDate struct {
	t time.Time
}

// ParseBirthDate constructs a BirthDate from a strict yyyy-MM-dd string.
// The caller supplies now so the future check is testable and read once per
// call rather than cached.
func ParseBirthDate(s string, now time.Time) (BirthDate, error) {
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return BirthDate{}, dErrors.New(dErrors.CodeValidation, "birth date must be formatted yyyy-MM-dd")
	}
	if parsed.After(now) {
		return BirthDate{}, dErrors.New(dErrors.CodeValidation, "birth date cannot be in the future")
	}
	return BirthDate{t: parsed}, nil
}

// BirthDateFromTime rehydrates a BirthDate from trusted storage. Stores use
// this; external input goes through ParseBirthDate.
func BirthDateFromTime(t time.Time) BirthDate {
	return BirthDate{t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func (b BirthDate) Time() time.Time {
	return b.t
}

func (b BirthDate) IsZero() bool {
	return b.t.IsZero()
}

// Compact renders yyyyMMdd.
func (b BirthDate) Compact() string {
	return b.t.Format("20060102")
}

// ShortCompact renders yyMMdd.
func (b BirthDate) ShortCompact() string {
	return b.t.Format("060102")
}

// MonthDay renders MMdd.
func (b BirthDate) MonthDay() string {
	return b.t.Format("0102")
}

// Dashed renders yyyy-MM-dd.
func (b BirthDate) Dashed() string {
	return b.t.Format("2006-01-02")
}

// Slashed renders yyyy/MM/dd.
func (b BirthDate) Slashed() string {
	return b.t.Format("2006/01/02")
}

// PasswordDigest is the hashed password form, the only one persisted. The
// raw password exists just long enough to validate and hash.
type PasswordDigest string

func (p PasswordDigest) String() string {
	return string(p)
}

// Member is the aggregate root for a member account.
//
// Invariants:
//   - every component was validated by its Parse function
//   - ID is the nil UUID until the store assigns one on first save
//   - PasswordDigest is never empty
type Member struct {
	ID        id.MemberID
	LoginID   LoginID
	Digest    PasswordDigest
	Name      Name
	BirthDate BirthDate
	Email     Email
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewMember assembles a member from already-validated value objects.
// It refuses zero values so a partially built aggregate cannot escape.
func NewMember(loginID LoginID, digest PasswordDigest, name Name, birthDate BirthDate, email Email, now time.Time) (*Member, error) {
	if loginID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "member requires a login id")
	}
	if digest == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "member requires a password digest")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "member requires a name")
	}
	if birthDate.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "member requires a birth date")
	}
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "member requires an email")
	}
	return &Member{
		LoginID:   loginID,
		Digest:    digest,
		Name:      name,
		BirthDate: birthDate,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Principal is the trusted result of a successful credential check or token
// validation. It carries no password material.
type Principal struct {
	MemberID id.MemberID
	LoginID  LoginID
}
