// Package password holds the password policy engine and the hashing
// capability. The engine is a pure rule evaluator; hashing is always the
// caller's next step after validation succeeds.
package password

import (
	"strings"

	"memberd/internal/member/models"
	dErrors "memberd/pkg/domain-errors"
)

// Violation names the specific rule a candidate password failed.
type Violation string

const (
	TooShort                     Violation = "too_short"
	TooLong                      Violation = "too_long"
	DisallowedCharacter          Violation = "disallowed_character"
	InsufficientCharacterClasses Violation = "insufficient_character_classes"
	RepeatedCharacters           Violation = "repeated_characters"
	SequentialCharacters         Violation = "sequential_characters"
	ContainsBirthDate            Violation = "contains_birth_date"
	ContainsLoginID              Violation = "contains_login_id"
)

// PolicyError carries the violated rule so callers can surface a specific
// message. It maps to CodeValidation for transport purposes.
type PolicyError struct {
	Rule    Violation
	Message string
}

func (e PolicyError) Error() string {
	return e.Message
}

// Is matches on the violated rule, so tests and handlers can compare with
// errors.Is(err, PolicyError{Rule: TooShort}).
func (e PolicyError) Is(target error) bool {
	t, ok := target.(PolicyError)
	return ok && t.Rule == e.Rule
}

// Unwrap exposes the violation as a CodeValidation domain error so generic
// error translation keeps working.
func (e PolicyError) Unwrap() error {
	return dErrors.New(dErrors.CodeValidation, e.Message)
}

const punctuation = `!@#$%^&*()_+-=[]{}|;':",./<>?`

// Policy evaluates candidate passwords. The zero value is not usable;
// construct with DefaultPolicy and adjust fields before first use.
//
// Canonical rule set (one variant, chosen deliberately): 8-16 chars from
// ASCII letters, digits, and a fixed punctuation set; at least two of the
// three character classes; no triple repeats; no 3-char ascending or
// descending runs; no birth-date substrings in five formats; no login id
// substring.
type Policy struct {
	MinLength      int
	MaxLength      int
	MinClasses     int // minimum distinct character classes, 0 disables
	allowedPunct   map[byte]bool
	birthFormats   []func(models.BirthDate) string
	maxRun         int // longest allowed identical run
	maxSequenceRun int // longest allowed ascending/descending run
}

// DefaultPolicy returns the canonical policy.
func DefaultPolicy() Policy {
	allowed := make(map[byte]bool, len(punctuation))
	for i := 0; i < len(punctuation); i++ {
		allowed[punctuation[i]] = true
	}
	return Policy{
		MinLength:    8,
		MaxLength:    16,
		MinClasses:   2,
		allowedPunct: allowed,
		birthFormats: []func(models.BirthDate) string{
			models.BirthDate.Compact,
			models.BirthDate.ShortCompact,
			models.BirthDate.MonthDay,
			models.BirthDate.Dashed,
			models.BirthDate.Slashed,
		},
		maxRun:         2,
		maxSequenceRun: 2,
	}
}

// Validate runs the rule chain in fixed order and stops at the first
// violation, so the reported rule is deterministic when several overlap.
// loginID may be empty when no login id exists yet in the flow.
func (p Policy) Validate(raw string, birth models.BirthDate, loginID string) error {
	if len(raw) < p.MinLength {
		return PolicyError{Rule: TooShort, Message: "password is too short"}
	}
	if len(raw) > p.MaxLength {
		return PolicyError{Rule: TooLong, Message: "password is too long"}
	}
	if err := p.checkCharset(raw); err != nil {
		return err
	}
	if err := p.checkClasses(raw); err != nil {
		return err
	}
	if err := p.checkRepeats(raw); err != nil {
		return err
	}
	if err := p.checkSequences(raw); err != nil {
		return err
	}
	if err := p.checkBirthDate(raw, birth); err != nil {
		return err
	}
	if loginID != "" && strings.Contains(strings.ToLower(raw), strings.ToLower(loginID)) {
		return PolicyError{Rule: ContainsLoginID, Message: "password must not contain the login id"}
	}
	return nil
}

func (p Policy) checkCharset(raw string) error {
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case p.allowedPunct[c]:
		default:
			return PolicyError{Rule: DisallowedCharacter, Message: "password contains a disallowed character"}
		}
	}
	return nil
}

func (p Policy) checkClasses(raw string) error {
	if p.MinClasses <= 0 {
		return nil
	}
	var hasLetter, hasDigit, hasPunct bool
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
			hasLetter = true
		case c >= '0' && c <= '9':
			hasDigit = true
		default:
			hasPunct = true
		}
	}
	classes := 0
	for _, present := range []bool{hasLetter, hasDigit, hasPunct} {
		if present {
			classes++
		}
	}
	if classes < p.MinClasses {
		return PolicyError{Rule: InsufficientCharacterClasses, Message: "password needs more character variety"}
	}
	return nil
}

func (p Policy) checkRepeats(raw string) error {
	run := 1
	for i := 1; i < len(raw); i++ {
		if raw[i] == raw[i-1] {
			run++
			if run > p.maxRun {
				return PolicyError{Rule: RepeatedCharacters, Message: "password repeats the same character too many times"}
			}
		} else {
			run = 1
		}
	}
	return nil
}

// checkSequences flags runs like "abc" or "321". Only alphanumeric steps
// count; punctuation that happens to neighbor a digit in the ASCII table
// (for example "/0") is not a sequence a user would type from memory.
func (p Policy) checkSequences(raw string) error {
	ascending, descending := 1, 1
	for i := 1; i < len(raw); i++ {
		step := isAlnum(raw[i-1]) && isAlnum(raw[i])
		if step && raw[i] == raw[i-1]+1 {
			ascending++
		} else {
			ascending = 1
		}
		if step && raw[i] == raw[i-1]-1 {
			descending++
		} else {
			descending = 1
		}
		if ascending > p.maxSequenceRun || descending > p.maxSequenceRun {
			return PolicyError{Rule: SequentialCharacters, Message: "password contains a character sequence"}
		}
	}
	return nil
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func (p Policy) checkBirthDate(raw string, birth models.BirthDate) error {
	if birth.IsZero() {
		return nil
	}
	for _, format := range p.birthFormats {
		if needle := format(birth); needle != "" && strings.Contains(raw, needle) {
			return PolicyError{Rule: ContainsBirthDate, Message: "password must not contain the birth date"}
		}
	}
	return nil
}
