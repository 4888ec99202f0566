package security

import (
	"fmt"
	"unicode"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// PasswordValidationError represents a single password policy violation.
type PasswordValidationError struct {
	Code    string
	Message string
}

// Error implements error for PasswordValidationError.
func (e *PasswordValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// PasswordRule validates a password according to a specific policy rule.
type PasswordRule interface {
	Validate(password string) error
}

// PasswordRuleFunc adapts a function to be used as a PasswordRule.
type PasswordRuleFunc func(password string) error

// Validate executes the underlying rule function.
func (f PasswordRuleFunc) Validate(password string) error {
	return f(password)
}

// PasswordValidator applies a sequence of password rules.
type PasswordValidator struct {
	rules []PasswordRule
}

// NewPasswordValidator constructs a validator with the provided rules.
func NewPasswordValidator(rules ...PasswordRule) *PasswordValidator {
	copied := make([]PasswordRule, len(rules))
	copy(copied, rules)
	return &PasswordValidator{rules: copied}
}

// Validate executes all rules and returns the first encountered violation.
func (v *PasswordValidator) Validate(password string) error {
	if v == nil {
		return fmt.Errorf("password validator not configured")
	}
	for _, rule := range v.rules {
		if err := rule.Validate(password); err != nil {
			return err
		}
	}
	return nil
}

// MinLengthRule ensures the password has at least min characters.
func MinLengthRule(min int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if len([]rune(password)) < min {
			return &PasswordValidationError{
				Code:    "min_length",
				Message: fmt.Sprintf("password must be at least %d characters long", min),
			}
		}
		return nil
	})
}

// RequireCharacterClassesRule ensures the password mixes at least min of the
// four character classes (upper, lower, digit, symbol).
func RequireCharacterClassesRule(min int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if min <= 0 {
			return nil
		}

		var upper, lower, digit, symbol bool
		for _, r := range password {
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsLower(r):
				lower = true
			case unicode.IsDigit(r):
				digit = true
			default:
				symbol = true
			}
		}

		classes := 0
		for _, present := range []bool{upper, lower, digit, symbol} {
			if present {
				classes++
			}
		}

		if classes < min {
			return &PasswordValidationError{
				Code:    "character_classes",
				Message: fmt.Sprintf("password must mix at least %d character classes", min),
			}
		}
		return nil
	})
}

// MinStrengthRule rejects passwords scoring below min on the zxcvbn scale (0-4).
func MinStrengthRule(min int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		result := zxcvbn.PasswordStrength(password, nil)
		if result.Score < min {
			return &PasswordValidationError{
				Code:    "strength",
				Message: "password is too easy to guess",
			}
		}
		return nil
	})
}

// DefaultPasswordValidator returns the registration password policy.
func DefaultPasswordValidator() *PasswordValidator {
	return NewPasswordValidator(
		MinLengthRule(8),
		RequireCharacterClassesRule(2),
		MinStrengthRule(2),
	)
}
