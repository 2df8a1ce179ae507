package validation

import (
	"strings"
	"unicode/utf8"

	"task-assistant/internal/config"
	"task-assistant/internal/domain"
)

// Validator holds the primitive checks shared by the task validators.
type Validator struct {
	config *config.Config
}

// NewValidator creates a validator using built-in limits.
func NewValidator() *Validator {
	return &Validator{}
}

// NewValidatorWithConfig creates a validator honouring configured limits.
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	return &Validator{config: cfg}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength counts characters, not bytes.
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}

func (v *Validator) IsValidTaskID(id int64) bool {
	return id > 0
}

func (v *Validator) IsValidStatus(s string) bool {
	return domain.Status(s).IsValid()
}

func (v *Validator) IsValidPriority(p string) bool {
	return domain.Priority(p).IsValid()
}

// TitleMaxLength is the configured limit, never above domain.MaxTitleLength.
func (v *Validator) TitleMaxLength() int {
	if v.config != nil && v.config.Validation.TitleMaxLength > 0 && v.config.Validation.TitleMaxLength < domain.MaxTitleLength {
		return v.config.Validation.TitleMaxLength
	}
	return domain.MaxTitleLength
}
