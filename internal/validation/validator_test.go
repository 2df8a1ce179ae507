package validation

import (
	"testing"

	"task-assistant/internal/config"
)

func TestValidator_IsNonEmptyString(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"Empty string", "", false},
		{"Whitespace only", "   ", false},
		{"Tab and newline", "\t\n", false},
		{"Valid string", "buy milk", true},
		{"String with leading/trailing spaces", "  buy milk  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.IsNonEmptyString(tt.input)
			if result != tt.expected {
				t.Errorf("IsNonEmptyString(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidator_IsValidStringLength(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name     string
		input    string
		min, max int
		expected bool
	}{
		{"Within bounds", "milk", 1, 10, true},
		{"Too short", "", 1, 10, false},
		{"Too long", "groceries", 1, 5, false},
		{"Counts runes not bytes", "héllo", 1, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.IsValidStringLength(tt.input, tt.min, tt.max)
			if result != tt.expected {
				t.Errorf("IsValidStringLength(%q, %d, %d) = %v, expected %v", tt.input, tt.min, tt.max, result, tt.expected)
			}
		})
	}
}

func TestValidator_Enums(t *testing.T) {
	validator := NewValidator()

	if !validator.IsValidStatus("in_progress") || validator.IsValidStatus("done") {
		t.Errorf("IsValidStatus accepted the wrong set")
	}
	if !validator.IsValidPriority("urgent") || validator.IsValidPriority("critical") {
		t.Errorf("IsValidPriority accepted the wrong set")
	}
	if validator.IsValidTaskID(0) || !validator.IsValidTaskID(1) {
		t.Errorf("IsValidTaskID must require a positive id")
	}
}

func TestValidator_TitleMaxLength(t *testing.T) {
	tests := []struct {
		name       string
		configured int
		expected   int
	}{
		{"Default", 0, 255},
		{"Lower limit", 40, 40},
		{"Capped at column size", 1000, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig()
			cfg.Validation.TitleMaxLength = tt.configured
			if got := NewValidatorWithConfig(cfg).TitleMaxLength(); got != tt.expected {
				t.Errorf("TitleMaxLength() = %d, expected %d", got, tt.expected)
			}
		})
	}

	if got := NewValidator().TitleMaxLength(); got != 255 {
		t.Errorf("TitleMaxLength() without config = %d, expected 255", got)
	}
}
