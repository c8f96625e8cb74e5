package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/edge-engine/internal/models"
)

// CustomValidator wraps the validator with domain-specific rules.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a validator with the custom rules registered.
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("markets", validateMarkets)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration.
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate runs the registered rules plus cross-field checks.
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateMarkets checks that every configured market name is one the engine
// can price. An empty list is valid and means all markets.
func validateMarkets(fl validator.FieldLevel) bool {
	names, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	for _, name := range names {
		if _, found := marketByName(name); !found {
			return false
		}
	}
	return true
}

func marketByName(name string) (models.Market, bool) {
	for _, market := range models.AllMarkets {
		if string(market) == name {
			return market, true
		}
	}
	return "", false
}

// ParseMarkets resolves the configured market whitelist. Nil means all.
func (c *Config) ParseMarkets() []models.Market {
	if len(c.Slate.Markets) == 0 {
		return nil
	}
	markets := make([]models.Market, 0, len(c.Slate.Markets))
	for _, name := range c.Slate.Markets {
		if market, ok := marketByName(name); ok {
			markets = append(markets, market)
		}
	}
	return markets
}

func validateCrossField(cfg *Config) error {
	if cfg.Slate.AccaCount > 0 && cfg.Slate.AccaStake <= 0 {
		return fmt.Errorf("slate.acca_stake must be positive when slate.acca_count is set")
	}
	if cfg.Engine.AnalyticalWeight+cfg.Engine.EmpiricalWeight > 0 {
		sum := cfg.Engine.AnalyticalWeight + cfg.Engine.EmpiricalWeight
		if sum < 0.99 || sum > 1.01 {
			return fmt.Errorf("engine blend weights must sum to 1.0, got %.2f", sum)
		}
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, fmt.Sprintf("%s failed on '%s'", e.Namespace(), e.Tag()))
	}
	return fmt.Errorf("configuration invalid: %s", strings.Join(messages, "; "))
}
