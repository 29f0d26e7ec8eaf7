package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the parameters against their declared constraints and
// normalizes unset tuning values back to defaults.
func Validate(p *ConnectionParameters) error {
	if p == nil {
		return errors.New("connection parameters are nil")
	}

	if p.Port == 0 {
		p.Port = DefaultPort
	}
	if p.ConnectRetryDelay <= 0 {
		p.ConnectRetryDelay = DefaultConnectRetryDelay
	}
	if p.ConnectTimeout <= 0 {
		p.ConnectTimeout = DefaultConnectTimeout
	}

	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("invalid connection parameters: field %s failed on %q", f.Field(), f.Tag())
		}
		return fmt.Errorf("invalid connection parameters: %w", err)
	}

	if p.MaxIdleConns > p.MaxConns && p.MaxConns > 0 {
		return fmt.Errorf("invalid connection parameters: max_idle_conns (%d) exceeds max_conns (%d)", p.MaxIdleConns, p.MaxConns)
	}

	return nil
}
