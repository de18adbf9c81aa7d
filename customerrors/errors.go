package customerrors

import "errors"

var (
	ErrTickerRequired   = errors.New("Ticker is required")
	ErrUniverseRequired = errors.New("a universe must be selected before building a portfolio")
	ErrInvalidCriteria  = errors.New("invalid portfolio criteria")
	ErrEmptyMessage     = errors.New("chat message is empty")
	ErrEmptyIndicators  = errors.New("no data found or empty data in indicators_list")
	ErrNoPortfolio      = errors.New("no portfolio to export")
	ErrSessionNotFound  = errors.New("dashboard session not found")
	ErrInvalidPeriod    = errors.New("unsupported period")
	ErrUnknownUniverse  = errors.New("universe not found")
)

// ServerMessenger is implemented by errors that carry a message supplied by
// the analytics backend.
type ServerMessenger interface {
	ServerMessage() string
}

// UserMessage returns the backend supplied message wrapped in err, or
// fallback when there is none.
func UserMessage(err error, fallback string) string {
	var sm ServerMessenger
	if errors.As(err, &sm) {
		if msg := sm.ServerMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}

// IsValidation reports whether err was raised before any network call.
func IsValidation(err error) bool {
	return errors.Is(err, ErrTickerRequired) ||
		errors.Is(err, ErrUniverseRequired) ||
		errors.Is(err, ErrInvalidCriteria) ||
		errors.Is(err, ErrEmptyMessage) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrUnknownUniverse)
}
