// Package sl contains small helpers for structured logging with slog,
// mainly for rendering error and money fields uniformly.
package sl

import (
	"log/slog"

	"github.com/shopspring/decimal"
)

// Err returns a slog.Attr with key "error" and the error's text.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Amount returns a slog.Attr rendering a decimal amount with the given
// key. Amounts are logged with their exact representation, not rounded.
func Amount(key string, d decimal.Decimal) slog.Attr {
	return slog.Attr{
		Key:   key,
		Value: slog.StringValue(d.String()),
	}
}
