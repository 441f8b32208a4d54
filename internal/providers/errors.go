package providers

import "errors"

// Misconfiguration errors. Every other failure is reported on Result.
var (
	ErrNotConfigured   = errors.New("provider not configured")
	ErrUnknownProvider = errors.New("unknown provider")
)

// MaskKey renders an API key safe for logs: the first and last four
// characters around a fixed mask. Keys shorter than eight characters are fully masked.
func MaskKey(key string) string {
	const mask = "••••••••"
	if len(key) < 8 {
		return mask
	}
	return key[:4] + mask + key[len(key)-4:]
}
