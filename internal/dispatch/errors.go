package dispatch

import "fmt"

// ConfigurationError marks a dispatch that could never succeed as requested:
// an unknown post kind, a missing page credential, or a post without the
// media its kind requires. These are reported and recorded, never silently
// dropped.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

func configErrorf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// ChannelError is the normalized failure surface of every channel adapter.
// Message is always human-readable (it becomes the post's status reason);
// Provider carries the provider's structured error payload verbatim when one
// was returned.
type ChannelError struct {
	Channel  string
	Message  string
	Provider string
}

func (e *ChannelError) Error() string {
	return e.Message
}

func NewChannelError(channel, message, provider string) *ChannelError {
	return &ChannelError{Channel: channel, Message: message, Provider: provider}
}
