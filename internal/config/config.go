// Package config holds the server's runtime settings. Values come from
// defaults, then the environment, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Server configures the whiteboard server.
type Server struct {
	// Addr is the listen address, host:port.
	Addr string
	// Origins lists the Origin header values accepted on WebSocket upgrade.
	// Empty accepts every origin.
	Origins []string
	// SendBuffer is the per-connection outbound queue length.
	SendBuffer int
	// ReadLimit caps a single inbound frame, in bytes.
	ReadLimit int64
	// RetainEmpty keeps the board after the last participant leaves.
	RetainEmpty bool
	LogLevel    string
	LogFormat   string
}

// Default returns the built-in settings.
func Default() Server {
	return Server{
		Addr:        ":8080",
		SendBuffer:  256,
		ReadLimit:   64 * 1024,
		RetainEmpty: true,
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// FromEnv overlays environment variables read through lookup onto c.
// PORT and ORIGIN are honoured for platforms that set them.
func FromEnv(c Server, lookup func(string) (string, bool)) (Server, error) {
	if v, ok := lookup("PORT"); ok && v != "" {
		c.Addr = ":" + v
	}
	if v, ok := lookup("WHITEBOARD_ADDR"); ok && v != "" {
		c.Addr = v
	}
	for _, key := range []string{"ORIGIN", "WHITEBOARD_ORIGIN"} {
		if v, ok := lookup(key); ok && v != "" {
			c.Origins = splitList(v)
		}
	}
	if v, ok := lookup("WHITEBOARD_SEND_BUFFER"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("%w: WHITEBOARD_SEND_BUFFER: %v", ErrInvalid, err)
		}
		c.SendBuffer = n
	}
	if v, ok := lookup("WHITEBOARD_RETAIN_EMPTY"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c, fmt.Errorf("%w: WHITEBOARD_RETAIN_EMPTY: %v", ErrInvalid, err)
		}
		c.RetainEmpty = b
	}
	if v, ok := lookup("WHITEBOARD_LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup("WHITEBOARD_LOG_FORMAT"); ok && v != "" {
		c.LogFormat = v
	}
	return c, nil
}

// Validate checks c for values the server cannot run with.
func (c Server) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: empty listen address", ErrInvalid)
	}
	if c.SendBuffer < 1 {
		return fmt.Errorf("%w: send buffer must be positive, got %d", ErrInvalid, c.SendBuffer)
	}
	if c.ReadLimit < 512 {
		return fmt.Errorf("%w: read limit must be at least 512 bytes, got %d", ErrInvalid, c.ReadLimit)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.LogFormat)
	}
	return nil
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("%w: log level %q", ErrInvalid, s)
	}
	return l, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
