package server

import (
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultHost binds all interfaces, like the reference deployment.
	DefaultHost = "0.0.0.0"
	// DefaultPort is the grid surface port.
	DefaultPort = 8888
	// DefaultMaxBodyBytes limits submission payloads to 4 KiB.
	DefaultMaxBodyBytes int64 = 4 << 10
	// DefaultReadTimeout guards hung clients.
	DefaultReadTimeout = 10 * time.Second
	// DefaultWriteTimeout bounds handler writes, including the wait on the
	// single writer.
	DefaultWriteTimeout = 15 * time.Second
	// DefaultIdleTimeout bounds keep-alive connections.
	DefaultIdleTimeout = 60 * time.Second
	// DefaultShutdownTimeout bounds draining on shutdown.
	DefaultShutdownTimeout = 5 * time.Second
	// DefaultCookieName carries the session token.
	DefaultCookieName = "handler_cookie"
)

// Settings captures runtime configuration for the HTTP server.
type Settings struct {
	Host            string
	Port            int
	MaxBodyBytes    int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	CookieName      string

	// RateLimit is the sustained submissions per second accepted across all
	// clients. Zero disables limiting.
	RateLimit float64
	Burst     int
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Host:            DefaultHost,
		Port:            DefaultPort,
		MaxBodyBytes:    DefaultMaxBodyBytes,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		CookieName:      DefaultCookieName,
	}
}

// normalize replaces unusable values with defaults. Port 0 is kept and
// binds an ephemeral port.
func (s *Settings) normalize() {
	s.Host = strings.TrimSpace(s.Host)
	if s.Host == "" {
		s.Host = DefaultHost
	}
	if s.Port < 0 || s.Port > 65535 {
		s.Port = DefaultPort
	}
	if s.MaxBodyBytes <= 0 {
		s.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if s.ReadTimeout <= 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout <= 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.IdleTimeout <= 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
	if s.ShutdownTimeout <= 0 {
		s.ShutdownTimeout = DefaultShutdownTimeout
	}
	s.CookieName = strings.TrimSpace(s.CookieName)
	if s.CookieName == "" {
		s.CookieName = DefaultCookieName
	}
	if s.RateLimit < 0 {
		s.RateLimit = 0
	}
	if s.RateLimit > 0 && s.Burst <= 0 {
		s.Burst = 1
	}
}

// Address returns the TCP bind address in host:port form.
func (s Settings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
