package demoserver

import (
	"net"
	"strconv"
)

// Config controls where the fixture site listens and which page versions
// it starts with.
type Config struct {
	// Host to bind. Empty binds every interface.
	Host string
	Port int
	// InitialVersion is the version every page starts on and returns to on
	// reset.
	InitialVersion int
}

// DefaultConfig listens on localhost:9999 with every page on version 1.
func DefaultConfig() Config {
	return Config{
		Host:           "127.0.0.1",
		Port:           9999,
		InitialVersion: 1,
	}
}

// Addr is the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
