// Package server provides the listeners the HTTP server accepts connections on.
package server

import (
	"crypto/tls"
	"fmt"
	"net"

	"github.com/dtroode/authkeeper/internal/model"
)

var (
	_ model.SecurityLayer = (*TLSListener)(nil)
	_ model.SecurityLayer = (*PlainListener)(nil)
)

// TLSListener opens TLS listeners from a certificate and key on disk.
// The key pair is read on every Listen call.
type TLSListener struct {
	certFileName       string
	privateKeyFileName string
}

// NewTLSListener creates a new TLSListener instance.
//
// Parameters:
//   - certFileName: Path to the PEM encoded certificate chain
//   - privateKeyFileName: Path to the PEM encoded private key
//
// Returns a pointer to the TLSListener. Neither file is read until Listen.
func NewTLSListener(certFileName, privateKeyFileName string) *TLSListener {
	return &TLSListener{
		certFileName:       certFileName,
		privateKeyFileName: privateKeyFileName,
	}
}

// Listen loads the key pair and opens a TLS listener on addr.
// Connections below TLS 1.2 are refused and only http/1.1 is negotiated.
//
// Parameters:
//   - protocol: The network to listen on, usually "tcp"
//   - addr: The host:port to bind
//
// Returns the listener, or an error if the key pair cannot be loaded or the
// address cannot be bound.
func (l *TLSListener) Listen(protocol, addr string) (net.Listener, error) {
	cert, err := tls.LoadX509KeyPair(l.certFileName, l.privateKeyFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		NextProtos:   []string{"http/1.1"},
	}

	ln, err := tls.Listen(protocol, addr, tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return ln, nil
}

// PlainListener opens unencrypted TCP listeners.
type PlainListener struct{}

func NewPlainListener() *PlainListener {
	return &PlainListener{}
}

// Listen opens an unencrypted listener on addr.
//
// Parameters:
//   - protocol: The network to listen on, usually "tcp"
//   - addr: The host:port to bind
//
// Returns the listener or an error if the address cannot be bound.
func (l *PlainListener) Listen(protocol, addr string) (net.Listener, error) {
	ln, err := net.Listen(protocol, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return ln, nil
}
