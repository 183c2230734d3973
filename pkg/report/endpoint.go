package report

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
	ErrMetadataUnsupported = errors.New("metadata can only be sent over grpc")
)

type Protocol int

const (
	ProtocolGRPC Protocol = iota
	ProtocolHTTP
)

const (
	DefaultGRPCPort = 4317
	DefaultHTTPPort = 4318
)

func (p Protocol) String() string {
	if p == ProtocolHTTP {
		return "http"
	}
	return "grpc"
}

func (p Protocol) DefaultPort() int {
	if p == ProtocolHTTP {
		return DefaultHTTPPort
	}
	return DefaultGRPCPort
}

// ParseProtocol accepts grpc/g and http/h. The JSON flavour of OTLP/HTTP is
// recognised but not supported.
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(s) {
	case "grpc", "g":
		return ProtocolGRPC, nil
	case "http", "h":
		return ProtocolHTTP, nil
	case "http_json", "hj":
		return ProtocolGRPC, fmt.Errorf("%s: %w", s, ErrUnsupportedProtocol)
	}
	return ProtocolGRPC, fmt.Errorf("unknown protocol %q (expect grpc or http)", s)
}

// Endpoint describes where and how telemetry is exported.
type Endpoint struct {
	Protocol Protocol
	Host     string
	// Port 0 selects the protocol default.
	Port     int
	TLS      bool
	CACert   string
	Domain   string
	Metadata []KeyValue
	Timeout  time.Duration
}

func (e Endpoint) Address() string {
	port := e.Port
	if port == 0 {
		port = e.Protocol.DefaultPort()
	}
	return net.JoinHostPort(e.Host, strconv.Itoa(port))
}

func (e Endpoint) Validate() error {
	if e.Protocol == ProtocolHTTP && len(e.Metadata) > 0 {
		return ErrMetadataUnsupported
	}
	if !e.TLS && (e.CACert != "" || e.Domain != "") {
		return errors.New("ca cert and domain require tls")
	}
	return nil
}

func (e Endpoint) timeout() time.Duration {
	if e.Timeout <= 0 {
		return 10 * time.Second
	}
	return e.Timeout
}

func (e Endpoint) tlsConfig() (*tls.Config, error) {
	cfg := &tls.Config{ServerName: e.Domain, MinVersion: tls.VersionTLS12}
	if e.CACert == "" {
		return cfg, nil
	}
	pem, err := os.ReadFile(e.CACert)
	if err != nil {
		return nil, fmt.Errorf("failed to read ca cert: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", e.CACert)
	}
	cfg.RootCAs = pool
	return cfg, nil
}
