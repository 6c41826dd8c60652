package adapter

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// ClientTLSConfig builds a mutual TLS client config for the broker.
//
// All args are filepaths in PEM format.
func ClientTLSConfig(ca, cert, key string) (*tls.Config, error) {
	const op = "adapter.ClientTLSConfig"

	caPEM, err := os.ReadFile(ca)
	if err != nil {
		return nil, fmt.Errorf("%s: read CA certificate: %w", op, err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("%s: %w", op, errors.New("no CA certificate in "+ca))
	}

	clientCert, err := tls.LoadX509KeyPair(cert, key)
	if err != nil {
		return nil, fmt.Errorf("%s: load key pair: %w", op, err)
	}

	return &tls.Config{
		RootCAs:      pool,
		Certificates: []tls.Certificate{clientCert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
