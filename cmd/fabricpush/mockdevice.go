package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"flag"
	"log/slog"
	"math/big"
	"net"
	"net/http"
	"time"

	"github.com/mvantol/fabricpush/internal/shell/devicesim"
)

// runMockDevice serves a simulated device for local testing. Without a
// configured certificate it generates a throwaway self-signed one,
// matching the unverified-TLS default on the client side.
func runMockDevice(cfg *Config, logger *slog.Logger, args []string) int {
	fs := flag.NewFlagSet("mockdevice", flag.ContinueOnError)
	listen := fs.String("listen", cfg.MockDevice.Listen, "Listen address")
	username := fs.String("username", cfg.MockDevice.Username, "Required basic-auth username (empty disables auth)")
	password := fs.String("password", cfg.MockDevice.Password, "Required basic-auth password")
	rejectLine := fs.String("reject-line", "", "Fail any config line containing this substring")
	failCommit := fs.Bool("fail-commit", false, "Fail every commit")
	if err := fs.Parse(args); err != nil {
		return ExitConfigError
	}

	sim := devicesim.New(*username, *password, logger)
	sim.SetFaults(devicesim.Faults{RejectLine: *rejectLine, FailCommit: *failCommit})

	server := &http.Server{
		Addr:         *listen,
		Handler:      sim.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	certFile, keyFile := cfg.MockDevice.CertFile, cfg.MockDevice.KeyFile
	if certFile == "" || keyFile == "" {
		cert, err := selfSignedCert(*listen)
		if err != nil {
			logger.Error("could not generate self-signed certificate", "error", err)
			return ExitConfigError
		}
		server.TLSConfig = &tls.Config{Certificates: []tls.Certificate{cert}}
	}

	logger.Info("mock device listening", "addr", *listen, "auth", *username != "")
	if err := server.ListenAndServeTLS(certFile, keyFile); err != nil && err != http.ErrServerClosed {
		logger.Error("mock device server failed", "error", err)
		return ExitConfigError
	}
	return ExitSuccess
}

// selfSignedCert issues an in-memory certificate for the listen
// address.
func selfSignedCert(listen string) (tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, err
	}

	host, _, err := net.SplitHostPort(listen)
	if err != nil || host == "" {
		host = "localhost"
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "fabricpush-mockdevice"},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     []string{"localhost"},
	}
	if ip := net.ParseIP(host); ip != nil {
		template.IPAddresses = []net.IP{ip}
	} else {
		template.DNSNames = append(template.DNSNames, host)
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}, nil
}
