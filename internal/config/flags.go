package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d database DSN
//	-c/-config json file path with configs
//	-environment deployment environment name
//	-log-level minimum log level
//	-session-secret session token digest secret
//	-webhook-secret payment event signing secret
//	-session-ttl session lifetime (e.g., "720h")
//	-setup-token-ttl password-setup token lifetime (e.g., "48h")
//	-request-timeout request timeout (e.g., "30s", "1m")
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var databaseDSN string
	var jsonConfigPath string
	var environment string
	var logLevel string
	var sessionSecret string
	var webhookSecret string
	var sessionTTL time.Duration
	var setupTokenTTL time.Duration
	var requestTimeout time.Duration

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&environment, "environment", "", "Deployment environment")
	flag.StringVar(&logLevel, "log-level", "", "Minimum log level")
	flag.StringVar(&sessionSecret, "session-secret", "", "Session token digest secret")
	flag.StringVar(&webhookSecret, "webhook-secret", "", "Payment event signing secret")
	flag.DurationVar(&sessionTTL, "session-ttl", 0, "Session lifetime (e.g., 720h)")
	flag.DurationVar(&setupTokenTTL, "setup-token-ttl", 0, "Setup token lifetime (e.g., 48h)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")

	flag.Parse()

	cfg := &StructuredConfig{
		App: App{
			Environment:   environment,
			LogLevel:      logLevel,
			SessionSecret: sessionSecret,
			WebhookSecret: webhookSecret,
			SessionTTL:    sessionTTL,
			SetupTokenTTL: setupTokenTTL,
		},
		Storage: Storage{
			DB: DB{DSN: databaseDSN},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		JSONFilePath: jsonConfigPath,
	}

	return cfg
}

// String returns the "host:port" representation of the address, or an
// empty string when the address was never set.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses a "[host]:[port]" flag value into the receiver.
// Implements the flag.Value interface.
func (a *NetAddress) Set(s string) error {
	hp := strings.Split(s, ":")
	if len(hp) != 2 {
		return errors.New("need address in a form host:port")
	}

	port, err := strconv.Atoi(hp[1])
	if err != nil {
		return err
	}

	if hp[0] != "" {
		if ip := net.ParseIP(hp[0]); ip == nil && hp[0] != "localhost" {
			return errors.New("incorrect host")
		}
	}

	a.Host = hp[0]
	a.Port = port

	return nil
}
