// Package config parses the host platform's space-separated key=value
// argument bag into a typed search configuration, optionally merging a
// stored cluster profile from a TOML file.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidArgument is returned for malformed or unknown key=value pairs.
var ErrInvalidArgument = errors.New("invalid argument")

// Admin action names.
const (
	ActionIndicesList   = "indices-list"
	ActionClusterHealth = "cluster-health"
)

// Defaults mirroring the platform command's option defaults.
const (
	DefaultQuery    = "*"
	DefaultPageSize = 1000
	DefaultTimeout  = 10 * time.Second
)

// Search is the full configuration of one command invocation.
type Search struct {
	Eaddr      string
	Index      string
	Query      string
	TimeField  string
	Earliest   string
	Latest     string
	Fields     []string
	Types      []string
	PageSize   int
	Scan       bool
	IncludeES  bool
	IncludeRaw bool
	Action     string
	Timeout    time.Duration

	// Tri-state: nil means "not given in the bag", so a stored profile may
	// still decide. An explicit false is preserved and beats the profile.
	UseSSL      *bool
	VerifyCerts *bool

	// Credentials come only from a stored profile, never from the bag.
	Username string
	Password string
}

// ParseArgs parses the key=value argument bag. Unknown keys and malformed
// values fail fast; nothing here touches the network.
func ParseArgs(args []string) (*Search, error) {
	cfg := &Search{
		Query:    DefaultQuery,
		PageSize: DefaultPageSize,
		Scan:     true,
		Timeout:  DefaultTimeout,
	}

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: expected key=value, got %q", ErrInvalidArgument, arg)
		}

		var err error
		switch key {
		case "eaddr":
			cfg.Eaddr = value
		case "index":
			cfg.Index = value
		case "query":
			cfg.Query = value
		case "tsfield":
			cfg.TimeField = value
		case "earliest":
			cfg.Earliest = value
		case "latest":
			cfg.Latest = value
		case "fields":
			cfg.Fields = splitList(value)
		case "stype":
			cfg.Types = splitList(value)
		case "limit":
			cfg.PageSize, err = strconv.Atoi(value)
			if err == nil && cfg.PageSize <= 0 {
				err = fmt.Errorf("must be positive")
			}
		case "scan":
			cfg.Scan, err = parseBool(value)
		case "include_es":
			cfg.IncludeES, err = parseBool(value)
		case "include_raw":
			cfg.IncludeRaw, err = parseBool(value)
		case "use_ssl":
			cfg.UseSSL, err = parseBoolPtr(value)
		case "verify_certs":
			cfg.VerifyCerts, err = parseBoolPtr(value)
		case "action":
			if value != ActionIndicesList && value != ActionClusterHealth {
				err = fmt.Errorf("must be %q or %q", ActionIndicesList, ActionClusterHealth)
			}
			cfg.Action = value
		case "timeout":
			cfg.Timeout, err = time.ParseDuration(value)
			if err == nil && cfg.Timeout <= 0 {
				err = fmt.Errorf("must be positive")
			}
		default:
			return nil, fmt.Errorf("%w: unknown key %q", ErrInvalidArgument, key)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q: %v", ErrInvalidArgument, key, value, err)
		}
	}

	if cfg.Eaddr == "" {
		return nil, fmt.Errorf("%w: eaddr is required", ErrInvalidArgument)
	}
	if cfg.Action == "" && cfg.Index == "" {
		return nil, fmt.Errorf("%w: index is required", ErrInvalidArgument)
	}

	return cfg, nil
}

// SSLEnabled reports the effective use_ssl setting (default off).
func (s *Search) SSLEnabled() bool {
	return s.UseSSL != nil && *s.UseSSL
}

// VerifyEnabled reports the effective verify_certs setting (default off).
func (s *Search) VerifyEnabled() bool {
	return s.VerifyCerts != nil && *s.VerifyCerts
}

// Normalize settles derived settings after any profile has been applied.
// TLS verification only means something over TLS.
func (s *Search) Normalize() {
	if !s.SSLEnabled() {
		off := false
		s.VerifyCerts = &off
	}
}

func splitList(value string) []string {
	var out []string
	for _, f := range strings.Split(value, ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true", "t", "1", "yes":
		return true, nil
	case "false", "f", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean")
	}
}

func parseBoolPtr(value string) (*bool, error) {
	b, err := parseBool(value)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
