package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Profiles is the optional TOML file of stored cluster connections. The
// eaddr argument may name a profile instead of listing hosts directly.
//
//	[clusters.prod]
//	hosts = ["https://es1.example.com:9200", "https://es2.example.com:9200"]
//	tsfield = "@timestamp"
//	use_ssl = true
//	verify_certs = true
//	username = "reader"
//	password = "secret"
type Profiles struct {
	Clusters map[string]Profile `toml:"clusters"`
}

// Profile is one stored cluster connection.
type Profile struct {
	Hosts       []string `toml:"hosts"`
	TimeField   string   `toml:"tsfield"`
	UseSSL      *bool    `toml:"use_ssl"`
	VerifyCerts *bool    `toml:"verify_certs"`
	Username    string   `toml:"username"`
	Password    string   `toml:"password"`
}

// LoadProfiles reads the profile file. A missing file is not an error — the
// file is optional and most invocations pass hosts directly.
func LoadProfiles(path string) (*Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Profiles{}, nil
		}
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	var p Profiles
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profiles %s: %w", path, err)
	}
	return &p, nil
}

// Apply resolves cfg.Eaddr against the stored profiles. When eaddr names a
// profile, the profile's hosts and connection settings fill in; values given
// explicitly in the argument bag always win.
func (p *Profiles) Apply(cfg *Search) error {
	prof, ok := p.Clusters[cfg.Eaddr]
	if !ok {
		return nil
	}
	if len(prof.Hosts) == 0 {
		return fmt.Errorf("profile %q has no hosts", cfg.Eaddr)
	}

	cfg.Eaddr = strings.Join(prof.Hosts, ",")
	if cfg.TimeField == "" {
		cfg.TimeField = prof.TimeField
	}
	if cfg.UseSSL == nil {
		cfg.UseSSL = prof.UseSSL
	}
	if cfg.VerifyCerts == nil {
		cfg.VerifyCerts = prof.VerifyCerts
	}
	cfg.Username = prof.Username
	cfg.Password = prof.Password
	return nil
}
