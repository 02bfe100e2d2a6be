// Package config assembles the runtime configuration for the registry tool.
// Settings come from three layers, later ones winning: built-in defaults, an
// optional HCL file named by INSTANCES_CONFIG, and the INSTANCES_*
// environment variables. Everything is validated here, at the boundary, so
// the core packages never see malformed input.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"grimm.is/instanced/internal/logging"
	"grimm.is/instanced/internal/validation"
)

// Environment variables recognized by every command.
const (
	EnvBasePath    = "INSTANCES_BASE_PATH"
	EnvBaseID      = "INSTANCES_BASE_ID"
	EnvHostsDomain = "INSTANCES_HOSTS_DOMAIN"
	EnvAddressSets = "INSTANCES_ADDRESS_SETS"
	EnvConfigFile  = "INSTANCES_CONFIG"
	EnvLogLevel    = "INSTANCES_LOG_LEVEL"
)

// Defaults.
const (
	DefaultBasePath    = "/var/lib/misc/instances"
	DefaultHostsDomain = ".instance.internal"
	DefaultAddressSets = "host"
)

// Config is the assembled, validated configuration.
type Config struct {
	// BasePath is the path prefix shared by the registry document and its
	// companion files.
	BasePath string
	// BaseID optionally distinguishes multiple registry instances under
	// the same base path.
	BaseID string
	// HostsDomain is the suffix appended to generated host names,
	// including its leading dot.
	HostsDomain string
	// AddressSets lists the named address-set groups to render.
	AddressSets []string
	// LogLevel is the textual log level (debug, info, warn, error).
	LogLevel string
}

// fileConfig is the HCL schema of the optional config file:
//
//	registry {
//	  base_path = "/var/lib/misc/instances"
//	  base_id   = "lan"
//	}
//	hosts {
//	  domain = ".lan.internal"
//	}
//	sets {
//	  groups = ["host", "nas"]
//	}
//	log_level = "info"
type fileConfig struct {
	Registry *registryBlock `hcl:"registry,block"`
	Hosts    *hostsBlock    `hcl:"hosts,block"`
	Sets     *setsBlock     `hcl:"sets,block"`
	LogLevel *string        `hcl:"log_level,optional"`
}

type registryBlock struct {
	BasePath *string `hcl:"base_path,optional"`
	BaseID   *string `hcl:"base_id,optional"`
}

type hostsBlock struct {
	Domain *string `hcl:"domain,optional"`
}

type setsBlock struct {
	Groups []string `hcl:"groups,optional"`
}

// Load assembles and validates the configuration from defaults, the optional
// config file, and the environment.
func Load() (*Config, error) {
	cfg := &Config{
		BasePath:    DefaultBasePath,
		HostsDomain: DefaultHostsDomain,
		LogLevel:    "info",
	}
	groupSpec := DefaultAddressSets

	if path := os.Getenv(EnvConfigFile); path != "" {
		var fc fileConfig
		if err := hclsimple.DecodeFile(path, nil, &fc); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
		if fc.Registry != nil {
			if fc.Registry.BasePath != nil {
				cfg.BasePath = *fc.Registry.BasePath
			}
			if fc.Registry.BaseID != nil {
				cfg.BaseID = *fc.Registry.BaseID
			}
		}
		if fc.Hosts != nil && fc.Hosts.Domain != nil {
			cfg.HostsDomain = *fc.Hosts.Domain
		}
		if fc.Sets != nil && fc.Sets.Groups != nil {
			groupSpec = strings.Join(fc.Sets.Groups, ",")
		}
		if fc.LogLevel != nil {
			cfg.LogLevel = *fc.LogLevel
		}
	}

	// Environment overrides the file. A set-but-empty variable is an
	// explicit override, so LookupEnv rather than Getenv.
	if v, ok := os.LookupEnv(EnvBasePath); ok {
		cfg.BasePath = v
	}
	if v, ok := os.LookupEnv(EnvBaseID); ok {
		cfg.BaseID = v
	}
	if v, ok := os.LookupEnv(EnvHostsDomain); ok {
		cfg.HostsDomain = v
	}
	if v, ok := os.LookupEnv(EnvAddressSets); ok {
		groupSpec = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		cfg.LogLevel = v
	}

	if cfg.BasePath == "" {
		return nil, fmt.Errorf("%s cannot be empty", EnvBasePath)
	}
	if cfg.BaseID != "" {
		if err := validation.ValidateBaseID(cfg.BaseID); err != nil {
			return nil, err
		}
	}
	if err := validation.ValidateDomain(cfg.HostsDomain); err != nil {
		return nil, err
	}

	cfg.AddressSets = parseGroups(groupSpec)
	return cfg, nil
}

// parseGroups splits the comma-separated group list. An invalid group name
// is a policy outcome, not an error: it is reported and skipped so one typo
// does not take the whole artifact run down.
func parseGroups(spec string) []string {
	var groups []string
	seen := make(map[string]bool)
	for _, raw := range strings.Split(spec, ",") {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if err := validation.ValidateName(name); err != nil {
			logging.Warn("Ignoring invalid address set group", "name", name)
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		groups = append(groups, name)
	}
	return groups
}
