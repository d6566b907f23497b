// internal/config/model.go
//
// Typed configuration model for the storefront SEO server.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                         – dotenv values,
//   • `conf/global.yaml`                      – primary static file,
//   • `UNI10_`-prefixed environment overrides – highest precedence.
//
// A database password that begins with `vault:` is a reference of the
// form `vault:<mount>/<path>#<key>`.  cmd/web resolves it through
// internal/vault before opening the pool; the loader keeps it verbatim.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.  Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • Durations accept Go syntax ("5s", "10m").
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database holds the product-store DSN and its secret.
//
// The DSN is kept in YAML so operators can tweak host, port, or flags
// without touching Vault.  Password, when set, replaces whatever password
// the DSN carries.  Leave DSN empty to serve products from `api.base_url`
// instead.
type Database struct {
	DSN      string `koanf:"dsn"`
	Password string `koanf:"password"`
	MaxOpen  int    `koanf:"max_open" validate:"gte=0"`
	MaxIdle  int    `koanf:"max_idle" validate:"gte=0"`
}

//
// SEO section
//

// SEODefaults is the copy used for pages without a product.
type SEODefaults struct {
	Title       string `koanf:"title"`
	Description string `koanf:"description"`
	Image       string `koanf:"image"`
	Keywords    string `koanf:"keywords"`
}

// SEO configures tag generation and the HTML shell.
type SEO struct {
	SiteName     string      `koanf:"site_name"`
	BaseURL      string      `koanf:"base_url"      validate:"omitempty,url"`
	TemplatePath string      `koanf:"template_path"`
	TagPolicy    string      `koanf:"tag_policy"    validate:"omitempty,oneof=replace upsert insert"`
	Passthrough  []string    `koanf:"passthrough_prefixes"`
	Defaults     SEODefaults `koanf:"defaults"`
}

//
// API section
//

// API points at the backend product API.  Used by the dev proxy, and by
// cmd/web when no database is configured.
type API struct {
	BaseURL string        `koanf:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `koanf:"timeout"  validate:"gte=0"`
}

//
// Dev section
//

// Dev configures cmd/devproxy.
type Dev struct {
	Upstream   string `koanf:"upstream"    validate:"omitempty,url"`
	ListenAddr string `koanf:"listen_addr" validate:"omitempty,hostname_port"`
}

//
// Cache section
//

// Cache configures product-lookup caching.  TTL zero disables it.  When
// RedisAddr is set the cache is shared through Redis, otherwise it is a
// per-process LRU of Capacity entries.
type Cache struct {
	TTL           time.Duration `koanf:"ttl"            validate:"gte=0"`
	Capacity      int           `koanf:"capacity"       validate:"gte=0"`
	RedisAddr     string        `koanf:"redis_addr"     validate:"omitempty,hostname_port"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db"       validate:"gte=0"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.  The loader
// discovers `Root` (repo root or UNI10_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // UNI10_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	SEO      SEO      `koanf:"seo"`
	API      API      `koanf:"api"`
	Dev      Dev      `koanf:"dev"`
	Cache    Cache    `koanf:"cache"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}

//
// defaults
//

const (
	DefaultTemplatePath  = "dist/index.html"
	DefaultTagPolicy     = "replace"
	DefaultAPITimeout    = 5 * time.Second
	DefaultCacheCapacity = 1024
	DefaultDevListenAddr = "127.0.0.1:5174"
)

// applyDefaults fills zero values the YAML may leave out.
func applyDefaults(c *Config) {
	if c.SEO.TemplatePath == "" {
		c.SEO.TemplatePath = DefaultTemplatePath
	}
	if c.SEO.TagPolicy == "" {
		c.SEO.TagPolicy = DefaultTagPolicy
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.Cache.Capacity == 0 {
		c.Cache.Capacity = DefaultCacheCapacity
	}
	if c.Dev.ListenAddr == "" {
		c.Dev.ListenAddr = DefaultDevListenAddr
	}
	if c.Database.MaxOpen == 0 {
		c.Database.MaxOpen = 15
	}
	if c.Database.MaxIdle == 0 {
		c.Database.MaxIdle = 5
	}
}
