// internal/vault/vault.go
//
// Vault secret resolution for config values.
//
// Context
// -------
// Config may hold `vault:<mount>/<path>#<key>` instead of a literal
// secret (today only `database.password`).  This package turns such a
// reference into the stored string through the KV-v2 engine, keeps the
// token alive while the process runs, and caches resolved values for a
// caller-chosen TTL.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(ctx, zap.L())                     // during boot.
//  2. pw,  err := cli.Resolve(ctx, cfg.Database.Password, 0)  // plain values pass through.
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – initial token (falls back to ~/.vault-token).
//
// Notes
// -----
// • Token renewal stops when ctx is cancelled.
// • Oxford commas, two spaces after periods.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// RefPrefix marks a config value as a Vault reference.
const RefPrefix = "vault:"

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	api *vault.Client
	log *zap.Logger
	now func() time.Time

	mu      sync.RWMutex
	secrets map[string]entry // "path#key" → value + expiry
}

type entry struct {
	val string
	exp time.Time
}

// New builds a client from the VAULT_* environment and starts token
// renewal in the background.
func New(ctx context.Context, log *zap.Logger) (*Client, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	api, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		api.SetToken(tok)
	}

	c := fromAPI(api, log)
	go c.renewLoop(ctx)
	return c, nil
}

func fromAPI(api *vault.Client, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		api:     api,
		log:     log.Named("vault"),
		now:     time.Now,
		secrets: make(map[string]entry),
	}
}

//
// references
//

// IsRef reports whether v is a Vault reference.
func IsRef(v string) bool { return strings.HasPrefix(v, RefPrefix) }

// ParseRef splits "vault:<mount>/<path>#<key>" into path and key.
func ParseRef(ref string) (secretPath, key string, err error) {
	if !IsRef(ref) {
		return "", "", fmt.Errorf("not a vault reference: %q", ref)
	}
	body := strings.TrimPrefix(ref, RefPrefix)
	i := strings.LastIndexByte(body, '#')
	if i <= 0 || i == len(body)-1 || !strings.Contains(body[:i], "/") {
		return "", "", fmt.Errorf("vault reference %q must look like vault:<mount>/<path>#<key>", ref)
	}
	return body[:i], body[i+1:], nil
}

// Resolve returns v unchanged unless it is a Vault reference, in which case
// the referenced key is fetched through GetKV.
func (c *Client) Resolve(ctx context.Context, v string, ttl time.Duration) (string, error) {
	if !IsRef(v) {
		return v, nil
	}
	p, k, err := ParseRef(v)
	if err != nil {
		return "", err
	}
	return c.GetKV(ctx, p, k, ttl)
}

//
// KV-v2
//

// GetKV reads one string key from a KV-v2 secret.  With ttl > 0 the value
// is served from memory until it expires.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("vault: secret path and key must be non-empty")
	}
	id := secretPath + "#" + key

	if ttl > 0 {
		c.mu.RLock()
		e, ok := c.secrets[id]
		c.mu.RUnlock()
		if ok && c.now().Before(e.exp) {
			return e.val, nil
		}
	}

	mount, rel, _ := strings.Cut(secretPath, "/")
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("vault: key %q not found in %q", key, secretPath)
	}
	val, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("vault: %s is %T, want string", id, raw)
	}

	if ttl > 0 {
		c.mu.Lock()
		c.secrets[id] = entry{val: val, exp: c.now().Add(ttl)}
		c.mu.Unlock()
	}
	c.log.Debug("secret resolved", zap.String("path", secretPath), zap.String("key", key))
	return val, nil
}

//
// token renewal
//

func (c *Client) renewLoop(ctx context.Context) {
	for ctx.Err() == nil {
		pause(ctx, c.watchToken(ctx))
	}
}

// watchToken keeps the current token renewed until the watcher gives up,
// then returns how long to wait before trying again.
func (c *Client) watchToken(ctx context.Context) time.Duration {
	sec, err := c.api.Auth().Token().RenewSelfWithContext(ctx, 0)
	if err != nil {
		c.log.Warn("token renew-self failed", zap.Error(err))
		return 30 * time.Second
	}
	if sec == nil || sec.Auth == nil || !sec.Auth.Renewable {
		c.log.Info("token is not renewable")
		return time.Hour
	}

	w, err := c.api.NewLifetimeWatcher(&vault.LifetimeWatcherInput{Secret: sec})
	if err != nil {
		c.log.Warn("lifetime watcher init failed", zap.Error(err))
		return 30 * time.Second
	}
	go w.Start()
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return 0
		case err := <-w.DoneCh():
			if err != nil {
				c.log.Warn("token renewal stopped", zap.Error(err))
			}
			return 15 * time.Second
		case ev := <-w.RenewCh():
			if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
				c.log.Debug("token renewed", zap.Int("ttl_s", ev.Secret.Auth.LeaseDuration))
			}
		}
	}
}

func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
