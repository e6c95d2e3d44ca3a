// Package tokenprovider resolves the Authorization value for API calls from
// the local kubeconfig, falling back to a mounted service-account token.
package tokenprovider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/criteo/kubetoken/internal/kubeconfig"
)

// BearerPrefix is prepended to tokens read from a kubeconfig
const BearerPrefix = "Bearer "

// Source identifies where a resolved token came from
type Source = kubeconfig.Provenance

// ConnectionContext describes the API connection a token is requested for.
// The kubeconfig provider does not vary its answer by connection.
type ConnectionContext struct {
	APIHost string
}

// ResolvedToken is the outcome of a resolution. Value is only meaningful
// when Present is true. Err carries a diagnostic for absent results and is
// never a failure of the resolution itself.
type ResolvedToken struct {
	Value   string
	Present bool
	Source  Source
	Path    string
	Err     error
}

// Provider resolves tokens. Every call re-reads the filesystem; there is no
// session or cache, so it is safe for concurrent use.
type Provider struct {
	fs          afero.Fs
	logger      *slog.Logger
	environment func() kubeconfig.Environment
	tokenPath   string
}

// Option configures a Provider
type Option func(*Provider)

// WithFs sets the filesystem used for discovery and reads
func WithFs(fs afero.Fs) Option {
	return func(p *Provider) { p.fs = fs }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// WithEnvironment sets the function supplying the environment snapshot for
// GetToken. Resolve always uses the snapshot it is given.
func WithEnvironment(env func() kubeconfig.Environment) Option {
	return func(p *Provider) { p.environment = env }
}

// WithServiceAccountTokenPath overrides the service-account mount path
func WithServiceAccountTokenPath(path string) Option {
	return func(p *Provider) { p.tokenPath = path }
}

// New creates a provider reading the OS filesystem and process environment
func New(opts ...Option) *Provider {
	p := &Provider{
		fs:          afero.NewOsFs(),
		logger:      slog.Default(),
		environment: kubeconfig.FromProcess,
		tokenPath:   kubeconfig.FallbackTokenPath(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetToken returns the Authorization value for conn, or false when no
// credential is available.
func (p *Provider) GetToken(conn ConnectionContext) (string, bool) {
	resolved := p.Resolve(p.environment())
	return resolved.Value, resolved.Present
}

// GetTokenAsync resolves on a separate goroutine. The channel receives exactly
// one value and is then closed. If ctx ends first, an absent result carrying
// ctx.Err() is delivered instead.
func (p *Provider) GetTokenAsync(ctx context.Context, conn ConnectionContext) <-chan ResolvedToken {
	out := make(chan ResolvedToken, 1)
	done := make(chan ResolvedToken, 1)

	go func() {
		done <- p.Resolve(p.environment())
	}()

	go func() {
		defer close(out)
		select {
		case resolved := <-done:
			out <- resolved
		case <-ctx.Done():
			out <- ResolvedToken{Err: ctx.Err()}
		}
	}()

	return out
}

// Invalidate does nothing: the next GetToken re-reads from disk anyway.
func (p *Provider) Invalidate(conn ConnectionContext) {}

// Resolve runs discovery against env:
// 1. a located kubeconfig decides the outcome on its own ("Bearer <token>" or absent)
// 2. with no kubeconfig, the service-account token is returned raw
// 3. otherwise the result is absent
func (p *Provider) Resolve(env kubeconfig.Environment) ResolvedToken {
	resolver := kubeconfig.NewPathResolver(p.fs, p.logger)
	locator := kubeconfig.NewLocator(resolver, p.logger)

	if located, ok := locator.Locate(env); ok {
		return p.fromKubeConfig(located)
	}

	return p.fromServiceAccount()
}

func (p *Provider) fromKubeConfig(located kubeconfig.CandidatePath) ResolvedToken {
	result := ResolvedToken{Source: located.Provenance, Path: located.Path}

	parsed, err := kubeconfig.NewParser(p.fs, p.logger).Parse(located.Path)
	if err != nil {
		if errors.Is(err, kubeconfig.ErrSourceUnavailable) {
			p.logger.Debug("Kubeconfig disappeared before it could be read", "path", located.Path)
		} else {
			p.logger.Error("Failed to load kubeconfig", "path", located.Path, "error", err)
		}
		result.Err = err
		return result
	}

	if !parsed.HasToken() {
		// client certificate and exec credentials are not supported
		p.logger.Debug("No token in kubeconfig",
			"path", located.Path,
			"context", parsed.CurrentContext,
			"user", parsed.UserName)
		result.Err = fmt.Errorf("%w: user %q in %s", kubeconfig.ErrEmptyToken, parsed.UserName, located.Path)
		return result
	}

	p.logger.Info("Resolved token from kubeconfig",
		"path", located.Path,
		"source", located.Provenance.String(),
		"token_source", parsed.TokenSource,
		"token", MaskToken(parsed.Token))

	result.Value = BearerPrefix + parsed.Token
	result.Present = true
	return result
}

func (p *Provider) fromServiceAccount() ResolvedToken {
	result := ResolvedToken{Source: kubeconfig.ProvenanceServiceAccount, Path: p.tokenPath}

	data, err := afero.ReadFile(p.fs, p.tokenPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p.logger.Debug("No service account token mounted", "path", p.tokenPath)
			return ResolvedToken{Err: fmt.Errorf("%w: no kubeconfig or service account token", kubeconfig.ErrSourceUnavailable)}
		}
		p.logger.Error("Failed to read service account token", "path", p.tokenPath, "error", err)
		result.Err = fmt.Errorf("%w: %s: %v", kubeconfig.ErrIOFailure, p.tokenPath, err)
		return result
	}

	p.logger.Info("Resolved token from service account mount",
		"path", p.tokenPath,
		"token", MaskToken(string(data)))

	// returned as-is, without the bearer prefix and even when blank
	result.Value = string(data)
	result.Present = true
	return result
}

// MaskToken returns a masked version of a token for logging
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	return "***"
}
