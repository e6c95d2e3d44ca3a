package kubeconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// Where a token was found inside the user entry
const (
	TokenFromAuthProvider = "auth-provider"
	TokenFromField        = "token"
	TokenFromFile         = "tokenFile"
)

// auth-provider config keys holding a bearer token, in lookup order
var authProviderTokenKeys = []string{"access-token", "id-token"}

// ParsedConfig is the part of a kubeconfig relevant to credential resolution
type ParsedConfig struct {
	Path           string
	CurrentContext string
	UserName       string
	ClusterName    string
	Server         string
	Namespace      string

	// AuthInfo is the full user entry. Certificate, key and exec settings
	// are kept here but not consumed.
	AuthInfo *clientcmdapi.AuthInfo

	// Token is trimmed and empty when no usable token exists
	Token       string
	TokenSource string
}

// HasToken reports whether a usable token was extracted
func (c *ParsedConfig) HasToken() bool {
	return c.Token != ""
}

// Parser decodes kubeconfig files
type Parser struct {
	fs     afero.Fs
	logger *slog.Logger
}

// NewParser creates a parser reading from fs. A nil fs means the OS filesystem.
func NewParser(fs afero.Fs, logger *slog.Logger) *Parser {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{fs: fs, logger: logger}
}

// Parse reads and decodes the kubeconfig at path. A config without a token
// is not an error: the result simply has HasToken() == false.
//
// Errors wrap ErrSourceUnavailable when the file vanished, ErrIOFailure when it
// could not be read and ErrMalformedConfig when it could not be decoded.
func (p *Parser) Parse(path string) (*ParsedConfig, error) {
	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrIOFailure, path, err)
	}

	cfg, err := clientcmd.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedConfig, path, err)
	}

	parsed := &ParsedConfig{
		Path:           path,
		CurrentContext: cfg.CurrentContext,
	}

	kctx, ok := cfg.Contexts[cfg.CurrentContext]
	if !ok || kctx == nil {
		return parsed, nil
	}
	parsed.UserName = kctx.AuthInfo
	parsed.ClusterName = kctx.Cluster
	parsed.Namespace = kctx.Namespace
	if cluster, ok := cfg.Clusters[kctx.Cluster]; ok && cluster != nil {
		parsed.Server = cluster.Server
	}

	authInfo, ok := cfg.AuthInfos[kctx.AuthInfo]
	if !ok || authInfo == nil {
		return parsed, nil
	}
	parsed.AuthInfo = authInfo

	token, source, err := p.extractToken(authInfo, filepath.Dir(path))
	if err != nil && !errors.Is(err, ErrEmptyToken) {
		p.logger.Error("Failed to read token file referenced by kubeconfig",
			"path", path,
			"user", kctx.AuthInfo,
			"error", err)
	}
	parsed.Token = token
	parsed.TokenSource = source

	return parsed, nil
}

// extractToken applies the lookup order auth-provider, token, tokenFile.
// It returns ErrEmptyToken when nothing usable was found.
func (p *Parser) extractToken(authInfo *clientcmdapi.AuthInfo, baseDir string) (string, string, error) {
	if authInfo.AuthProvider != nil {
		for _, key := range authProviderTokenKeys {
			if token := strings.TrimSpace(authInfo.AuthProvider.Config[key]); token != "" {
				return token, TokenFromAuthProvider, nil
			}
		}
	}

	if token := strings.TrimSpace(authInfo.Token); token != "" {
		return token, TokenFromField, nil
	}

	if authInfo.TokenFile != "" {
		tokenPath := authInfo.TokenFile
		if !filepath.IsAbs(tokenPath) {
			tokenPath = filepath.Join(baseDir, tokenPath)
		}
		data, err := afero.ReadFile(p.fs, tokenPath)
		if err != nil {
			return "", "", fmt.Errorf("%w: %s: %v", ErrIOFailure, tokenPath, err)
		}
		if token := strings.TrimSpace(string(data)); token != "" {
			return token, TokenFromFile, nil
		}
	}

	return "", "", ErrEmptyToken
}
