package kubeconfig

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstOf(t *testing.T) {
	calls := 0
	step := func(v int, ok bool) func() (int, bool) {
		return func() (int, bool) {
			calls++
			return v, ok
		}
	}

	got, ok := FirstOf(step(1, false), step(2, true), step(3, true))
	assert.True(t, ok)
	assert.Equal(t, 2, got)
	assert.Equal(t, 2, calls, "steps after the first success must not run")

	got, ok = FirstOf[int]()
	assert.False(t, ok)
	assert.Zero(t, got)
}

func TestLocate(t *testing.T) {
	const (
		overridePath = "/etc/kube/override.yaml"
		homeConfig   = "/home/me/.kube/config"
	)

	tests := []struct {
		name      string
		vars      map[string]string
		files     []string
		wantPath  string
		wantProv  Provenance
		wantFound bool
	}{
		{
			name:      "override wins over home config",
			vars:      map[string]string{EnvKubeConfig: overridePath, EnvHome: "/home/me"},
			files:     []string{overridePath, homeConfig},
			wantPath:  overridePath,
			wantProv:  ProvenanceOverride,
			wantFound: true,
		},
		{
			name:      "missing override falls back to home config",
			vars:      map[string]string{EnvKubeConfig: "/nope", EnvHome: "/home/me"},
			files:     []string{homeConfig},
			wantPath:  homeConfig,
			wantProv:  ProvenanceHome,
			wantFound: true,
		},
		{
			name:      "home config only",
			vars:      map[string]string{EnvHome: "/home/me"},
			files:     []string{homeConfig},
			wantPath:  homeConfig,
			wantProv:  ProvenanceHome,
			wantFound: true,
		},
		{
			name:      "service account token is not a config",
			vars:      map[string]string{EnvHome: "/home/me"},
			files:     []string{ServiceAccountTokenPath},
			wantFound: false,
		},
		{
			name:      "nothing",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, fs.MkdirAll("/home/me", 0o755))
			for _, f := range tt.files {
				touch(t, fs, f, "")
			}

			l := NewLocator(NewPathResolver(fs, nil), nil)
			got, ok := l.Locate(NewEnvironment(OSPosix, tt.vars))

			assert.Equal(t, tt.wantFound, ok)
			assert.Equal(t, tt.wantPath, got.Path)
			if tt.wantFound {
				assert.Equal(t, tt.wantProv, got.Provenance)
			}
		})
	}
}

func TestTrace(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/home/me", 0o755))
	touch(t, fs, "/home/me/.kube/config", "")
	touch(t, fs, ServiceAccountTokenPath, "abc123")

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	l := NewLocator(NewPathResolver(fs, logger), logger)
	steps := l.Trace(NewEnvironment(OSPosix, map[string]string{
		EnvKubeConfig: "/missing.yaml:/other.yaml",
		EnvHome:       "/home/me",
	}))

	require.Len(t, steps, 3)
	assert.Equal(t, TraceStep{Provenance: ProvenanceOverride, Path: "/missing.yaml"}, steps[0])
	assert.Equal(t, TraceStep{Provenance: ProvenanceHome, Path: "/home/me/.kube/config", Exists: true, Selected: true}, steps[1])
	assert.Equal(t, TraceStep{Provenance: ProvenanceServiceAccount, Path: ServiceAccountTokenPath, Exists: true}, steps[2])

	assert.Equal(t, 1, strings.Count(logs.String(), "Found multiple kubeconfig files"))
}

func TestTrace_MatchesLocate(t *testing.T) {
	tests := []struct {
		name  string
		vars  map[string]string
		files []string
		want  Provenance
	}{
		{
			name:  "override",
			vars:  map[string]string{EnvKubeConfig: "/etc/kube/config", EnvHome: "/home/me"},
			files: []string{"/etc/kube/config", "/home/me/.kube/config", ServiceAccountTokenPath},
			want:  ProvenanceOverride,
		},
		{
			name:  "home",
			vars:  map[string]string{EnvHome: "/home/me"},
			files: []string{"/home/me/.kube/config", ServiceAccountTokenPath},
			want:  ProvenanceHome,
		},
		{
			name:  "service account",
			vars:  map[string]string{EnvKubeConfig: "/missing", EnvHome: "/home/me"},
			files: []string{ServiceAccountTokenPath},
			want:  ProvenanceServiceAccount,
		},
		{
			name: "nothing",
			want: ProvenanceNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, fs.MkdirAll("/home/me", 0o755))
			for _, f := range tt.files {
				touch(t, fs, f, "")
			}

			l := NewLocator(NewPathResolver(fs, nil), nil)
			env := NewEnvironment(OSPosix, tt.vars)

			selected := ProvenanceNone
			for _, step := range l.Trace(env) {
				if step.Selected {
					require.Equal(t, ProvenanceNone, selected, "only one step may be selected")
					selected = step.Provenance
				}
			}
			assert.Equal(t, tt.want, selected)

			if located, ok := l.Locate(env); ok {
				assert.Equal(t, located.Provenance, selected)
			}
		})
	}
}

func TestTrace_NothingConfigured(t *testing.T) {
	l := NewLocator(NewPathResolver(afero.NewMemMapFs(), nil), nil)
	steps := l.Trace(NewEnvironment(OSPosix, nil))

	require.Len(t, steps, 3)
	assert.Empty(t, steps[0].Path)
	assert.Empty(t, steps[1].Path)
	assert.False(t, steps[2].Exists)
	for _, step := range steps {
		assert.False(t, step.Selected)
	}
}
