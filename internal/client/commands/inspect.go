package commands

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/criteo/kubetoken/internal/client/errors"
	"github.com/criteo/kubetoken/internal/client/output"
	"github.com/criteo/kubetoken/internal/tokenprovider"
)

var flagOutput string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Decode the claims of the resolved token",
	Long: `Decode the resolved token as a JWT and show its main claims.

The signature and expiry are NOT verified: this is a local convenience for
finding out which identity a token carries. Opaque tokens are reported as such.`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

// tokenClaims is the decoded view of a token
type tokenClaims struct {
	Source         string     `json:"source" yaml:"source"`
	JWT            bool       `json:"jwt" yaml:"jwt"`
	Subject        string     `json:"subject,omitempty" yaml:"subject,omitempty"`
	Issuer         string     `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	Audience       []string   `json:"audience,omitempty" yaml:"audience,omitempty"`
	IssuedAt       *time.Time `json:"issued_at,omitempty" yaml:"issued_at,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Namespace      string     `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	ServiceAccount string     `json:"service_account,omitempty" yaml:"service_account,omitempty"`
}

// decodeClaims parses raw (with or without the bearer prefix) without
// verifying it. ok is false for tokens that are not JWTs.
func decodeClaims(raw string) (tokenClaims, bool) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), tokenprovider.BearerPrefix))

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return tokenClaims{}, false
	}

	var out tokenClaims
	out.JWT = true
	out.Subject, _ = claims.GetSubject()
	out.Issuer, _ = claims.GetIssuer()
	if aud, err := claims.GetAudience(); err == nil {
		out.Audience = aud
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.UTC()
		out.IssuedAt = &t
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.UTC()
		out.ExpiresAt = &t
	}

	// Projected service account tokens carry their identity under kubernetes.io
	if k8s, ok := claims["kubernetes.io"].(map[string]interface{}); ok {
		out.Namespace, _ = k8s["namespace"].(string)
		if sa, ok := k8s["serviceaccount"].(map[string]interface{}); ok {
			out.ServiceAccount, _ = sa["name"].(string)
		}
	}

	return out, true
}

func runInspect(cmd *cobra.Command, args []string) error {
	if flagOutput != "table" && flagOutput != "yaml" {
		return errors.WithCode(errors.ExitInvalidArguments, "--output must be table or yaml")
	}

	resolved := newProvider(logger).Resolve(environment())
	if !resolved.Present {
		return errors.WithCode(errors.ExitNoToken, "no token available")
	}

	claims, _ := decodeClaims(resolved.Value)
	claims.Source = resolved.Source.String()

	switch {
	case flagJSON:
		return output.JSON(claims, nil)
	case flagOutput == "yaml":
		return output.YAML(claims)
	}

	if !claims.JWT {
		output.Warning("token from %s is opaque (not a JWT)", claims.Source)
		return nil
	}

	tw := output.NewTable("CLAIM", "VALUE")
	tw.Row("source", claims.Source)
	tw.Row("subject", claims.Subject)
	tw.Row("issuer", claims.Issuer)
	tw.Row("audience", strings.Join(claims.Audience, ","))
	if claims.IssuedAt != nil {
		tw.Row("issued_at", claims.IssuedAt.Format(time.RFC3339))
	}
	if claims.ExpiresAt != nil {
		tw.Row("expires_at", claims.ExpiresAt.Format(time.RFC3339))
	}
	if claims.ServiceAccount != "" {
		tw.Row("service_account", claims.Namespace+"/"+claims.ServiceAccount)
	}
	return tw.Render()
}

func init() {
	inspectCmd.Flags().StringVarP(&flagOutput, "output", "o", "table", "Output format: table or yaml")
	rootCmd.AddCommand(inspectCmd)
}
