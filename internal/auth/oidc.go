// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/tomtom215/callscope/internal/config"
	"github.com/tomtom215/callscope/internal/logging"
)

// OIDCAuthenticator validates bearer tokens against an OpenID Connect
// provider using the certified Zitadel relying-party client. It runs in
// pure verification mode: no login flow, no callbacks, only signature,
// issuer, audience and expiry checks of inbound tokens.
type OIDCAuthenticator struct {
	relyingParty rp.RelyingParty
	rolesClaim   string
	defaultRole  string
}

// NewOIDCAuthenticator creates an OIDC bearer-token authenticator. The
// context covers the discovery request against the issuer, which fetches
// the JWKS URI and endpoint metadata.
func NewOIDCAuthenticator(ctx context.Context, cfg *config.OIDCConfig) (*OIDCAuthenticator, error) {
	if cfg.IssuerURL == "" {
		return nil, fmt.Errorf("oidc issuer_url is required")
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("oidc client_id is required")
	}

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx,
		cfg.IssuerURL,
		cfg.ClientID,
		cfg.ClientSecret,
		"",
		[]string{"openid"},
		rp.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create relying party: %w", err)
	}

	rolesClaim := cfg.RolesClaim
	if rolesClaim == "" {
		rolesClaim = "roles"
	}
	defaultRole := "viewer"
	if len(cfg.DefaultRoles) > 0 {
		defaultRole = cfg.DefaultRoles[0]
	}

	return &OIDCAuthenticator{
		relyingParty: relyingParty,
		rolesClaim:   rolesClaim,
		defaultRole:  defaultRole,
	}, nil
}

// Authenticate extracts the bearer token from the Authorization header and
// verifies it. The verifier checks signature (via JWKS), issuer, audience,
// expiry and signing algorithm.
func (a *OIDCAuthenticator) Authenticate(ctx context.Context, r *http.Request) (*Claims, error) {
	tokenStr := extractBearerToken(r)
	if tokenStr == "" {
		return nil, fmt.Errorf("unauthorized: missing bearer token")
	}

	idClaims, err := rp.VerifyIDToken[*oidc.IDTokenClaims](ctx, tokenStr, a.relyingParty.IDTokenVerifier())
	if err != nil {
		logging.Debug().Err(err).Msg("OIDC token verification failed")
		return nil, fmt.Errorf("unauthorized: %w", err)
	}

	claims := &Claims{
		Username: oidcUsername(idClaims),
		Role:     a.oidcRole(idClaims),
	}

	logging.Debug().
		Str("user", claims.Username).
		Str("role", claims.Role).
		Str("issuer", idClaims.Issuer).
		Msg("OIDC authentication successful")

	return claims, nil
}

// Issuer returns the verified issuer URL after discovery.
func (a *OIDCAuthenticator) Issuer() string {
	return a.relyingParty.Issuer()
}

func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// oidcUsername picks the display identity in standard claim priority:
// preferred_username, name, email, subject.
func oidcUsername(claims *oidc.IDTokenClaims) string {
	switch {
	case claims.PreferredUsername != "":
		return claims.PreferredUsername
	case claims.Name != "":
		return claims.Name
	case claims.Email != "":
		return claims.Email
	}
	return claims.Subject
}

// oidcRole extracts the first role from the configured roles claim. The
// claim value may be a string, []string or []interface{} depending on the
// provider; anything else falls back to the default role.
func (a *OIDCAuthenticator) oidcRole(claims *oidc.IDTokenClaims) string {
	val, ok := claims.Claims[a.rolesClaim]
	if !ok {
		return a.defaultRole
	}

	switch v := val.(type) {
	case string:
		if v != "" {
			return v
		}
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				return s
			}
		}
	}
	return a.defaultRole
}
