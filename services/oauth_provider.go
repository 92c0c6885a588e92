package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"conference-management-api/config"
	"conference-management-api/models"
)

var ErrOAuthNotConfigured = errors.New("oauth provider is not configured")

// OAuthProvider exchanges an authorization code with one provider and
// resolves the external identity from its userinfo endpoint.
type OAuthProvider struct {
	name        string
	conf        *oauth2.Config
	userInfoURL string
	httpTimeout time.Duration
}

// NewGoogleProvider builds the Google OIDC provider client.
func NewGoogleProvider(cfg config.OAuthProviderConfig) *OAuthProvider {
	return &OAuthProvider{
		name: models.ProviderGoogle,
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://accounts.google.com/o/oauth2/auth",
				TokenURL: "https://oauth2.googleapis.com/token",
			},
		},
		userInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
		httpTimeout: 10 * time.Second,
	}
}

// NewORCIDProvider builds the ORCID provider client. ORCID returns the
// member's iD both as the userinfo subject and as a token extra.
func NewORCIDProvider(cfg config.OAuthProviderConfig) *OAuthProvider {
	return &OAuthProvider{
		name: models.ProviderORCID,
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://orcid.org/oauth/authorize",
				TokenURL: "https://orcid.org/oauth/token",
			},
		},
		userInfoURL: "https://orcid.org/oauth/userinfo",
		httpTimeout: 10 * time.Second,
	}
}

func (p *OAuthProvider) Name() string { return p.name }

func (p *OAuthProvider) Configured() bool {
	return p.conf.ClientID != "" && p.conf.ClientSecret != ""
}

// AuthCodeURL returns the provider consent URL for the given state.
func (p *OAuthProvider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state)
}

// Exchange trades an authorization code for the provider profile.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*ExternalIdentity, error) {
	if !p.Configured() {
		return nil, ErrOAuthNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, p.httpTimeout)
	defer cancel()

	token, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s code exchange failed: %w", p.name, err)
	}
	return p.fetchIdentity(ctx, token)
}

func (p *OAuthProvider) fetchIdentity(ctx context.Context, token *oauth2.Token) (*ExternalIdentity, error) {
	client := p.conf.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s userinfo request failed: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s userinfo returned %d: %s", p.name, resp.StatusCode, string(body))
	}

	var info struct {
		Sub        string `json:"sub"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%s userinfo decode failed: %w", p.name, err)
	}

	ident := &ExternalIdentity{
		Provider:  p.name,
		Subject:   info.Sub,
		Email:     strings.ToLower(strings.TrimSpace(info.Email)),
		FirstName: info.GivenName,
		LastName:  info.FamilyName,
	}

	// ORCID also carries the iD as a token extra; prefer it when the
	// userinfo subject is missing.
	if ident.Subject == "" {
		if orcid, ok := token.Extra("orcid").(string); ok {
			ident.Subject = orcid
		}
	}
	if ident.Subject == "" {
		return nil, fmt.Errorf("%s profile has no subject identifier", p.name)
	}
	return ident, nil
}
