package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"conference-management-api/config"
	"conference-management-api/models"
	"conference-management-api/services"
)

func providerByName(name string) *services.OAuthProvider {
	switch name {
	case models.ProviderGoogle:
		return googleProvider
	case models.ProviderORCID:
		return orcidProvider
	}
	return nil
}

// GetOAuthURL returns the provider consent URL for the dashboard to
// redirect to.
func GetOAuthURL(c *gin.Context) {
	provider := providerByName(c.Param("provider"))
	if provider == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown OAuth provider"})
		return
	}
	if !provider.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "OAuth provider is not configured"})
		return
	}

	state := c.Query("state")
	if state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state is required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": provider.AuthCodeURL(state)})
}

// OAuthCallback exchanges the authorization code, links or creates the
// account per the role rules, and issues a bearer token.
func OAuthCallback(c *gin.Context) {
	provider := providerByName(c.Param("provider"))
	if provider == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown OAuth provider"})
		return
	}

	type CallbackRequest struct {
		Code string `json:"code" binding:"required"`
		Role string `json:"role" binding:"required"`
	}
	var req CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ident, err := provider.Exchange(c.Request.Context(), req.Code)
	if err != nil {
		// Provider internals stay in the log, not in the response.
		config.Logger.Error().Err(err).Str("provider", provider.Name()).Msg("oauth exchange failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Authentication with provider failed"})
		return
	}
	if ident.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provider did not supply an email address"})
		return
	}

	linker := services.NewAccountLinker(config.DB)
	user, err := linker.Resolve(c.Request.Context(), *ident, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailReservedForOrganizer),
			errors.Is(err, services.ErrEmailNotOrganizer):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			config.Logger.Error().Err(err).Str("provider", provider.Name()).Msg("account linking failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		}
		return
	}

	token, err := generateToken(*user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:   token,
		User:    *user,
		Message: "Login successful",
	})
}
