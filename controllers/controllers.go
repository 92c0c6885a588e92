package controllers

import (
	"context"

	"github.com/gin-gonic/gin"

	"conference-management-api/config"
	"conference-management-api/services"
)

// Package-level dependencies, wired once from main.
var (
	appCfg         *config.Config
	outbox         services.Outbox
	storage        services.ObjectStorage
	googleProvider *services.OAuthProvider
	orcidProvider  *services.OAuthProvider
)

// Setup wires the controller dependencies. Call before registering routes.
func Setup(cfg *config.Config, ob services.Outbox, st services.ObjectStorage, google, orcid *services.OAuthProvider) {
	appCfg = cfg
	outbox = ob
	storage = st
	googleProvider = google
	orcidProvider = orcid
}

func getCurrentUserID(c *gin.Context) (uint, bool) {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(uint); ok {
			return id, true
		}
	}
	return 0, false
}

func getCurrentRole(c *gin.Context) (string, bool) {
	if v, ok := c.Get("role"); ok {
		if role, ok := v.(string); ok {
			return role, true
		}
	}
	return "", false
}

// enqueueEmail hands one email to the outbox, logging instead of failing:
// notification delivery never breaks the triggering request.
func enqueueEmail(ctx context.Context, email services.OutboundEmail) {
	if outbox == nil {
		return
	}
	if err := outbox.Enqueue(ctx, email); err != nil {
		config.Logger.Error().Err(err).
			Str("to", email.To).
			Str("template", email.Template).
			Msg("failed to enqueue email")
	}
}
