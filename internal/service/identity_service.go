package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/huzidev/dev-forum-api/internal/config"
	"github.com/huzidev/dev-forum-api/internal/models"

	"github.com/tidwall/gjson"
)

// Identity-provider event types handled by the webhook.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// IdentityService applies signed identity-provider webhooks to local users.
// Deliveries from the admin frontend are signed with a separate secret and
// create ADMIN users.
type IdentityService struct {
	core
	users *UserService
	cfg   *config.Config
}

func NewIdentityService(d Deps, users *UserService, cfg *config.Config) *IdentityService {
	return &IdentityService{core: newCore(d, "identity"), users: users, cfg: cfg}
}

// WebhookResult reports what a delivery changed.
type WebhookResult struct {
	Event   string       `json:"event"`
	User    *models.User `json:"data,omitempty"`
	Created bool         `json:"created"`
	Deleted bool         `json:"deleted,omitempty"`
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks signature against the secret of origin's frontend and
// reports whether origin is the admin frontend.
func (s *IdentityService) Verify(body []byte, signature, origin string) (admin bool, err error) {
	admin = s.cfg.IsAdminOrigin(origin)
	secret := s.cfg.UserClerkWebhookSecret
	if admin {
		secret = s.cfg.AdminClerkWebhookSecret
	}
	if secret == "" || signature == "" {
		return admin, models.NewUnauthorizedError("Invalid webhook signature")
	}
	expected := Sign(body, secret)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature)))) {
		return admin, models.NewUnauthorizedError("Invalid webhook signature")
	}
	return admin, nil
}

// HandleWebhook verifies and applies one delivery. Bodies are either a flat
// user object or an event envelope {type, data}.
func (s *IdentityService) HandleWebhook(ctx context.Context, body []byte, signature, origin string) (_ *WebhookResult, err error) {
	ctx, done := traced(ctx, "identity", "HandleWebhook")
	defer done(&err)

	admin, err := s.Verify(body, signature, origin)
	if err != nil {
		s.log.WarnContext(ctx, "webhook signature rejected", "origin", origin)
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, models.NewValidationError("Invalid JSON payload")
	}

	event, in := parseWebhook(body)
	if admin {
		in.Role = models.RoleAdmin
	}
	result := &WebhookResult{Event: event}

	switch event {
	case EventUserDeleted:
		if in.ExternalID == "" {
			return nil, models.NewValidationError("userId is required")
		}
		err := s.users.DeleteByExternalID(ctx, in.ExternalID)
		if err != nil && !models.HasCode(err, models.CodeNotFound) {
			return nil, err
		}
		result.Deleted = err == nil
	case EventUserUpdated:
		if result.User, err = s.users.UpdateByExternalID(ctx, in); err != nil {
			return nil, err
		}
	default:
		if !admin {
			in.Role = models.RoleUser
		}
		if result.User, result.Created, err = s.users.CreateIfNotExists(ctx, in); err != nil {
			return nil, err
		}
	}
	s.log.InfoContext(ctx, "webhook applied", "event", event, "admin_origin", admin, "created", result.Created)
	return result, nil
}

// parseWebhook extracts the event type and user fields of a delivery. Flat
// bodies are treated as user.created.
func parseWebhook(body []byte) (string, UserInput) {
	root := gjson.ParseBytes(body)
	data := root.Get("data")
	if !root.Get("type").Exists() || !data.IsObject() {
		return EventUserCreated, UserInput{
			ExternalID:     root.Get("userId").String(),
			Email:          root.Get("email").String(),
			FirstName:      root.Get("firstName").String(),
			LastName:       root.Get("lastName").String(),
			Username:       root.Get("username").String(),
			ProfilePicture: root.Get("profilePicture").String(),
		}
	}

	return root.Get("type").String(), UserInput{
		ExternalID:     data.Get("id").String(),
		Email:          primaryEmail(data),
		FirstName:      data.Get("first_name").String(),
		LastName:       data.Get("last_name").String(),
		Username:       data.Get("username").String(),
		ProfilePicture: data.Get("image_url").String(),
	}
}

// primaryEmail returns the address flagged primary, else the first one.
func primaryEmail(data gjson.Result) string {
	primaryID := data.Get("primary_email_address_id").String()
	if primaryID != "" {
		if e := data.Get(`email_addresses.#(id=="` + primaryID + `").email_address`); e.Exists() {
			return e.String()
		}
	}
	return data.Get("email_addresses.0.email_address").String()
}
