package push

import (
	"context"

	authrepo "workbid-backend/internal/auth/repository"
	"workbid-backend/pkg/fcm"

	"github.com/sirupsen/logrus"
)

// Notifier fires native alerts through Firebase Cloud Messaging. It
// implements the delivery engine's Notifier contract: fire-and-forget,
// a recipient who disabled alerts or granted no device permission
// simply receives nothing, never an error.
type Notifier struct {
	client    *fcm.Client
	tokenRepo authrepo.DeviceTokenRepository
	settings  AlertSettings
}

// AlertSettings answers whether a recipient currently wants native
// alerts.
type AlertSettings interface {
	AlertsEnabled(recipientID string) (bool, error)
}

// NewNotifier creates the FCM notifier. client may be nil when push is
// unconfigured; Show then no-ops.
func NewNotifier(client *fcm.Client, tokenRepo authrepo.DeviceTokenRepository, settings AlertSettings) *Notifier {
	return &Notifier{client: client, tokenRepo: tokenRepo, settings: settings}
}

// Show multicasts one alert to every device of the recipient and
// cleans up tokens FCM reports dead. All failure modes degrade to a
// silently missed push.
func (n *Notifier) Show(ctx context.Context, recipientID, title, body string) error {
	if n.client == nil {
		return nil
	}

	if n.settings != nil {
		enabled, err := n.settings.AlertsEnabled(recipientID)
		if err != nil {
			logrus.WithError(err).WithField("recipient_id", recipientID).
				Warn("[Push] settings lookup failed, skipping alert")
			return nil
		}
		if !enabled {
			return nil
		}
	}

	tokens, err := n.tokenRepo.GetTokensByUserID(recipientID)
	if err != nil {
		logrus.WithError(err).WithField("recipient_id", recipientID).
			Warn("[Push] token lookup failed, skipping alert")
		return nil
	}
	if len(tokens) == 0 {
		return nil
	}

	tokenStrings := make([]string, len(tokens))
	for i, t := range tokens {
		tokenStrings[i] = t.Token
	}

	failedTokens, err := n.client.SendToDevices(ctx, tokenStrings, fcm.NotificationData{
		Title: title,
		Body:  body,
	})
	if err != nil {
		logrus.WithError(err).WithField("recipient_id", recipientID).
			Warn("[Push] multicast failed")
		return nil
	}

	for _, token := range failedTokens {
		if err := n.tokenRepo.DeleteToken(token); err != nil {
			logrus.WithError(err).Warn("[Push] failed to clean up dead token")
		}
	}
	return nil
}
