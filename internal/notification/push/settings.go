package push

import (
	"errors"

	authrepo "workbid-backend/internal/auth/repository"
)

// userAlertSettings reads the alerts toggle off the user account.
type userAlertSettings struct {
	users authrepo.UserRepository
}

// NewUserAlertSettings adapts the user repository to AlertSettings.
func NewUserAlertSettings(users authrepo.UserRepository) AlertSettings {
	return &userAlertSettings{users: users}
}

func (s *userAlertSettings) AlertsEnabled(recipientID string) (bool, error) {
	user, err := s.users.FindByID(recipientID)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, errors.New("recipient not found")
	}
	return user.AlertsEnabled, nil
}
