package push

import (
	"context"
	"errors"
	"testing"

	authdomain "workbid-backend/internal/auth/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUserRepo only implements the lookup the settings adapter uses.
type stubUserRepo struct {
	user *authdomain.User
	err  error
}

func (r *stubUserRepo) FindByID(id string) (*authdomain.User, error) { return r.user, r.err }

func (r *stubUserRepo) Create(user *authdomain.User) error                 { return nil }
func (r *stubUserRepo) FindByEmail(email string) (*authdomain.User, error) { return nil, nil }
func (r *stubUserRepo) FindByContact(c string) (*authdomain.User, error)   { return nil, nil }
func (r *stubUserRepo) Update(user *authdomain.User) error                 { return nil }
func (r *stubUserRepo) SaveRefreshToken(t *authdomain.RefreshToken) error  { return nil }
func (r *stubUserRepo) FindRefreshToken(t string) (*authdomain.RefreshToken, error) {
	return nil, nil
}
func (r *stubUserRepo) DeleteRefreshToken(t string) error         { return nil }
func (r *stubUserRepo) DeleteRefreshTokensByUser(id string) error { return nil }

func TestUserAlertSettings(t *testing.T) {
	t.Run("enabled account", func(t *testing.T) {
		settings := NewUserAlertSettings(&stubUserRepo{user: &authdomain.User{ID: "u1", AlertsEnabled: true}})
		enabled, err := settings.AlertsEnabled("u1")
		require.NoError(t, err)
		assert.True(t, enabled)
	})

	t.Run("disabled account", func(t *testing.T) {
		settings := NewUserAlertSettings(&stubUserRepo{user: &authdomain.User{ID: "u1"}})
		enabled, err := settings.AlertsEnabled("u1")
		require.NoError(t, err)
		assert.False(t, enabled)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		settings := NewUserAlertSettings(&stubUserRepo{})
		_, err := settings.AlertsEnabled("ghost")
		assert.Error(t, err)
	})

	t.Run("lookup error propagates", func(t *testing.T) {
		settings := NewUserAlertSettings(&stubUserRepo{err: errors.New("db down")})
		_, err := settings.AlertsEnabled("u1")
		assert.Error(t, err)
	})
}

func TestNotifierNoOpWithoutClient(t *testing.T) {
	n := NewNotifier(nil, nil, nil)
	assert.NoError(t, n.Show(context.Background(), "u1", "title", "body"))
}
