package usecase

import (
	"errors"
	"time"

	authdomain "workbid-backend/internal/auth/domain"
	authdto "workbid-backend/internal/auth/dto"
	"workbid-backend/internal/auth/repository"
	"workbid-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthUsecase is the session collaborator: it owns login state and
// supplies the active recipient id to the notification engine via the
// session hooks. The engine itself never manages authentication.
type AuthUsecase interface {
	Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error)
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)
	Logout(refreshToken string) error
	ValidateToken(tokenString string) (*authdomain.User, error)
	ResolveUser(key string) (*authdomain.User, error)
	SetAlertsEnabled(userID string, enabled bool) error
	SetSessionHooks(onSignIn, onSignOut func(recipientID string))
}

// authUsecase implements AuthUsecase.
type authUsecase struct {
	userRepo  repository.UserRepository
	tokenRepo repository.DeviceTokenRepository
	config    *config.Config

	onSignIn  func(recipientID string)
	onSignOut func(recipientID string)
}

// NewAuthUsecase creates a new instance of authUsecase.
func NewAuthUsecase(userRepo repository.UserRepository, tokenRepo repository.DeviceTokenRepository, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		config:    cfg,
	}
}

// SetSessionHooks installs the callbacks that start and stop the
// recipient's notification session around login state changes.
func (u *authUsecase) SetSessionHooks(onSignIn, onSignOut func(recipientID string)) {
	u.onSignIn = onSignIn
	u.onSignOut = onSignOut
}

func (u *authUsecase) Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error) {
	existing, err := u.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("email already registered")
	}

	hashedPassword, err := repository.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &authdomain.User{
		Email:         req.Email,
		Password:      hashedPassword,
		Name:          req.Name,
		Contact:       req.Contact,
		Role:          req.Role,
		Category:      req.Category,
		AlertsEnabled: true,
	}
	if err := u.userRepo.Create(user); err != nil {
		return nil, err
	}

	return u.startSession(user)
}

func (u *authUsecase) Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || !repository.CheckPasswordHash(req.Password, user.Password) {
		return nil, errors.New("invalid email or password")
	}

	return u.startSession(user)
}

func (u *authUsecase) RefreshToken(refreshToken string) (*authdto.TokenResponse, error) {
	stored, err := u.userRepo.FindRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if stored == nil || time.Now().After(stored.ExpiresAt) {
		return nil, errors.New("invalid or expired refresh token")
	}

	user, err := u.userRepo.FindByID(stored.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	// Rotate: the old token is spent.
	if err := u.userRepo.DeleteRefreshToken(refreshToken); err != nil {
		return nil, err
	}
	return u.generateTokens(user)
}

// Logout terminates the session. The notification session is torn down
// and its cursor discarded before credentials are removed; device
// tokens are deleted so a stale device can't keep receiving alerts.
func (u *authUsecase) Logout(refreshToken string) error {
	stored, err := u.userRepo.FindRefreshToken(refreshToken)
	if err != nil {
		return err
	}
	if stored != nil {
		if u.onSignOut != nil {
			u.onSignOut(stored.UserID)
		}
		if err := u.tokenRepo.DeleteTokensByUserID(stored.UserID); err != nil {
			return err
		}
	}
	return u.userRepo.DeleteRefreshToken(refreshToken)
}

// SetAlertsEnabled toggles native alerts for the account. The in-app
// notification list is unaffected.
func (u *authUsecase) SetAlertsEnabled(userID string, enabled bool) error {
	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New("user not found")
	}
	user.AlertsEnabled = enabled
	return u.userRepo.Update(user)
}

// startSession issues tokens and activates the notification session.
func (u *authUsecase) startSession(user *authdomain.User) (*authdto.TokenResponse, error) {
	resp, err := u.generateTokens(user)
	if err != nil {
		return nil, err
	}
	if u.onSignIn != nil {
		u.onSignIn(user.ID)
	}
	return resp, nil
}

func (u *authUsecase) generateTokens(user *authdomain.User) (*authdto.TokenResponse, error) {
	accessToken, err := u.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken := uuid.New().String()
	refreshTokenEntity := &authdomain.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(u.config.JWTRefreshExpiry),
	}
	if err := u.userRepo.SaveRefreshToken(refreshTokenEntity); err != nil {
		return nil, err
	}

	return &authdto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (u *authUsecase) generateAccessToken(user *authdomain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(u.config.JWTAccessExpiry).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *authUsecase) ValidateToken(tokenString string) (*authdomain.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}
	return user, nil
}
