package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/vendorr/restaurant-backend/internal/models"
)

const (
	AccessTTL  = 30 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

// Claims is the decoded identity carried by an access token.
type Claims struct {
	UserID uint
	Role   string
}

type Service struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
}

func (s *Service) SignAccessToken(userID uint, role string) (string, error) {
	exp := time.Now().Add(AccessTTL)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.JWTSecret)
}

// ParseAccess validates an HS256 access token and extracts its claims.
func (s *Service) ParseAccess(raw string) (Claims, error) {
	t, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.JWTSecret, nil
	})
	if err != nil || !t.Valid {
		return Claims{}, fmt.Errorf("invalid access token: %w", err)
	}

	mapClaims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("cannot parse claims")
	}
	if typ, present := mapClaims["typ"]; present && typ == "refresh" {
		return Claims{}, errors.New("refresh token used as access token")
	}

	sub, ok := mapClaims["sub"].(float64)
	if !ok {
		return Claims{}, errors.New("invalid subject claim")
	}
	role, _ := mapClaims["role"].(string)

	return Claims{UserID: uint(sub), Role: role}, nil
}

// SignRefreshToken mints a refresh token and persists it for revocation
// checks.
func (s *Service) SignRefreshToken(userID uint, role string) (string, error) {
	exp := time.Now().Add(RefreshTTL)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  exp.Unix(),
		"typ":  "refresh",
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := t.SignedString(s.RefreshSecret)
	if err != nil {
		return "", err
	}

	row := models.RefreshToken{
		Token:     raw,
		UserID:    userID,
		Role:      role,
		ExpiresAt: exp.Unix(),
	}
	if err := s.DB.Create(&row).Error; err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return raw, nil
}

// Rotate exchanges a valid refresh token for a new access/refresh pair and
// revokes the old one.
func (s *Service) Rotate(rawRefresh string) (string, string, error) {
	claims, err := s.validateRefresh(rawRefresh)
	if err != nil {
		return "", "", err
	}

	userID := uint(claims["sub"].(float64))
	role, _ := claims["role"].(string)

	newAccess, err := s.SignAccessToken(userID, role)
	if err != nil {
		return "", "", err
	}
	newRefresh, err := s.SignRefreshToken(userID, role)
	if err != nil {
		return "", "", err
	}

	if err := s.Revoke(rawRefresh); err != nil {
		return "", "", err
	}
	return newAccess, newRefresh, nil
}

func (s *Service) Revoke(rawRefresh string) error {
	if err := s.DB.Model(&models.RefreshToken{}).
		Where("token = ?", rawRefresh).
		Update("revoked", true).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *Service) validateRefresh(raw string) (jwt.MapClaims, error) {
	t, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.RefreshSecret, nil
	})
	if err != nil || !t.Valid {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("cannot parse claims")
	}
	if typ, ok := claims["typ"]; !ok || typ != "refresh" {
		return nil, errors.New("not a refresh token")
	}

	var stored models.RefreshToken
	if err := s.DB.Where("token = ?", raw).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("refresh token not found")
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if stored.Revoked {
		return nil, errors.New("refresh token revoked")
	}
	if time.Now().Unix() > stored.ExpiresAt {
		return nil, errors.New("refresh token expired")
	}
	return claims, nil
}
