package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenTTL = 12 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid device credentials")
	ErrTokenInvalid       = errors.New("token invalid")
)

// Service issues bearer tokens to devices that present the shared device key.
type Service struct {
	secret        []byte
	deviceKeyHash []byte
}

type Claims struct {
	DeviceID string `json:"device_id"`
	jwt.RegisteredClaims
}

func NewService(secret, deviceKeyHash string) *Service {
	return &Service{
		secret:        []byte(secret),
		deviceKeyHash: []byte(deviceKeyHash),
	}
}

// IssueToken verifies the device key against the configured bcrypt hash.
// Without a configured hash no token is ever issued.
func (s *Service) IssueToken(req TokenRequest) (TokenResponse, error) {
	if req.DeviceID == "" || req.DeviceKey == "" {
		return TokenResponse{}, ErrInvalidCredentials
	}
	if len(s.deviceKeyHash) == 0 {
		return TokenResponse{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.deviceKeyHash, []byte(req.DeviceKey)); err != nil {
		return TokenResponse{}, ErrInvalidCredentials
	}

	access, err := s.signToken(req.DeviceID, accessTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(accessTokenTTL.Seconds()),
	}, nil
}

func (s *Service) ValidateAccessToken(token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}
	return claims.DeviceID, nil
}

func (s *Service) signToken(deviceID string, ttl time.Duration) (string, error) {
	claims := Claims{
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   deviceID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.DeviceID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
