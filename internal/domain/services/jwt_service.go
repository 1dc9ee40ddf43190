package services

import (
	"errors"
	"fmt"
	"time"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/infrastructure/config"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Roles carried in JWT claims.
const (
	RoleAdmin   = "admin"
	RoleDonor   = "donor"
	RolePatient = "patient"
)

// InterfaceJWTService defines the JWT service interface
type InterfaceJWTService interface {
	GenerateToken(userID uint, role string) (string, error)
	ValidateToken(tokenString string) (*jwt.Token, error)
	ExtractClaims(tokenString string) (*JWTClaims, error)
	Login(username, password string) (*LoginResult, error)
}

// LoginResult represents a successful login
type LoginResult struct {
	Token     string      `json:"token"`
	UserID    uint        `json:"user_id"`
	Role      string      `json:"role"`
	Username  string      `json:"username"`
	CreatedAt interface{} `json:"created_at"`
}

// JWTService provides token issuing and validation
type JWTService struct {
	secretKey string
	issuer    string
	DB        *gorm.DB
}

// JWTClaims defines the claims carried by issued tokens
type JWTClaims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg *config.Config, db *gorm.DB) InterfaceJWTService {
	return &JWTService{
		secretKey: cfg.JWTSecretKey,
		issuer:    "bloodbridge-http-service",
		DB:        db,
	}
}

// GenerateToken issues a signed token valid for 24 hours
func (s *JWTService) GenerateToken(userID uint, role string) (string, error) {
	expirationTime := time.Now().Add(24 * time.Hour)

	claims := &JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ValidateToken parses and verifies a token string
func (s *JWTService) ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
}

// ExtractClaims extracts the typed claims from a token string
func (s *JWTService) ExtractClaims(tokenString string) (*JWTClaims, error) {
	token, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		jwtClaims := &JWTClaims{}

		if issuer, ok := claims["iss"].(string); ok {
			jwtClaims.Issuer = issuer
		}
		if userID, ok := claims["user_id"].(float64); ok {
			jwtClaims.UserID = uint(userID)
		}
		if role, ok := claims["role"].(string); ok {
			jwtClaims.Role = role
		}

		return jwtClaims, nil
	}

	return nil, errors.New("invalid token claims")
}

// Login authenticates a username against admins, donors and patients in turn
func (s *JWTService) Login(username, password string) (*LoginResult, error) {
	var admin models.Admin
	if err := s.DB.Where("username = ?", username).First(&admin).Error; err == nil {
		if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err == nil {
			token, err := s.GenerateToken(admin.ID, RoleAdmin)
			if err != nil {
				return nil, err
			}
			return &LoginResult{
				Token:     token,
				UserID:    admin.ID,
				Role:      RoleAdmin,
				Username:  admin.Username,
				CreatedAt: admin.CreatedAt,
			}, nil
		}
	}

	var donor models.Donor
	if err := s.DB.Where("username = ?", username).First(&donor).Error; err == nil {
		if err := bcrypt.CompareHashAndPassword([]byte(donor.Password), []byte(password)); err == nil {
			token, err := s.GenerateToken(donor.ID, RoleDonor)
			if err != nil {
				return nil, err
			}
			return &LoginResult{
				Token:     token,
				UserID:    donor.ID,
				Role:      RoleDonor,
				Username:  donor.Username,
				CreatedAt: donor.CreatedAt,
			}, nil
		}
	}

	var patient models.Patient
	if err := s.DB.Where("username = ?", username).First(&patient).Error; err == nil {
		if err := bcrypt.CompareHashAndPassword([]byte(patient.Password), []byte(password)); err == nil {
			token, err := s.GenerateToken(patient.ID, RolePatient)
			if err != nil {
				return nil, err
			}
			return &LoginResult{
				Token:     token,
				UserID:    patient.ID,
				Role:      RolePatient,
				Username:  patient.Username,
				CreatedAt: patient.CreatedAt,
			}, nil
		}
	}

	return nil, errors.New("invalid username or password")
}
