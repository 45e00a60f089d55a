package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"brotodesk/internal/config"
	"brotodesk/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const devJWTSecret = "brotodesk-default-secret-change-in-production"

// Claims is the payload of an issued bearer token
type Claims struct {
	UserID string      `json:"id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Name      string  `json:"name" validate:"min=2"`
	Email     string  `json:"email" validate:"email"`
	Password  string  `json:"password" validate:"min=6"`
	StudentID *string `json:"studentId"`
	Role      string  `json:"role" validate:"omitempty,oneof=STUDENT ADMIN"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"email"`
	Password string `json:"password" validate:"required"`
}

type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	secret []byte
	ttl    time.Duration
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	secret := cfg.JWT.Secret
	if secret == "" {
		log.Printf("[auth] jwt.secret is empty, using the development secret")
		secret = devJWTSecret
	}
	return &AuthService{
		db:     db,
		cfg:    cfg,
		secret: []byte(secret),
		ttl:    cfg.TokenTTL(),
	}
}

// HashPassword hashes a password using bcrypt
func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost())
	return string(bytes), err
}

// VerifyPassword verifies a password against a hash
func (s *AuthService) VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

func (s *AuthService) bcryptCost() int {
	if s.cfg.Security.BcryptCost < bcrypt.MinCost {
		return bcrypt.DefaultCost
	}
	return s.cfg.Security.BcryptCost
}

// Register creates a new account. Role defaults to STUDENT.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := Validate(in); err != nil {
		return nil, err
	}

	role := models.RoleStudent
	if in.Role != "" {
		role = models.Role(in.Role)
	}
	return s.createUser(ctx, in.Name, in.Email, in.Password, in.StudentID, role)
}

func (s *AuthService) createUser(ctx context.Context, name, email, password string, studentID *string, role models.Role) (*models.User, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, Internal(err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := s.HashPassword(password)
	if err != nil {
		return nil, Internal(err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		StudentID:    studentID,
		PasswordHash: hashedPassword,
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, Internal(err)
	}

	return user, nil
}

// Login verifies credentials and issues a bearer token. Unknown email and
// wrong password fail with the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (string, *models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := Validate(in); err != nil {
		return "", nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", in.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, Internal(err)
	}

	if !s.VerifyPassword(user.PasswordHash, in.Password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(&user)
	if err != nil {
		return "", nil, Internal(err)
	}
	return token, &user, nil
}

// IssueToken signs an HS256 token carrying the user's id, email and role
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.cfg.JWT.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken verifies signature and expiry and returns the embedded claims
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, NewUnauthorizedError("Invalid or expired token")
	}
	if claims.UserID == "" || !claims.Role.Valid() {
		return nil, NewUnauthorizedError("Invalid or expired token")
	}
	return claims, nil
}

// CreateDefaultUser creates the configured admin account when no user exists yet
func (s *AuthService) CreateDefaultUser(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	du := s.cfg.DefaultUser
	if du.Email == "" || du.Password == "" {
		return fmt.Errorf("default user email and password are required")
	}
	role := models.Role(du.Role)
	if !role.Valid() {
		role = models.RoleAdmin
	}
	name := du.Name
	if name == "" {
		name = "Admin User"
	}

	_, err := s.createUser(ctx, name, normalizeEmail(du.Email), du.Password, nil, role)
	if err == nil {
		log.Printf("[auth] created default %s account %s", role, du.Email)
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
