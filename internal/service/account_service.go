package service

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/instructor-directory-api/internal/models"
	appErrors "github.com/noah-isme/instructor-directory-api/pkg/errors"
)

type accountRepository interface {
	FindByFino(ctx context.Context, fino int64) (*models.Instructor, error)
}

// AccountConfig defines token and password settings.
type AccountConfig struct {
	TokenSecret        string
	TokenExpiry        time.Duration
	Issuer             string
	LegacyPasswordCopy bool
	BcryptCost         int
}

// AccountService hashes instructor passwords and issues session tokens.
type AccountService struct {
	repo      accountRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AccountConfig
}

// NewAccountService constructs an AccountService. repo may be nil when only
// token operations are needed.
func NewAccountService(repo accountRepository, validate *validator.Validate, logger *zap.Logger, config AccountConfig) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if config.TokenExpiry <= 0 {
		config.TokenExpiry = 24 * time.Hour
	}
	return &AccountService{repo: repo, validator: validate, logger: logger, config: config}
}

// Hash returns the bcrypt hash of password.
func (s *AccountService) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// LegacyCopy returns the recoverable password copy, or nil when legacy copies are disabled.
func (s *AccountService) LegacyCopy(password string) *string {
	if !s.config.LegacyPasswordCopy || password == "" {
		return nil
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(password))
	return &encoded
}

// Login authenticates an instructor by franchise number and password.
func (s *AccountService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	fino, err := strconv.ParseInt(req.Fino, 10, 64)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	instructor, err := s.repo.FindByFino(ctx, fino)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch instructor")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(instructor.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	if !instructor.Active || instructor.Status == models.InstructorStatusDelisted {
		s.logger.Info("login refused for inactive instructor", zap.Int64("fino", fino), zap.Stringer("status", instructor.Status))
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "")
	}

	subject := strconv.FormatInt(fino, 10)
	token, issuedAt, err := s.IssueToken(subject, models.RoleInstructor, s.config.TokenExpiry)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.TokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		Fino:        fino,
		FirstName:   firstName(instructor.Name),
	}, nil
}

// IssueToken signs an HS256 token for subject. ttl <= 0 uses the configured expiry.
func (s *AccountService) IssueToken(subject string, role models.Role, ttl time.Duration) (string, time.Time, error) {
	if strings.TrimSpace(subject) == "" {
		return "", time.Time{}, fmt.Errorf("token subject is required")
	}
	if ttl <= 0 {
		ttl = s.config.TokenExpiry
	}
	issuedAt := time.Now().UTC()
	claims := &models.JWTClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, issuedAt, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AccountService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	}, jwt.WithIssuer(s.config.Issuer))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.Role != models.RoleAdmin && claims.Role != models.RoleInstructor {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unknown token role")
	}
	return claims, nil
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
