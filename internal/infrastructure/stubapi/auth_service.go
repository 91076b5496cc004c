package stubapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/lankahomes/storefront/internal/core/domain"
)

// Claims is what a verified token carries.
type Claims struct {
	Email string
	Role  domain.Role
}

// RegisterInput is a sign-up request after binding.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
	Role      string
}

// AuthService registers accounts, signs tokens and verifies them.
type AuthService struct {
	accounts  *Accounts
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAuthService(accounts *Accounts, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{accounts: accounts, jwtSecret: []byte(jwtSecret), tokenTTL: tokenTTL, now: time.Now}
}

// Register creates a buyer or seller account and signs it in. Any other
// requested role falls back to buyer; admins are only seeded.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, *Account, error) {
	if in.Email == "" || in.Password == "" || in.FirstName == "" || in.LastName == "" {
		return "", nil, errAllFieldsRequired
	}

	role, ok := domain.ParseRole(in.Role)
	if !ok || role == domain.RoleAdmin {
		role = domain.RoleBuyer
	}

	acct, err := s.create(ctx, in, role)
	if err != nil {
		return "", nil, err
	}
	token, err := s.sign(acct)
	if err != nil {
		return "", nil, err
	}
	return token, acct, nil
}

// Seed creates an account with any role, for bootstrapping an admin.
func (s *AuthService) Seed(ctx context.Context, in RegisterInput, role domain.Role) (*Account, error) {
	return s.create(ctx, in, role)
}

func (s *AuthService) create(ctx context.Context, in RegisterInput, role domain.Role) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	return s.accounts.Create(ctx, &Account{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        strings.ToLower(in.Email),
		Phone:        in.Phone,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *Account, error) {
	if email == "" || password == "" {
		return "", nil, errCredentialsRequired
	}

	acct, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !acct.Active {
		return "", nil, domain.ErrAccountDisabled
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.sign(acct)
	if err != nil {
		return "", nil, err
	}
	s.accounts.Touch(ctx, acct.Email, s.now().UTC())
	return token, acct, nil
}

// Verify checks signature and expiry.
func (s *AuthService) Verify(token string) (Claims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tkn.Valid {
		return Claims{}, domain.ErrSessionExpired
	}

	sub, _ := claims.GetSubject()
	rawRole, _ := claims["role"].(string)
	role, ok := domain.ParseRole(rawRole)
	if sub == "" || !ok {
		return Claims{}, domain.ErrSessionExpired
	}
	return Claims{Email: sub, Role: role}, nil
}

func (s *AuthService) sign(a *Account) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  a.Email,
		"role": a.Role.Wire(),
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

var (
	errAllFieldsRequired   = errors.New("all fields are required")
	errCredentialsRequired = errors.New("email and password are required")
)
