// Package auth provides authentication and authorization support.
// Authentication: You are who you say you are.
// Authorization: You have permission to do what you are requesting to do.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jcpaschoal/propman/business/domain/userbus"
	"github.com/jcpaschoal/propman/business/types/actions"
	"github.com/jcpaschoal/propman/business/types/resource"
	"github.com/jcpaschoal/propman/business/types/role"
	"github.com/jcpaschoal/propman/foundation/logger"
)

// Set of errors the auth package returns.
var (
	ErrForbidden    = errors.New("attempted action is not allowed")
	ErrKIDMissing   = errors.New("kid missing from token header")
	ErrKIDMalformed = errors.New("kid in token header is malformed")
	ErrUserDisabled = errors.New("user is disabled")
	ErrInvalidRole  = errors.New("token contains an invalid role")
)

// DefaultTokenTTL is used when Config.TokenTTL is zero.
const DefaultTokenTTL = 24 * time.Hour

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// UserID returns the subject of the token as a user id.
func (c Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parsing subject %q: %w", c.Subject, err)
	}

	return id, nil
}

// KeyLookup declares a method set of behavior for looking up
// private and public keys for JWT use.
type KeyLookup interface {
	PrivateKey(kid string) (key string, err error)
	PublicKey(kid string) (key string, err error)
}

// Config represents information required to initialize auth.
type Config struct {
	Log       *logger.Logger
	UserBus   *userbus.Core
	KeyLookup KeyLookup
	Issuer    string
	TokenTTL  time.Duration
}

// Auth is used to authenticate clients.
type Auth struct {
	log       *logger.Logger
	keyLookup KeyLookup
	userBus   *userbus.Core
	enforcer  *casbin.Enforcer
	method    jwt.SigningMethod
	parser    *jwt.Parser
	issuer    string
	ttl       time.Duration
}

// New creates an Auth to support authentication/authorization.
func New(cfg Config) (*Auth, error) {
	enforcer, err := newEnforcer()
	if err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	a := Auth{
		log:       cfg.Log,
		keyLookup: cfg.KeyLookup,
		userBus:   cfg.UserBus,
		enforcer:  enforcer,
		method:    jwt.GetSigningMethod(jwt.SigningMethodRS256.Name),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithExpirationRequired(),
		),
		issuer:    cfg.Issuer,
		ttl:       ttl,
	}

	return &a, nil
}

// Issuer provides the configured issuer used to authenticate tokens.
func (a *Auth) Issuer() string {
	return a.issuer
}

// GenerateToken generates a signed JWT token string for the user.
func (a *Auth) GenerateToken(kid string, usr userbus.User) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   usr.ID.String(),
			Issuer:    a.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: usr.Role.String(),
	}

	token := jwt.NewWithClaims(a.method, claims)
	token.Header["kid"] = kid

	privateKeyPEM, err := a.keyLookup.PrivateKey(kid)
	if err != nil {
		return "", fmt.Errorf("private key: %w", err)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return "", fmt.Errorf("parsing private key from PEM: %w", err)
	}

	str, err := token.SignedString(privateKey)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return str, nil
}

// Authenticate processes the token to validate the sender's token is valid.
func (a *Auth) Authenticate(ctx context.Context, bearerToken string) (Claims, error) {
	parts := strings.Split(bearerToken, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return Claims{}, errors.New("expected authorization header format: Bearer <token>")
	}

	jwtUnverified := parts[1]

	var claims Claims
	token, _, err := a.parser.ParseUnverified(jwtUnverified, &claims)
	if err != nil {
		return Claims{}, fmt.Errorf("error parsing token: %w", err)
	}

	kidRaw, exists := token.Header["kid"]
	if !exists {
		return Claims{}, ErrKIDMissing
	}

	kid, ok := kidRaw.(string)
	if !ok {
		return Claims{}, ErrKIDMalformed
	}

	pem, err := a.keyLookup.PublicKey(kid)
	if err != nil {
		return Claims{}, fmt.Errorf("fetching public key for kid %q: %w", kid, err)
	}

	claims, err = a.verify(jwtUnverified, pem)
	if err != nil {
		a.log.Info(ctx, "**Authenticate-FAILED**", "userID", claims.Subject, "ERROR", err)
		return Claims{}, fmt.Errorf("authentication failed: %w", err)
	}

	if _, err := role.Parse(claims.Role); err != nil {
		return Claims{}, ErrInvalidRole
	}

	if err := a.isUserEnabled(ctx, claims); err != nil {
		return Claims{}, fmt.Errorf("user not enabled: %w", err)
	}

	return claims, nil
}

// Authorize checks the role policy for the resource and action.
func (a *Auth) Authorize(claims Claims, res resource.Resource, act actions.Action) error {
	rl, err := role.Parse(claims.Role)
	if err != nil {
		return ErrInvalidRole
	}

	ok, err := a.enforcer.Enforce(subject(rl), res.String(), act.String())
	if err != nil {
		return fmt.Errorf("enforce: %w", err)
	}

	if !ok {
		return fmt.Errorf("%w: role[%s] resource[%s] action[%s]", ErrForbidden, rl, res, act)
	}

	return nil
}

// Login verifies the credentials and returns the user a token is issued for.
func (a *Auth) Login(ctx context.Context, email mail.Address, password string) (userbus.User, error) {
	usr, err := a.userBus.Authenticate(ctx, email, password)
	if err != nil {
		return userbus.User{}, fmt.Errorf("invalid credentials: %w", err)
	}

	return usr, nil
}

func (a *Auth) isUserEnabled(ctx context.Context, claims Claims) error {
	if a.userBus == nil {
		return nil
	}

	userID, err := claims.UserID()
	if err != nil {
		return err
	}

	usr, err := a.userBus.QueryByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("query user: %w", err)
	}

	if !usr.Enabled {
		return ErrUserDisabled
	}

	return nil
}

// verify parses the token with the public key, validates the signature, and
// checks the issuer claim.
func (a *Auth) verify(tokenStr, pemStr string) (Claims, error) {
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemStr))
	if err != nil {
		return Claims{}, fmt.Errorf("parsing public key: %w", err)
	}

	var claims Claims
	token, err := a.parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return publicKey, nil
	})
	if err != nil {
		return claims, fmt.Errorf("validating token signature: %w", err)
	}

	if !token.Valid {
		return claims, errors.New("token is invalid")
	}

	return claims, nil
}
