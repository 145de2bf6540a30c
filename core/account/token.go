package account

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/edulane/gurukul/core"
)

var (
	// errors
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	NowFunc = time.Now // mockable
)

// Claims is the signed payload shared by access and refresh tokens:
// the account identity (Subject), its role and its profile reference.
type Claims struct {
	Role      string `json:"role,omitempty"`
	ProfileID string `json:"profileId,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies the session credential pair. Access and
// refresh tokens share the payload shape but are signed with distinct
// secrets and lifetimes.
type TokenService struct {
	conf *core.Config
}

func NewTokenService(conf *core.Config) *TokenService {
	return &TokenService{conf: conf}
}

func (ts *TokenService) claims(acct Account, ttl time.Duration) *Claims {
	now := NowFunc().UTC()
	return &Claims{
		Role:      acct.Role,
		ProfileID: acct.ProfileID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.conf.AppName,
			Subject:   acct.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

func (ts *TokenService) sign(claims *Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

// AccessToken generates a short-lived signed token for API calls.
func (ts *TokenService) AccessToken(acct Account) (string, error) {
	return ts.sign(ts.claims(acct, ts.conf.Server.AccessTokenTTL), ts.conf.Server.AccessTokenSecret)
}

// RefreshToken generates the longer-lived signed token carried by the
// HTTP-only cookie.
func (ts *TokenService) RefreshToken(acct Account) (string, error) {
	return ts.sign(ts.claims(acct, ts.conf.Server.RefreshTokenTTL), ts.conf.Server.RefreshTokenSecret)
}

// AccessTokenExpiry is the access token lifetime in seconds, reported to
// clients as `expiresIn`.
func (ts *TokenService) AccessTokenExpiry() int64 {
	return int64(ts.conf.Server.AccessTokenTTL / time.Second)
}

func (ts *TokenService) verify(token, secret string) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(
		token, claims,
		func(t *jwt.Token) (interface{}, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return NowFunc() }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// VerifyAccessToken checks signature and expiry against the access secret.
// Expired tokens are reported as ErrTokenExpired so clients can decide
// whether to attempt a refresh.
func (ts *TokenService) VerifyAccessToken(token string) (*Claims, error) {
	return ts.verify(token, ts.conf.Server.AccessTokenSecret)
}

// VerifyRefreshToken checks signature and expiry against the refresh secret.
func (ts *TokenService) VerifyRefreshToken(token string) (*Claims, error) {
	return ts.verify(token, ts.conf.Server.RefreshTokenSecret)
}
