package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	KindUser  = "user"
	KindAdmin = "admin"

	PurposeAdminInvite = "admin_invite"
)

var ErrWrongTokenType = errors.New("wrong token type")

type AccessClaims struct {
	Kind string `json:"kind"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type InviteClaims struct {
	Purpose string `json:"purpose"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

func keyFunc(secret []byte) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	}
}

func sign(claims jwt.Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func NewAccessToken(secret []byte, subject, kind, role string, exp time.Time) (string, error) {
	return sign(AccessClaims{
		Kind: kind,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}, secret)
}

func AccessClaimsFromToken(tokenStr string, secret []byte) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, keyFunc(secret))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Kind != KindUser && claims.Kind != KindAdmin {
		return nil, ErrWrongTokenType
	}
	return &claims, nil
}

func NewInviteToken(secret []byte, jti, email, role string, issuedBy string, exp time.Time) (string, error) {
	return sign(InviteClaims{
		Purpose: PurposeAdminInvite,
		Email:   email,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    issuedBy,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}, secret)
}

func InviteClaimsFromToken(tokenStr string, secret []byte) (*InviteClaims, error) {
	var claims InviteClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, keyFunc(secret), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Purpose != PurposeAdminInvite || claims.ID == "" {
		return nil, ErrWrongTokenType
	}
	return &claims, nil
}
