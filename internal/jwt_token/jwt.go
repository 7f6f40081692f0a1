package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	dErrors "github.com/Escana/app-escana01-production-sub000/pkg/domain-errors"
)

// Claims are the staff claims carried by tokens issued by the external auth
// subsystem. The core only validates and reads them.
type Claims struct {
	EmployeeID      string `json:"employee_id"`
	Role            string `json:"role"`
	EstablishmentID string `json:"establishment_id"`
	jwt.RegisteredClaims
}

// JWTService validates staff tokens and extracts the acting employee.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// GenerateStaffToken issues a token for development and test wiring; in
// production tokens come from the auth subsystem with the same claims.
func (s *JWTService) GenerateStaffToken(actor domain.Actor, expiresIn time.Duration) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		EmployeeID:      actor.ID.String(),
		Role:            string(actor.Role),
		EstablishmentID: actor.EstablishmentID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// ValidateToken parses and verifies a staff token.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	return claims, nil
}

// ResolveActor validates a raw token and returns the acting employee. It
// satisfies the auth middleware's resolver contract.
func (s *JWTService) ResolveActor(tokenString string) (domain.Actor, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return domain.Actor{}, err
	}
	return claims.Actor()
}

// Actor converts validated claims into the domain actor.
func (c *Claims) Actor() (domain.Actor, error) {
	employeeID, err := domain.ParseEmployeeID(c.EmployeeID)
	if err != nil {
		return domain.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "token carries no employee identity")
	}
	role, err := domain.ParseRole(c.Role)
	if err != nil {
		return domain.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "token carries an unknown role")
	}
	establishmentID, err := domain.ParseEstablishmentID(c.EstablishmentID)
	if err != nil {
		return domain.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "token carries no establishment scope")
	}
	return domain.Actor{ID: employeeID, Role: role, EstablishmentID: establishmentID}, nil
}
