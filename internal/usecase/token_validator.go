package usecase

import (
	"account-provisioner/internal/domain/principal"
	"account-provisioner/internal/pkg/jwt"
)

//go:generate mockgen -source=token_validator.go -destination=../../tests/mock/usecase/token_validator_mock.go -package=usecasemock

// TokenValidator provides token validation for middleware
type TokenValidator interface {
	ValidateToken(tokenString string) (string, principal.Role, error)
}

type tokenValidatorImpl struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &tokenValidatorImpl{
		jwtService: jwtService,
	}
}

func (t *tokenValidatorImpl) ValidateToken(tokenString string) (string, principal.Role, error) {
	claims, err := t.jwtService.ValidateToken(tokenString)
	if err != nil {
		return "", "", err
	}

	role, err := principal.NewRole(claims.Role)
	if err != nil {
		return "", "", err
	}

	return claims.Subject, role, nil
}
