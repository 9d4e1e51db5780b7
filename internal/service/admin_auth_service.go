package service

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"garagerent/internal/repository"
)

type OperatorAuthService interface {
	Login(email, password string) (string, error)
	CreateOperator(email, password string) error
}

type operatorAuthService struct {
	repo repository.OperatorAuthRepository
}

func NewOperatorAuthService(repo repository.OperatorAuthRepository) OperatorAuthService {
	return &operatorAuthService{repo: repo}
}

func (s *operatorAuthService) Login(email, password string) (string, error) {
	op, err := s.repo.GetByEmail(email)
	if err != nil {
		return "", err
	}
	if op == nil {
		return "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET not set")
	}

	claims := jwt.MapClaims{
		"operator_id": op.ID,
		"email":       op.Email,
		"exp":         time.Now().Add(time.Hour * 1).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (s *operatorAuthService) CreateOperator(email, password string) error {
	if email == "" || password == "" {
		return errors.New("email and password cannot be empty")
	}
	return s.repo.CreateOperator(email, password)
}
