package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ARQAP/archive-backend/src/apperrors"
	"github.com/ARQAP/archive-backend/src/config"
	"github.com/ARQAP/archive-backend/src/db"
	"github.com/ARQAP/archive-backend/src/dtos"
	"github.com/ARQAP/archive-backend/src/logging"
	"github.com/ARQAP/archive-backend/src/middleware"
	"github.com/ARQAP/archive-backend/src/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var errInvalidCredentials = fmt.Errorf("%w: invalid username or password", apperrors.ErrUnauthorized)

type UserService struct {
	gw   db.Gateway
	auth config.AuthConfig
}

// NewUserService creates a new instance of UserService
func NewUserService(gw db.Gateway, auth config.AuthConfig) *UserService {
	return &UserService{gw: gw, auth: auth}
}

func (s *UserService) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.auth.BcryptRounds)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// GetAllUsers retrieves all users ordered by id
func (s *UserService) GetAllUsers(ctx context.Context) ([]models.UserModel, error) {
	users := []models.UserModel{}
	if err := s.gw.Query(ctx, &users, "SELECT * FROM users ORDER BY id ASC"); err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.UserModel{}
	}
	return users, nil
}

// GetUserByID retrieves one user
func (s *UserService) GetUserByID(ctx context.Context, id int) (*models.UserModel, error) {
	var user models.UserModel
	found, err := s.gw.QueryOne(ctx, &user, "SELECT * FROM users WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.ErrNotFound
	}
	return &user, nil
}

// IsAdmin reports whether the user with id holds the admin flag
func (s *UserService) IsAdmin(ctx context.Context, id int) (bool, error) {
	user, err := s.GetUserByID(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.Admin, nil
}

// CreateUser registers a non-admin user
func (s *UserService) CreateUser(ctx context.Context, cmd dtos.RegisterCommand) (*models.UserModel, error) {
	return s.create(ctx, cmd, false)
}

func (s *UserService) create(ctx context.Context, cmd dtos.RegisterCommand, admin bool) (*models.UserModel, error) {
	hashed, err := s.hash(cmd.Password)
	if err != nil {
		return nil, err
	}
	user := models.UserModel{
		Username: cmd.Username,
		Email:    cmd.Email,
		Password: hashed,
		Admin:    admin,
	}
	if err := s.gw.Insert(ctx, &user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: username or email already registered", apperrors.ErrConflict)
		}
		logging.Error().Err(err).Str("username", cmd.Username).Msg("error inserting user")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInsertFailure, err)
	}
	return &user, nil
}

// EnsureAdmin creates the bootstrap admin unless a user with that name exists.
func (s *UserService) EnsureAdmin(ctx context.Context, cmd dtos.RegisterCommand) (*models.UserModel, bool, error) {
	var existing models.UserModel
	found, err := s.gw.QueryOne(ctx, &existing, "SELECT * FROM users WHERE username = ?", cmd.Username)
	if err != nil {
		return nil, false, err
	}
	if found {
		return &existing, false, nil
	}
	user, err := s.create(ctx, cmd, true)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// AuthenticateUser checks user credentials and returns a signed token if valid
func (s *UserService) AuthenticateUser(ctx context.Context, req dtos.LoginRequest) (*dtos.LoginResponse, error) {
	var user models.UserModel
	found, err := s.gw.QueryOne(ctx, &user, "SELECT * FROM users WHERE username = ?", req.Username)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	claims := jwt.MapClaims{
		"id":  user.ID,
		"exp": time.Now().Add(s.auth.TokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(middleware.GetSecretKey()))
	if err != nil {
		return nil, err
	}

	return &dtos.LoginResponse{
		User:      user,
		Token:     tokenString,
		ExpiresIn: int64(s.auth.TokenLifetime / time.Second),
	}, nil
}

// UpdateSelf changes the caller's email or password
func (s *UserService) UpdateSelf(ctx context.Context, id int, patch dtos.UserPatch) (*models.UserModel, error) {
	var hashed *string
	if patch.Password != nil {
		h, err := s.hash(*patch.Password)
		if err != nil {
			return nil, err
		}
		hashed = &h
	}

	var user models.UserModel
	n, err := s.gw.ConditionalUpdate(ctx, &user, "users", "id", id, patch.Fields(hashed))
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &user, nil
}

// SetAdmin grants or revokes the admin flag. Admins cannot change their own flag.
func (s *UserService) SetAdmin(ctx context.Context, actorID, targetID int, patch dtos.AdminPatch) (*models.UserModel, error) {
	if actorID == targetID {
		return nil, apperrors.NewValidationError("admin", "admin cannot change self")
	}

	var user models.UserModel
	n, err := s.gw.ConditionalUpdate(ctx, &user, "users", "id", targetID, patch.Fields())
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &user, nil
}

// DeleteUser deletes a user by id
func (s *UserService) DeleteUser(ctx context.Context, id int) error {
	n, err := s.gw.Execute(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
