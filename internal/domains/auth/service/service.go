package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"taskboard/config"
	"taskboard/infras/jwt"
	"taskboard/infras/otel"
	"taskboard/internal/domains/auth/model/dto"
	userModel "taskboard/internal/domains/user/model"
	userRepo "taskboard/internal/domains/user/repository"
	"taskboard/shared"
	"taskboard/shared/constant"
	"taskboard/shared/failure"
	"taskboard/shared/password"
	gRepo "taskboard/shared/repository"
	"taskboard/shared/timezone"

	"github.com/rs/zerolog/log"
)

// Unknown addresses and wrong passwords share one message.
const (
	msgInvalidCredentials = "Invalid email or password"
	msgEmailRegistered    = "Email already registered"
	msgAccountDisabled    = "User account is deactivated"
)

type Auth interface {
	Register(ctx context.Context, req dto.RegisterRequest) error
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.RefreshTokenResponse, error)
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) error
}

type serviceImpl struct {
	users  userRepo.User
	cfg    *config.Config
	otel   otel.Otel
	tokens jwt.JWT
}

func New(users userRepo.User, cfg *config.Config, otel otel.Otel, tokens jwt.JWT) Auth {
	return &serviceImpl{
		users:  users,
		cfg:    cfg,
		otel:   otel,
		tokens: tokens,
	}
}

func (s *serviceImpl) Register(ctx context.Context, req dto.RegisterRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Register")
	defer scope.End()
	defer scope.TraceIfError(&err)

	email := dto.NormalizeEmail(req.Email)

	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up email: %w", err)
	}

	if taken {
		return failure.Conflict(msgEmailRegistered) // nolint:wrapcheck
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := req.ToUserModel(hash)

	err = s.users.Insert(ctx, user)

	switch {
	case gRepo.IsUniqueViolation(err):
		// a concurrent registration won the race for the address
		return failure.Conflict(msgEmailRegistered) // nolint:wrapcheck
	case err != nil:
		return fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Str("user_id", user.ID).Msg("User registered")

	return nil
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.LoginResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Login")
	defer scope.End()
	defer scope.TraceIfError(&err)

	user, err := s.users.FindByEmail(ctx, dto.NormalizeEmail(req.Email))
	if err != nil {
		return res, fmt.Errorf("failed to find user: %w", err)
	}

	if err = s.checkCredentials(user, req.Password); err != nil {
		return res, err
	}

	pair, err := s.tokens.GenerateTokenPair(user.ID, user.Email, user.Level)
	if err != nil {
		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	if err := s.users.RecordLogin(ctx, user.ID, timezone.Now()); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to record last login")
	}

	res.FromTokenPair(pair)

	return res, nil
}

// checkCredentials rejects unknown, mismatched and deactivated accounts.
func (s *serviceImpl) checkCredentials(user userModel.User, plain string) error {
	if user.ID == "" {
		log.Debug().Msg("Login for unknown email")

		return failure.Unauthorized(msgInvalidCredentials) // nolint:wrapcheck
	}

	if err := password.Verify(plain, user.Password); err != nil {
		log.Debug().Str("user_id", user.ID).Msg("Login with wrong password")

		return failure.Unauthorized(msgInvalidCredentials) // nolint:wrapcheck
	}

	if !user.Active {
		return failure.Forbidden(msgAccountDisabled) // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.RefreshTokenResponse, err error) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.RefreshToken")
	defer scope.End()
	defer scope.TraceIfError(&err)

	pair, err := s.tokens.RefreshTokens(req.RefreshToken)
	if err != nil {
		log.Debug().Err(err).Msg("Refresh rejected")

		return res, failure.Unauthorized("Invalid refresh token") // nolint:wrapcheck
	}

	res.FromTokenPair(pair)

	return res, nil
}

func (s *serviceImpl) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.ChangePassword")
	defer scope.End()
	defer scope.TraceIfError(&err)

	userID := shared.UserIDFromContext(ctx)

	user, err := s.users.Get(ctx, shared.FilterByID(userID, userModel.FieldID, userModel.TableName))
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == "" {
		return failure.NotFound("User not found") // nolint:wrapcheck
	}

	if password.Verify(req.CurrentPassword, user.Password) != nil {
		return failure.BadRequestFromString("Current password is incorrect") // nolint:wrapcheck
	}

	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err = s.users.SetPassword(ctx, user.ID, hash, timezone.Now()); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
