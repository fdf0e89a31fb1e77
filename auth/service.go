// Package auth handles registration, email verification, login and logout.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"fitshare/db"
	"fitshare/errs"
	"fitshare/middleware"
	"fitshare/models"
	"fitshare/validation"
)

const verificationTokenBytes = 20

// MailQueue accepts verification mail jobs.
type MailQueue interface {
	PublishVerificationMail(ctx context.Context, m models.VerificationMail) error
}

// Revoker lists token ids that must no longer authenticate.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// Service implements the account lifecycle.
type Service struct {
	store     db.Store
	tokens    *middleware.Authenticator
	revoker   Revoker
	mail      MailQueue
	validate  *validation.Validator
	publicURL string
	log       *slog.Logger
}

func NewService(store db.Store, tokens *middleware.Authenticator, revoker Revoker, mail MailQueue, publicURL string, log *slog.Logger) *Service {
	return &Service{
		store:     store,
		tokens:    tokens,
		revoker:   revoker,
		mail:      mail,
		validate:  validation.New(),
		publicURL: strings.TrimSuffix(publicURL, "/"),
		log:       log,
	}
}

// Register creates an unverified account and queues its verification mail.
// Mail failures are logged and never reach the caller.
func (s *Service) Register(ctx context.Context, req RegisterRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := s.validate.Validate(req); err != nil {
		return err
	}

	if _, err := s.store.UserByEmail(ctx, req.Email); err == nil {
		return errs.Conflict("email already registered")
	} else if !errors.Is(err, errs.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return errs.Internal("hashing password").WithCause(err)
	}
	token, err := randomToken(verificationTokenBytes)
	if err != nil {
		return errs.Internal("generating verification token").WithCause(err)
	}

	user := &models.User{
		Name:              req.Name,
		Email:             req.Email,
		PasswordHash:      string(hash),
		VerificationToken: token,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		// the unique index caught a concurrent registration
		if errors.Is(err, errs.ErrAlreadyExists) {
			return errs.Conflict("email already registered")
		}
		return err
	}

	job := models.VerificationMail{
		Email: user.Email,
		Name:  user.Name,
		Link:  s.publicURL + "/verify/" + token,
	}
	if err := s.mail.PublishVerificationMail(ctx, job); err != nil {
		s.log.Error("queueing verification mail failed", "user_id", user.ID.Hex(), "error", err)
	}
	s.log.Info("user registered", "user_id", user.ID.Hex())
	return nil
}

// Verify consumes a verification token.
func (s *Service) Verify(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errs.NotFound("invalid token")
	}
	user, err := s.store.ConsumeVerificationToken(ctx, token)
	if err != nil {
		return err
	}
	s.log.Info("email verified", "user_id", user.ID.Hex())
	return nil
}

// Login checks credentials and issues a session token. Unknown email and
// wrong password produce the same error.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}

	invalid := errs.NotFound("invalid email or password")
	user, err := s.store.UserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, invalid
	}

	token, _, err := s.tokens.IssueToken(user.ID.Hex())
	if err != nil {
		return nil, errs.Internal("issuing token").WithCause(err)
	}
	return &LoginResponse{Token: token, UserID: user.ID.Hex()}, nil
}

// Logout revokes the presented token until it would have expired.
func (s *Service) Logout(ctx context.Context, claims *middleware.Claims) error {
	if claims == nil {
		return errs.Unauthorized("missing token")
	}
	if s.revoker == nil || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		return errs.Internal("revoking token").WithCause(err)
	}
	return nil
}

// Me returns the caller's account.
func (s *Service) Me(ctx context.Context, userID string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errs.Unauthorized("invalid token subject")
	}
	return s.store.UserByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
