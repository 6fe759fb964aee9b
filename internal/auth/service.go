package auth

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strings"

	"backend-devconnect/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)

type Service struct {
	db    db.Querier
	codec *Codec
}

func NewService(codec *Codec, db db.Querier) *Service {
	return &Service{db: db, codec: codec}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, TokenResponse, error) {
	if req.Email == "" || req.Name == "" || req.Password == "" {
		return User{}, TokenResponse{}, errors.New("name, email, password required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, TokenResponse{}, err
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		AvatarURL:    gravatarURL(req.Email),
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO users (id, email, name, password_hash, avatar_url)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, user.ID, user.Email, user.Name, user.PasswordHash, user.AvatarURL)
	if err := row.Scan(&user.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, TokenResponse{}, ErrEmailTaken
		}
		return User{}, TokenResponse{}, err
	}

	tokens, err := s.issueToken(user.ID)
	if err != nil {
		return User{}, TokenResponse{}, err
	}
	return user, tokens, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (User, TokenResponse, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, email, name, password_hash, avatar_url, created_at
		FROM users WHERE email = $1
	`, req.Email)

	var user User
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.AvatarURL, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, TokenResponse{}, ErrInvalidCredentials
		}
		return User{}, TokenResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return User{}, TokenResponse{}, ErrInvalidCredentials
	}

	tokens, err := s.issueToken(user.ID)
	if err != nil {
		return User{}, TokenResponse{}, err
	}
	return user, tokens, nil
}

func (s *Service) CurrentUser(ctx context.Context, userID string) (User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, email, name, avatar_url, created_at
		FROM users WHERE id = $1
	`, userID)

	var user User
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (s *Service) issueToken(userID string) (TokenResponse, error) {
	token, err := s.codec.Issue(userID)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.codec.TTL().Seconds()),
	}, nil
}

func gravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?d=mm&s=200"
}
