package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"hireprep/internal/store"
	"hireprep/internal/util"
	"hireprep/pkg/ai"
	"hireprep/pkg/auth"
	"hireprep/pkg/domain"
	"hireprep/pkg/extract"
	"hireprep/pkg/storage"
)

// TextExtractor pulls plain text out of an uploaded document stream.
type TextExtractor func(r io.ReaderAt, size int64) (string, error)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration

	Generator ai.TextGenerator
	Extractor TextExtractor
	Objects   storage.ObjectStore

	Store    store.Store
	Sessions store.SessionStore
}

// App is the core application service wiring together storage, sessions,
// extraction and question generation.
type App struct {
	store     store.Store
	sessions  store.SessionStore
	generator ai.TextGenerator
	extractor TextExtractor
	objects   storage.ObjectStore
}

// New constructs the application with database storage and session management.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("text generator required")
	}
	if cfg.Extractor == nil {
		cfg.Extractor = extract.Text
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return nil, fmt.Errorf("redis addr required for session store")
		}
		sessionStore = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
	}

	return &App{
		store:     dataStore,
		sessions:  sessionStore,
		generator: cfg.Generator,
		extractor: cfg.Extractor,
		objects:   cfg.Objects,
	}, nil
}

// Register creates a new account after validating username and password
// against the registration patterns.
func (a *App) Register(username, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, ErrUsernameAndPasswordRequired
	}
	if err := auth.ValidateUsername(username); err != nil {
		return domain.User{}, err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.User{}, err
	}
	exists, err := a.store.HasUsername(username)
	if err != nil {
		return domain.User{}, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return domain.User{}, ErrUsernameTaken
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := domain.User{
		ID:           util.NewID(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// Login validates credentials and issues a session token.
func (a *App) Login(username, password string) (domain.User, string, error) {
	username = strings.TrimSpace(username)
	user, ok, err := a.store.GetUserByUsername(username)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, "", ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// Logout invalidates a session token.
func (a *App) Logout(token string) error {
	return a.sessions.DeleteSession(token)
}

// UserFromToken resolves a user from a session token.
func (a *App) UserFromToken(token string) (domain.User, bool) {
	uid, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.User{}, false
	}
	user, found, err := a.store.GetUserByID(uid)
	if err != nil || !found {
		return domain.User{}, false
	}
	return user, true
}

// Analyze runs the resume pipeline: extract text, generate interview
// questions, and record a history entry when a user is present. The
// history write is best-effort; a failure there never fails the analysis.
func (a *App) Analyze(ctx context.Context, user *domain.User, filename string, resume []byte, jobDescription string) (domain.AnalysisResult, error) {
	resumeText, err := a.extractor(bytes.NewReader(resume), int64(len(resume)))
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("extract resume text: %w", err)
	}
	questions, err := a.generator.GenerateText(ctx, interviewerSystemPrompt, buildInterviewPrompt(resumeText, strings.TrimSpace(jobDescription)))
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("generate questions: %w", err)
	}
	if user != nil {
		a.recordHistory(ctx, *user, filename, resume, questions)
	}
	return domain.AnalysisResult{Questions: questions}, nil
}

// History returns the user's past question sets, newest first.
func (a *App) History(user domain.User) ([]domain.HistoryEntry, error) {
	entries, err := a.store.ListHistoryByUser(user.ID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

func (a *App) recordHistory(ctx context.Context, user domain.User, filename string, resume []byte, questions string) {
	entry := domain.HistoryEntry{
		ID:        util.NewID(),
		UserID:    user.ID,
		Questions: questions,
		CreatedAt: time.Now().UTC(),
	}
	if a.objects != nil {
		key := "resumes/" + user.ID + "/" + entry.ID + ".pdf"
		if err := a.objects.Put(ctx, key, bytes.NewReader(resume), int64(len(resume)), "application/pdf"); err != nil {
			slog.Warn("archive resume failed", "user_id", user.ID, "key", key, "err", err)
		} else {
			entry.ResumeObjectKey = key
		}
	}
	if err := a.store.AppendHistory(entry); err != nil {
		slog.Warn("append history failed", "user_id", user.ID, "file", filename, "err", err)
	}
}
