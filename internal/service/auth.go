package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/primus-the-first/TutorMind-sub001/internal/apperrors"
	"github.com/primus-the-first/TutorMind-sub001/internal/logger"
	"github.com/primus-the-first/TutorMind-sub001/internal/model"
)

const dummyPassword = "tutormind-timing-equalizer"

// Auth orchestrates registration, login, logout, password change and the
// access check on protected requests.
type Auth struct {
	users    model.UserStore
	sessions model.SessionStore
	hasher   model.PasswordHasher
	limiter  *RateLimiter
	remember *RememberService
	csrf     *CSRFManager
	validate *validator.Validate
	logger   *logger.Logger
	now      func() time.Time

	// dummyHash is verified against when the email is unknown so both paths cost the same.
	dummyHash string
}

func NewAuth(
	users model.UserStore,
	sessions model.SessionStore,
	hasher model.PasswordHasher,
	limiter *RateLimiter,
	remember *RememberService,
	csrf *CSRFManager,
	logger *logger.Logger,
) (*Auth, error) {
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return &Auth{
		users:     users,
		sessions:  sessions,
		hasher:    hasher,
		limiter:   limiter,
		remember:  remember,
		csrf:      csrf,
		validate:  v,
		logger:    logger,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

// Dispatch runs cmd after the session lookup and CSRF gate every command shares.
func (a *Auth) Dispatch(ctx context.Context, rc model.RequestContext, cmd Command) (Outcome, error) {
	sess, found, err := a.loadSession(ctx, rc.SessionID)
	if err != nil {
		a.logger.Error("Auth service: failed to load session",
			"action", cmd.Action(),
			"error", err.Error())
		return Outcome{}, apperrors.NewInternal()
	}

	if _, ok := cmd.(ChangePasswordCommand); ok && !sess.Authenticated() {
		return Outcome{}, apperrors.NewAuthentication("not authenticated")
	}

	if err := a.checkCSRF(sess, found, rc.CSRFToken, cmd.csrfAlways()); err != nil {
		a.logger.Warn("Auth service: csrf check failed",
			"action", cmd.Action(),
			"ip", rc.IP)
		return Outcome{}, err
	}

	switch c := cmd.(type) {
	case RegisterCommand:
		return a.Register(ctx, c)
	case LoginCommand:
		return a.Login(ctx, rc, sess, c)
	case LogoutCommand:
		return a.Logout(ctx, rc, sess, found)
	case ChangePasswordCommand:
		return a.ChangePassword(ctx, sess, c)
	default:
		return Outcome{}, apperrors.NewValidation("unknown action")
	}
}

// Register creates an account. It does not log the user in.
func (a *Auth) Register(ctx context.Context, cmd RegisterCommand) (Outcome, error) {
	cmd.Username = strings.TrimSpace(cmd.Username)
	cmd.Email = normalizeEmail(cmd.Email)

	a.logger.Debug("Auth service: starting user registration",
		"username", cmd.Username,
		"email", cmd.Email)

	if err := a.validate.Struct(cmd); err != nil {
		return Outcome{}, validationError(err)
	}

	conflicts, err := a.users.FindConflicts(ctx, cmd.Username, cmd.Email)
	if err != nil {
		a.logger.Error("Auth service: failed to check existing users",
			"email", cmd.Email,
			"error", err.Error())
		return Outcome{}, apperrors.NewInternal()
	}
	switch {
	case conflicts.UsernameTaken:
		return Outcome{}, apperrors.NewConflict("username is already taken")
	case conflicts.EmailTaken:
		return Outcome{}, apperrors.NewConflict("email is already registered")
	}

	hash, err := a.hasher.Hash(cmd.Password)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"error", err.Error())
		return Outcome{}, apperrors.NewInternal()
	}

	now := a.now().UTC()
	user := model.User{
		ID:           uuid.New(),
		Username:     cmd.Username,
		Email:        cmd.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := a.users.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrConflict) {
			return Outcome{}, apperrors.NewConflict("username or email is already registered")
		}
		a.logger.Error("Auth service: failed to create user",
			"email", cmd.Email,
			"error", err.Error())
		return Outcome{}, apperrors.NewInternal()
	}

	a.logger.Info("Auth service: user registered",
		"user_id", user.ID.String(),
		"username", user.Username)

	return Outcome{Message: "Registration successful"}, nil
}

// Login verifies credentials and establishes a fresh session. current is the
// caller's existing session, if any; it is replaced, never reused.
func (a *Auth) Login(ctx context.Context, rc model.RequestContext, current model.Session, cmd LoginCommand) (Outcome, error) {
	cmd.Email = normalizeEmail(cmd.Email)

	if err := a.validate.Struct(cmd); err != nil {
		return Outcome{}, validationError(err)
	}

	if res := a.limiter.Check(ctx, rc.IP, cmd.Email); res.Limited {
		return Outcome{}, apperrors.NewRateLimited(res.RetryAfterSeconds)
	}

	user, err := a.users.GetByEmail(ctx, cmd.Email)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", cmd.Email,
			"error", err.Error())
		return Outcome{}, apperrors.NewInternal()
	}

	if errors.Is(err, model.ErrNotFound) {
		_, _ = a.hasher.Verify(cmd.Password, a.dummyHash)
		a.recordFailure(ctx, rc.IP, cmd.Email)
		return Outcome{}, apperrors.NewAuthentication("invalid email or password")
	}

	ok, err := a.hasher.Verify(cmd.Password, user.PasswordHash)
	if err != nil {
		a.logger.Error("Auth service: stored password hash is unusable",
			"user_id", user.ID.String(),
			"error", err.Error())
		return Outcome{}, apperrors.NewInternal()
	}
	if !ok {
		a.recordFailure(ctx, rc.IP, cmd.Email)
		return Outcome{}, apperrors.NewAuthentication("invalid email or password")
	}

	if err := a.limiter.Clear(ctx, rc.IP, cmd.Email); err != nil {
		a.logger.Warn("Auth service: failed to clear login attempts",
			"email", cmd.Email,
			"error", err.Error())
	}

	a.upgradeHash(ctx, user, cmd.Password)

	sess, err := a.establish(ctx, current, user)
	if err != nil {
		a.logger.Error("Auth service: failed to establish session",
			"user_id", user.ID.String(),
			"error", err.Error())
		return Outcome{}, apperrors.NewInternal()
	}

	out := Outcome{Message: "Login successful", Session: sess}

	if cmd.Remember {
		issued, err := a.remember.Issue(ctx, user.ID)
		if err != nil {
			// The login itself succeeded; only the persistent cookie is skipped.
			a.logger.Error("Auth service: failed to issue remember token",
				"user_id", user.ID.String(),
				"error", err.Error())
		} else {
			out.Remember = issued
		}
	}

	a.logger.Info("Auth service: user logged in",
		"user_id", user.ID.String(),
		"remember", cmd.Remember)

	return out, nil
}

// Logout destroys the session and the presented remember-me token.
func (a *Auth) Logout(ctx context.Context, rc model.RequestContext, sess model.Session, found bool) (Outcome, error) {
	if found {
		if err := a.sessions.Destroy(ctx, sess.ID); err != nil {
			a.logger.Error("Auth service: failed to destroy session",
				"error", err.Error())
		}
	}

	if rc.RememberToken != "" {
		if err := a.remember.Revoke(ctx, rc.RememberToken); err != nil {
			a.logger.Error("Auth service: failed to revoke remember token",
				"error", err.Error())
		}
	}

	if sess.Authenticated() {
		a.logger.Info("Auth service: user logged out",
			"user_id", sess.UserID.String())
	}

	return Outcome{
		Message:       "Logged out successfully",
		ClearSession:  true,
		ClearRemember: true,
	}, nil
}

// ChangePassword replaces the password of the session's user, revokes every
// remember-me token and rotates the session id.
func (a *Auth) ChangePassword(ctx context.Context, sess model.Session, cmd ChangePasswordCommand) (Outcome, error) {
	if !sess.Authenticated() {
		return Outcome{}, apperrors.NewAuthentication("not authenticated")
	}

	if err := a.validate.Struct(cmd); err != nil {
		return Outcome{}, validationError(err)
	}

	user, err := a.users.GetByID(ctx, sess.UserID)
	if errors.Is(err, model.ErrNotFound) {
		_ = a.sessions.Destroy(ctx, sess.ID)
		return Outcome{}, apperrors.NewAuthentication("not authenticated")
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by id",
			"user_id", sess.UserID.String(),
			"error", err.Error())
		return Outcome{}, apperrors.NewInternal()
	}

	ok, err := a.hasher.Verify(cmd.CurrentPassword, user.PasswordHash)
	if err != nil {
		a.logger.Error("Auth service: stored password hash is unusable",
			"user_id", user.ID.String(),
			"error", err.Error())
		return Outcome{}, apperrors.NewInternal()
	}
	if !ok {
		return Outcome{}, apperrors.NewAuthentication("current password is incorrect")
	}

	hash, err := a.hasher.Hash(cmd.NewPassword)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"error", err.Error())
		return Outcome{}, apperrors.NewInternal()
	}

	if err := a.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		a.logger.Error("Auth service: failed to update password",
			"user_id", user.ID.String(),
			"error", err.Error())
		return Outcome{}, apperrors.NewInternal()
	}

	if err := a.remember.RevokeAllForUser(ctx, user.ID); err != nil {
		a.logger.Error("Auth service: failed to revoke remember tokens",
			"user_id", user.ID.String(),
			"error", err.Error())
	}

	fresh, err := a.establish(ctx, sess, user)
	if err != nil {
		a.logger.Error("Auth service: failed to rotate session",
			"user_id", user.ID.String(),
			"error", err.Error())
		return Outcome{}, apperrors.NewInternal()
	}

	a.logger.Info("Auth service: password changed",
		"user_id", user.ID.String())

	return Outcome{
		Message:       "Password changed successfully",
		Session:       fresh,
		ClearRemember: true,
	}, nil
}

// Authenticate is the access check for protected requests. It trusts a live
// session first and otherwise tries to recover one from the remember-me token.
// Every failure ends in AccessDenied; causes are only logged.
func (a *Auth) Authenticate(ctx context.Context, rc model.RequestContext) Access {
	current, found, err := a.loadSession(ctx, rc.SessionID)
	if err != nil {
		a.logger.Warn("Auth service: session lookup failed",
			"error", err.Error())
	}
	if found && current.Authenticated() {
		return Access{State: AccessSessionValid, Session: current}
	}

	if rc.RememberToken == "" {
		return Access{State: AccessDenied}
	}

	user, token, err := a.remember.Validate(ctx, rc.RememberToken)
	if err != nil {
		if !rejectedToken(err) {
			a.logger.Error("Auth service: failed to validate remember token",
				"ip", rc.IP,
				"error", err.Error())
			return Access{State: AccessDenied}
		}
		a.logger.Debug("Auth service: remember token rejected",
			"ip", rc.IP,
			"user_agent", rc.UserAgent,
			"reason", err.Error())
		return Access{State: AccessDenied, ClearRemember: true}
	}

	sess, err := a.establish(ctx, current, user)
	if err != nil {
		a.logger.Error("Auth service: failed to establish session from remember token",
			"user_id", user.ID.String(),
			"error", err.Error())
		return Access{State: AccessDenied}
	}

	access := Access{State: AccessTokenRecovered, Session: sess}

	rotated, err := a.remember.Rotate(ctx, token)
	if err != nil {
		a.logger.Error("Auth service: failed to rotate remember token",
			"user_id", user.ID.String(),
			"error", err.Error())
	} else {
		access.Remember = rotated
	}

	a.logger.Info("Auth service: session recovered from remember token",
		"user_id", user.ID.String(),
		"ip", rc.IP,
		"user_agent", rc.UserAgent)

	return access
}

// CSRFToken returns the caller's session with a CSRF token, creating an
// anonymous session when there is none.
func (a *Auth) CSRFToken(ctx context.Context, rc model.RequestContext) (model.Session, error) {
	sess, _, err := a.loadSession(ctx, rc.SessionID)
	if err != nil {
		a.logger.Error("Auth service: failed to load session",
			"error", err.Error())
		return model.Session{}, apperrors.NewInternal()
	}

	sess, err = a.csrf.EnsureToken(ctx, sess)
	if err != nil {
		a.logger.Error("Auth service: failed to issue csrf token",
			"error", err.Error())
		return model.Session{}, apperrors.NewInternal()
	}

	return sess, nil
}

// CurrentUser loads the account behind an authenticated session.
func (a *Auth) CurrentUser(ctx context.Context, sess model.Session) (model.User, error) {
	if !sess.Authenticated() {
		return model.User{}, apperrors.NewAuthentication("not authenticated")
	}

	user, err := a.users.GetByID(ctx, sess.UserID)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, apperrors.NewAuthentication("not authenticated")
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by id",
			"user_id", sess.UserID.String(),
			"error", err.Error())
		return model.User{}, apperrors.NewInternal()
	}

	return user, nil
}

func (a *Auth) loadSession(ctx context.Context, id string) (model.Session, bool, error) {
	if id == "" {
		return model.Session{}, false, nil
	}
	sess, err := a.sessions.Get(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Session{}, false, nil
	}
	if err != nil {
		return model.Session{}, false, err
	}
	return sess, true, nil
}

func (a *Auth) checkCSRF(sess model.Session, found bool, candidate string, always bool) error {
	if !found || sess.CSRFToken == "" {
		if always {
			return apperrors.NewAuthorization("invalid CSRF token")
		}
		return nil
	}
	if !a.csrf.Validate(sess, candidate) {
		return apperrors.NewAuthorization("invalid CSRF token")
	}
	return nil
}

// establish writes an authenticated session for user with a new id and a new
// CSRF token. An existing session is regenerated rather than reused.
func (a *Auth) establish(ctx context.Context, current model.Session, user model.User) (model.Session, error) {
	token, err := NewCSRFToken()
	if err != nil {
		return model.Session{}, err
	}

	next := model.Session{
		ID:        current.ID,
		UserID:    user.ID,
		Username:  user.Username,
		CSRFToken: token,
		CreatedAt: a.now().UTC(),
	}

	if next.ID != "" {
		return a.sessions.Regenerate(ctx, next)
	}
	return a.sessions.Create(ctx, next)
}

func (a *Auth) recordFailure(ctx context.Context, ip, email string) {
	if err := a.limiter.RecordFailure(ctx, ip, email); err != nil {
		a.logger.Warn("Auth service: failed to record login attempt",
			"email", email,
			"error", err.Error())
	}
}

func (a *Auth) upgradeHash(ctx context.Context, user model.User, password string) {
	if !a.hasher.NeedsUpgrade(user.PasswordHash) {
		return
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		a.logger.Warn("Auth service: failed to rehash password",
			"user_id", user.ID.String(),
			"error", err.Error())
		return
	}

	if err := a.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		a.logger.Warn("Auth service: failed to persist upgraded password hash",
			"user_id", user.ID.String(),
			"error", err.Error())
		return
	}

	a.logger.Info("Auth service: password hash upgraded",
		"user_id", user.ID.String())
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validationError(err error) *apperrors.APIError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.NewValidation("invalid input")
	}

	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return apperrors.NewValidation(field + " is required")
	case "email":
		return apperrors.NewValidation("email is invalid")
	case "min":
		return apperrors.NewValidation(fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
	case "max":
		return apperrors.NewValidation(fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	default:
		return apperrors.NewValidation(field + " is invalid")
	}
}

// rejectedToken reports whether err condemns the presented token itself, as
// opposed to a store failure that says nothing about it.
func rejectedToken(err error) bool {
	return errors.Is(err, model.ErrTokenMalformed) ||
		errors.Is(err, model.ErrTokenExpired) ||
		errors.Is(err, model.ErrTokenMismatch) ||
		errors.Is(err, model.ErrTokenOrphaned)
}
