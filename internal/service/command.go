package service

import "github.com/primus-the-first/TutorMind-sub001/internal/model"

// Command is one action accepted by the auth endpoint. The set is closed:
// only the types in this file implement it.
type Command interface {
	Action() string
	// csrfAlways reports whether the command needs a valid CSRF token even
	// when the caller has no session. Other commands are checked only once a
	// session holding a token exists.
	csrfAlways() bool
}

type RegisterCommand struct {
	Username string `json:"username" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

type LoginCommand struct {
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=1024"`
	Remember bool   `json:"remember"`
}

type LogoutCommand struct{}

type ChangePasswordCommand struct {
	CurrentPassword string `json:"current_password" validate:"required,max=1024"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=1024"`
}

func (RegisterCommand) Action() string       { return "register" }
func (LoginCommand) Action() string          { return "login" }
func (LogoutCommand) Action() string         { return "logout" }
func (ChangePasswordCommand) Action() string { return "change_password" }

func (RegisterCommand) csrfAlways() bool       { return false }
func (LoginCommand) csrfAlways() bool          { return false }
func (LogoutCommand) csrfAlways() bool         { return false }
func (ChangePasswordCommand) csrfAlways() bool { return true }

// Outcome tells the transport what to send back and which cookies to change.
type Outcome struct {
	Message string
	// Session is set when the client must point its session cookie at Session.ID.
	Session       model.Session
	Remember      IssuedToken
	ClearSession  bool
	ClearRemember bool
}

// AccessState is where the access check ended up for a request.
type AccessState int

const (
	AccessDenied AccessState = iota
	AccessSessionValid
	AccessTokenRecovered
)

func (s AccessState) String() string {
	switch s {
	case AccessSessionValid:
		return "session_valid"
	case AccessTokenRecovered:
		return "token_recovered"
	default:
		return "denied"
	}
}

// Access is the result of Auth.Authenticate.
type Access struct {
	State   AccessState
	Session model.Session
	// Remember carries the rotated token after a recovery.
	Remember      IssuedToken
	ClearRemember bool
}

func (a Access) Granted() bool {
	return a.State != AccessDenied
}
