package handler

import (
	"encoding/json"
	"strings"

	"github.com/primus-the-first/TutorMind-sub001/internal/apperrors"
	"github.com/primus-the-first/TutorMind-sub001/internal/service"
)

// authRequest is the union of fields any action may carry. Both form and JSON
// bodies bind into it.
type authRequest struct {
	Action          string `form:"action" json:"action"`
	Username        string `form:"username" json:"username"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	Remember        flag   `form:"remember" json:"remember"`
	CurrentPassword string `form:"current_password" json:"current_password"`
	NewPassword     string `form:"new_password" json:"new_password"`
	CSRFToken       string `form:"csrf_token" json:"csrf_token"`
}

func (r authRequest) command() (service.Command, error) {
	switch strings.ToLower(strings.TrimSpace(r.Action)) {
	case "register":
		return service.RegisterCommand{
			Username: r.Username,
			Email:    r.Email,
			Password: r.Password,
		}, nil
	case "login":
		return service.LoginCommand{
			Email:    r.Email,
			Password: r.Password,
			Remember: bool(r.Remember),
		}, nil
	case "logout":
		return service.LogoutCommand{}, nil
	case "change_password":
		return service.ChangePasswordCommand{
			CurrentPassword: r.CurrentPassword,
			NewPassword:     r.NewPassword,
		}, nil
	case "":
		return nil, apperrors.NewValidation("action is required")
	default:
		return nil, apperrors.NewValidation("unknown action")
	}
}

// flag accepts the checkbox spellings browsers and scripts send for a boolean.
type flag bool

// UnmarshalParam implements gin's binding.BindUnmarshaler for form values.
func (f *flag) UnmarshalParam(param string) error {
	*f = flag(truthy(param))
	return nil
}

func (f *flag) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch x := v.(type) {
	case bool:
		*f = flag(x)
	case string:
		*f = flag(truthy(x))
	case float64:
		*f = x != 0
	default:
		*f = false
	}
	return nil
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}
