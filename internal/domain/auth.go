package domain

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Token string `json:"token,omitempty"`
}

type AuthState struct {
	IsAuthenticated bool  `json:"isAuthenticated"`
	User            *User `json:"user"`
}

// Public drops the token for callers that render the state.
func (s AuthState) Public() AuthState {
	if s.User == nil {
		return s
	}
	u := *s.User
	u.Token = ""
	return AuthState{IsAuthenticated: s.IsAuthenticated, User: &u}
}
