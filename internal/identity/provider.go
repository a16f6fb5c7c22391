package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-resty/resty/v2"
)

const source = "identity"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
)

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Provider is the remote identity service.
type Provider interface {
	SignIn(ctx context.Context, creds Credentials) (domain.User, error)
	SignUp(ctx context.Context, creds Credentials) (domain.User, error)
	SignOut(ctx context.Context, user domain.User) error
}

type authRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type authResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// RESTProvider talks to an identity-toolkit style password endpoint.
type RESTProvider struct {
	client *resty.Client
	apiKey string
}

// NewRESTProvider expects client to carry the identity base URL.
func NewRESTProvider(client *resty.Client, apiKey string) *RESTProvider {
	return &RESTProvider{client: client, apiKey: apiKey}
}

func (p *RESTProvider) SignIn(ctx context.Context, creds Credentials) (domain.User, error) {
	return p.authenticate(ctx, "/accounts:signInWithPassword", creds)
}

func (p *RESTProvider) SignUp(ctx context.Context, creds Credentials) (domain.User, error) {
	return p.authenticate(ctx, "/accounts:signUp", creds)
}

// SignOut has nothing to revoke remotely; id tokens simply expire.
func (p *RESTProvider) SignOut(_ context.Context, _ domain.User) error {
	return nil
}

func (p *RESTProvider) authenticate(ctx context.Context, path string, creds Credentials) (domain.User, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("key", p.apiKey).
		SetBody(authRequest{Email: creds.Email, Password: creds.Password, ReturnSecureToken: true}).
		Post(path)
	if err != nil {
		return domain.User{}, &domain.FetchError{Source: source, Err: fmt.Errorf("request %s: %w", path, err)}
	}

	if resp.IsError() {
		return domain.User{}, classify(resp.StatusCode(), resp.Body())
	}

	var body authResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return domain.User{}, &domain.FetchError{Source: source, Err: fmt.Errorf("decode %s: %w", path, err)}
	}
	if body.LocalID == "" || body.IDToken == "" {
		return domain.User{}, &domain.FetchError{Source: source, Err: errors.New("response is missing user id or token")}
	}

	return domain.User{ID: body.LocalID, Email: body.Email, Token: body.IDToken}, nil
}

func classify(status int, raw []byte) error {
	var body errorResponse
	_ = json.Unmarshal(raw, &body)
	// messages look like "TOO_MANY_ATTEMPTS_TRY_LATER : details"
	code := strings.TrimSpace(strings.SplitN(body.Error.Message, " ", 2)[0])

	if status == http.StatusBadRequest {
		switch code {
		case "INVALID_PASSWORD", "EMAIL_NOT_FOUND", "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL", "USER_DISABLED":
			return ErrInvalidCredentials
		case "EMAIL_EXISTS":
			return ErrEmailTaken
		}
	}

	if code == "" {
		code = "unexpected response"
	}
	return &domain.FetchError{Source: source, StatusCode: status, Err: errors.New(code)}
}
