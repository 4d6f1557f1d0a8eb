package templates

import (
	"time"

	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/services"
	"github.com/go-authgate/applink/internal/store"
)

// BaseProps contains common properties shared across all pages
type BaseProps struct {
	CSRFToken string
}

// NavbarProps contains properties for the navigation bar
type NavbarProps struct {
	Username   string
	IsAdmin    bool
	ActiveLink string // "tokens", "consumers"
}

// ErrorPageProps contains properties for the error page
type ErrorPageProps struct {
	BaseProps
	Error   string
	Message string
}

// LoginPageProps contains properties for the login page
type LoginPageProps struct {
	BaseProps
	Error    string
	Redirect string
}

// ConsentPageProps describes a request token awaiting the user's decision.
type ConsentPageProps struct {
	BaseProps
	NavbarProps
	ActionURL    string
	Token        string
	ConsumerName string
	ConsumerKey  string
	CallbackHost string // empty for out-of-band consumers
	ExpiresAt    time.Time
	Error        string
}

// VerifierPageProps is shown after approving an out-of-band request token.
type VerifierPageProps struct {
	NavbarProps
	ConsumerName string
	Verifier     string
}

// DeniedPageProps is shown after denying an out-of-band request token.
type DeniedPageProps struct {
	NavbarProps
	ConsumerName string
}

// TokensPageProps lists the user's access tokens.
type TokensPageProps struct {
	BaseProps
	NavbarProps
	Tokens     []services.TokenWithConsumer
	Pagination store.PaginationResult
	Success    string
	Error      string
}

// ConsumersPageProps lists registered consumers for administrators.
type ConsumersPageProps struct {
	BaseProps
	NavbarProps
	Consumers []models.Consumer
	Success   string
	Error     string
}
