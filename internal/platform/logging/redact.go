package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

var (
	jwtPattern       = regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`)
	bearerPattern    = regexp.MustCompile(`(?i)^bearer\s+.+$`)
	basicAuthPattern = regexp.MustCompile(`(?i)^basic\s+.+$`)
)

// sensitiveFields are attribute names whose values never reach a log sink.
// The remote quote server is unauthenticated today; these cover proxy
// credentials and headers that pass through the HTTP client and middleware.
var sensitiveFields = []string{
	"password",
	"secret",
	"token",
	"apiKey",
	"api_key",
	"accessToken",
	"access_token",
	"refreshToken",
	"refresh_token",
	"credential",
	"credentials",
	"authorization",
	"auth",
	"bearer",
	"cookie",
	"set-cookie",
	"proxy_authorization",
	"privateKey",
	"private_key",
	"secretKey",
	"secret_key",
}

// DefaultRedactOptions returns the masq options applied by every handler.
func DefaultRedactOptions() []masq.Option {
	opts := make([]masq.Option, 0, len(sensitiveFields)+5)

	for _, name := range sensitiveFields {
		opts = append(opts, masq.WithFieldName(name))
	}

	return append(opts,
		masq.WithFieldPrefix("secret"),
		masq.WithFieldPrefix("private"),
		masq.WithRegex(jwtPattern),
		masq.WithRegex(bearerPattern),
		masq.WithRegex(basicAuthPattern),
	)
}

// NewReplaceAttr creates a slog ReplaceAttr func that redacts sensitive data.
// Extra options extend DefaultRedactOptions.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(DefaultRedactOptions(), opts...)...)
}
