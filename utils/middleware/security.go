package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sahilchouksey/noticeboard-api/utils/response"
)

// SecurityConfig holds the cross-cutting middleware settings
type SecurityConfig struct {
	// AllowedOrigins is the parsed CORS allow list; "*" allows any origin
	// without credentials
	AllowedOrigins []string
	// RateLimitRequests per RateLimitWindow and client IP; 0 disables it
	RateLimitRequests int
	RateLimitWindow   time.Duration
	DisableRequestLog bool
}

// NewSecurityConfig builds the configuration from a comma separated origin
// list and the global rate limit
func NewSecurityConfig(origins string, requests int, window time.Duration) SecurityConfig {
	return SecurityConfig{
		AllowedOrigins:    ParseOrigins(origins),
		RateLimitRequests: requests,
		RateLimitWindow:   window,
	}
}

// ParseOrigins splits a comma separated origin list, dropping blanks
func ParseOrigins(origins string) []string {
	out := make([]string, 0)
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c SecurityConfig) allowsAnyOrigin() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

// SetupSecurity installs request ids, access log, panic recovery, security
// headers, CORS and the global rate limiter, in that order
func SetupSecurity(app *fiber.App, config SecurityConfig) {
	app.Use(requestid.New())

	if !config.DisableRequestLog {
		app.Use(logger.New(logger.Config{
			Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${locals:requestid}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))

	app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		HSTSMaxAge:         31536000,
		ReferrerPolicy:     "no-referrer",
	}))

	// browsers reject credentialed responses carrying a wildcard origin
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(config.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: len(config.AllowedOrigins) > 0 && !config.allowsAnyOrigin(),
		MaxAge:           int((24 * time.Hour).Seconds()),
	}))

	if config.RateLimitRequests > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        config.RateLimitRequests,
			Expiration: config.RateLimitWindow,
			LimitReached: func(c *fiber.Ctx) error {
				return response.TooManyRequests(c, "Too many requests. Please try again later.")
			},
		}))
	}
}
