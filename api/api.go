package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/noticeboard-api/utils/response"
)

// BodyLimit leaves room for a 5MB roster plus multipart framing
const BodyLimit = 8 * 1024 * 1024

type APIServer struct {
	app           *fiber.App
	listenAddress string
}

func NewAPIServer(listenAddress string, development bool) *APIServer {
	return &APIServer{
		app:           NewApp(development),
		listenAddress: listenAddress,
	}
}

// NewApp builds the fiber app with the JSON error handler installed
func NewApp(development bool) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "noticeboard-api",
		BodyLimit:    BodyLimit,
		ErrorHandler: NewErrorHandler(development),
	})
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	log.Info("Starting API Server")
	log.Infof("Listening on %s", s.listenAddress)

	return s.app.Listen(s.listenAddress)
}

// NewErrorHandler renders errors that escaped a handler. Details of
// unexpected errors are only returned in development.
func NewErrorHandler(development bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			switch {
			case fe.Code == fiber.StatusNotFound:
				return response.NotFound(c, "Not Found")
			case fe.Code < fiber.StatusInternalServerError:
				return response.Error(c, fe.Code, fe.Message, response.CodeBadRequest)
			}
		}

		log.Errorw("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
		if development {
			return response.ErrorWithDetails(c, fiber.StatusInternalServerError, "Internal Server Error", response.CodeInternal, err.Error())
		}
		return response.Error(c, fiber.StatusInternalServerError, "Internal Server Error", response.CodeInternal)
	}
}

// NotFound is the catch-all for unknown routes
func NotFound(c *fiber.Ctx) error {
	return response.NotFound(c, "Not Found")
}
