package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/crm-lite/pkg/logger"
	"github.com/rs/zerolog"
)

// RequestLogger registra cada petición: método, ruta, status, latencia y actor.
// El logger de la petición (con request_id) queda en c.UserContext() para los casos de uso.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqLog := log.ForRequest(c.GetRespHeader(fiber.HeaderXRequestID))
		c.SetUserContext(reqLog.IntoContext(c.UserContext()))

		chainErr := c.Next()
		if chainErr != nil {
			// Resolver el status final antes de registrar.
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		l := reqLog.ForActor(GetUserID(c), GetCompanyID(c))
		status := c.Response().StatusCode()
		var ev *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = l.Error()
		case status >= fiber.StatusBadRequest:
			ev = l.Warn()
		default:
			ev = l.Info()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Msg("http request")
		return nil
	}
}
