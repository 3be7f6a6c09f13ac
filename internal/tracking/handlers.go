package tracking

import (
	"errors"

	"backend-speedtrack/internal/session"
	"backend-speedtrack/internal/speed"
	"backend-speedtrack/internal/tracker"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/trackers", authMiddleware, func(c *fiber.Ctx) error {
		var req CreateTrackerRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}
		st, err := svc.CreateTracker(c.UserContext(), req)
		if err != nil {
			return toHTTPError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(st)
	})

	r.Get("/trackers/:id", func(c *fiber.Ctx) error {
		st, err := svc.Status(c.UserContext(), c.Params("id"))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(st)
	})

	r.Delete("/trackers/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.RemoveTracker(c.UserContext(), c.Params("id")); err != nil {
			return toHTTPError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/trackers/:id/samples", authMiddleware, func(c *fiber.Ctx) error {
		var req speed.Sample
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		res, err := svc.AddSample(c.UserContext(), c.Params("id"), req)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(res)
	})

	r.Post("/trackers/:id/session", authMiddleware, func(c *fiber.Ctx) error {
		var req StartSessionRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		st, err := svc.StartSession(c.UserContext(), c.Params("id"), req)
		if err != nil {
			return toHTTPError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(st)
	})

	r.Delete("/trackers/:id/session", authMiddleware, func(c *fiber.Ctx) error {
		st, err := svc.StopSession(c.UserContext(), c.Params("id"))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(st)
	})

	r.Get("/trackers/:id/analytics", func(c *fiber.Ctx) error {
		a, ok, err := svc.Analytics(c.UserContext(), c.Params("id"))
		if err != nil {
			return toHTTPError(err)
		}
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no completed session")
		}
		return c.JSON(a)
	})
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrInvalidConfiguration), errors.Is(err, speed.ErrInvalidConfig),
		errors.Is(err, ErrInvalidSample):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrInvalidState):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, tracker.ErrLimit):
		return fiber.NewError(fiber.StatusTooManyRequests, err.Error())
	case errors.Is(err, tracker.ErrClosed):
		return fiber.NewError(fiber.StatusGone, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
