package session

import (
	"errors"

	"strarun-gateway/internal/transport"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, mgr *Manager) {
	r.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(statusBody(mgr.Current()))
	})

	r.Get("/strava", func(c *fiber.Ctx) error {
		url, err := mgr.BeginAuth(c.Context())
		if err != nil {
			return httpError(err)
		}
		return c.JSON(fiber.Map{"auth_url": url})
	})

	r.Post("/token", func(c *fiber.Ctx) error {
		var req struct {
			Code  string `json:"code"`
			State string `json:"state"`
		}
		if err := c.BodyParser(&req); err != nil || req.Code == "" {
			return fiber.NewError(fiber.StatusBadRequest, "code required")
		}

		snap, err := mgr.Exchange(c.Context(), req.Code, req.State)
		if err != nil {
			if errors.Is(err, ErrStateMismatch) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return httpError(err)
		}
		return c.JSON(statusBody(snap))
	})

	r.Post("/logout", func(c *fiber.Ctx) error {
		return c.JSON(statusBody(mgr.Logout(c.Context())))
	})
}

func statusBody(snap Snapshot) fiber.Map {
	return fiber.Map{
		"authenticated": snap.State == StateAuthenticated,
		"state":         snap.State.String(),
		"athlete":       snap.Athlete,
	}
}

func httpError(err error) error {
	var te *transport.Error
	if errors.As(err, &te) {
		if te.AuthFailure() {
			return fiber.NewError(fiber.StatusUnauthorized, te.Message)
		}
		return fiber.NewError(fiber.StatusBadGateway, te.Message)
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
