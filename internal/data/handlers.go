package data

import (
	"errors"
	"time"

	"strarun-gateway/internal/session"
	"strarun-gateway/internal/stats"
	"strarun-gateway/internal/transport"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app fiber.Router, f *Facade, sessions *session.Manager) {
	app.Get("/activities", func(c *fiber.Ctx) error {
		page := c.QueryInt("page", 1)
		perPage := c.QueryInt("per_page", 30)
		activities, err := f.Activities(c.Context(), page, perPage)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(activities)
	})

	app.Post("/activities/refresh", func(c *fiber.Ctx) error {
		f.RefreshActivities(c.Context())
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Get("/activities/:id", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid activity id")
		}
		detail, err := f.Activity(c.Context(), int64(id))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(detail)
	})

	app.Post("/activities/:id/refresh", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid activity id")
		}
		f.RefreshActivity(c.Context(), int64(id))
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Get("/activities/:id/laps", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid activity id")
		}
		laps, err := f.ActivityLaps(c.Context(), int64(id))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(laps)
	})

	app.Get("/athlete", func(c *fiber.Ctx) error {
		athlete, err := f.Athlete(c.Context())
		if err != nil {
			return httpError(err)
		}
		return c.JSON(athlete)
	})

	app.Get("/stats", func(c *fiber.Ctx) error {
		snap := sessions.Current()
		if snap.State != session.StateAuthenticated {
			return fiber.NewError(fiber.StatusUnauthorized, "not authenticated")
		}

		athleteStats, err := f.AthleteStats(c.Context(), snap.Athlete.ID)
		if err != nil {
			return httpError(err)
		}
		activities, err := f.Activities(c.Context(), 1, 100)
		if err != nil {
			return httpError(err)
		}

		return c.JSON(fiber.Map{
			"year_to_date": stats.YearToDateSummary(athleteStats),
			"weekly":       stats.WeeklyRollups(activities),
			"monthly":      stats.MonthlyRollups(activities),
			"summary":      stats.Summarize(activities, time.Now()),
		})
	})
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
