// handlers/progression_routes.go
package handlers

import (
	"project-ascend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressionRoutes(app fiber.Router, progressionService *services.ProgressionService, requireUser fiber.Handler) {
	// Stats are rebuilt from workouts and completed quests on every call.
	app.Get("/users/me/stats", requireUser, func(c *fiber.Ctx) error {
		stats, err := progressionService.ComputeStats(c.UserContext(), currentUserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(stats)
	})
}
