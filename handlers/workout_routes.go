package handlers

import (
	"project-ascend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupWorkoutRoutes(app fiber.Router, workouts *services.WorkoutService, requireUser fiber.Handler) {
	app.Get("/workouts", requireUser, func(c *fiber.Ctx) error {
		list, err := workouts.List(c.UserContext(), currentUserID(c), queryInt(c, "limit", 0))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	})

	app.Post("/workouts", requireUser, func(c *fiber.Ctx) error {
		var in services.CreateWorkoutInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		w, err := workouts.Create(c.UserContext(), currentUserID(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(w)
	})
}
