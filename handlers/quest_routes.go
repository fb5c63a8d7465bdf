package handlers

import (
	"project-ascend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupQuestRoutes(app fiber.Router, quests *services.QuestService, requireUser fiber.Handler) {
	app.Get("/quests", requireUser, func(c *fiber.Ctx) error {
		list, err := quests.List(c.UserContext(), currentUserID(c), c.Query("status"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	})

	app.Post("/quests", requireUser, func(c *fiber.Ctx) error {
		var in services.CreateQuestInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		q, err := quests.Create(c.UserContext(), currentUserID(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(q)
	})

	app.Put("/quests/:id", requireUser, func(c *fiber.Ctx) error {
		var upd services.QuestUpdate
		if err := c.BodyParser(&upd); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		q, err := quests.Update(c.UserContext(), currentUserID(c), c.Params("id"), upd)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(q)
	})

	app.Post("/quests/:id/complete", requireUser, func(c *fiber.Ctx) error {
		q, err := quests.Complete(c.UserContext(), currentUserID(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(q)
	})

	app.Post("/generate-quest", requireUser, func(c *fiber.Ctx) error {
		var req services.QuestRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return badRequest(c, "invalid request body", err)
			}
		}
		q, err := quests.Generate(c.UserContext(), currentUserID(c), req)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(q)
	})
}
