package handlers

import (
	"project-ascend/models"
	"project-ascend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupCatalogRoutes(app fiber.Router, catalog *services.CatalogService, requireUser, requireAdmin fiber.Handler) {
	// ---------- exercises (public) ----------
	app.Get("/exercises", func(c *fiber.Ctx) error {
		list, err := catalog.ListExercises(c.UserContext(), services.ExerciseFilter{
			Search:      c.Query("search"),
			MuscleGroup: c.Query("muscle_group"),
			Discipline:  c.Query("discipline"),
			Equipment:   c.Query("equipment"),
			Difficulty:  c.Query("difficulty"),
		})
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	})

	app.Get("/exercises/:id", func(c *fiber.Ctx) error {
		e, err := catalog.GetExercise(c.UserContext(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(e)
	})

	// ---------- food database (public) ----------
	foods := app.Group("/api/food-database")

	foods.Get("/search", func(c *fiber.Ctx) error {
		q := c.Query("q")
		list, err := catalog.SearchFoods(c.UserContext(), q, queryInt(c, "limit", 20))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"data": list, "query": q, "total": len(list)})
	})

	foods.Get("/categories", func(c *fiber.Ctx) error {
		cats, err := catalog.FoodCategories(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"data": cats})
	})

	foods.Get("/popular", func(c *fiber.Ctx) error {
		list, err := catalog.PopularFoods(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"data": list})
	})

	// ---------- meal templates ----------
	// Static paths are registered before /:id so they are not captured as ids.
	templates := app.Group("/api/meal-templates")

	templates.Get("/popular", func(c *fiber.Ctx) error {
		list, err := catalog.PopularMealTemplates(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"data": list})
	})

	templates.Get("/categories", func(c *fiber.Ctx) error {
		cats, err := catalog.MealTemplateCategories(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"data": cats})
	})

	templates.Get("/", requireUser, func(c *fiber.Ctx) error {
		f := services.MealTemplateFilter{
			MealType: c.Query("meal_type"),
			Category: c.Query("category"),
			Limit:    queryInt(c, "limit", 20),
		}
		list, err := catalog.ListMealTemplates(c.UserContext(), currentUserID(c), f)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"data":    list,
			"total":   len(list),
			"filters": fiber.Map{"meal_type": f.MealType, "category": f.Category},
		})
	})

	templates.Post("/", requireUser, func(c *fiber.Ctx) error {
		var in services.MealTemplateInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		t, err := catalog.CreateMealTemplate(c.UserContext(), currentUserID(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": t})
	})

	templates.Get("/:id", requireUser, func(c *fiber.Ctx) error {
		t, err := catalog.GetMealTemplate(c.UserContext(), currentUserID(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"data": t})
	})

	templates.Put("/:id", requireUser, func(c *fiber.Ctx) error {
		var upd services.MealTemplateUpdate
		if err := c.BodyParser(&upd); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		t, err := catalog.UpdateMealTemplate(c.UserContext(), currentUserID(c), c.Params("id"), upd)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"data": t})
	})

	templates.Delete("/:id", requireUser, func(c *fiber.Ctx) error {
		if err := catalog.DeleteMealTemplate(c.UserContext(), currentUserID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "meal template deleted"})
	})

	// ---------- admin ----------
	admin := app.Group("/admin", requireAdmin)

	admin.Post("/exercises", func(c *fiber.Ctx) error {
		var in services.ExerciseInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		e, created, err := catalog.UpsertExercise(c.UserContext(), in)
		if err != nil {
			return fail(c, err)
		}
		status := fiber.StatusOK
		if created {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(e)
	})

	admin.Post("/foods", func(c *fiber.Ctx) error {
		var item models.FoodItem
		if err := c.BodyParser(&item); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		created, err := catalog.CreateFood(c.UserContext(), item)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})
}
