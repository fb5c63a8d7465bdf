package handlers

import (
	"time"

	"project-ascend/models"
	"project-ascend/services"
	"project-ascend/utils"

	"github.com/gofiber/fiber/v2"
)

type waterRequest struct {
	AmountMl int        `json:"amount_ml"`
	LoggedAt *time.Time `json:"logged_at"`
}

type foodLogRequest struct {
	FoodName           string     `json:"food_name"`
	Brand              *string    `json:"brand"`
	ServingSize        string     `json:"serving_size"`
	CaloriesPerServing float64    `json:"calories_per_serving"`
	ProteinG           float64    `json:"protein_g"`
	CarbsG             float64    `json:"carbs_g"`
	FatG               float64    `json:"fat_g"`
	FiberG             *float64   `json:"fiber_g"`
	SugarG             *float64   `json:"sugar_g"`
	SodiumMg           *float64   `json:"sodium_mg"`
	ServingsConsumed   float64    `json:"servings_consumed"`
	MealType           string     `json:"meal_type"`
	LoggedAt           *time.Time `json:"logged_at"`
}

func (r foodLogRequest) model() models.FoodLog {
	entry := models.FoodLog{
		FoodName:           r.FoodName,
		Brand:              r.Brand,
		ServingSize:        r.ServingSize,
		CaloriesPerServing: r.CaloriesPerServing,
		ProteinG:           r.ProteinG,
		CarbsG:             r.CarbsG,
		FatG:               r.FatG,
		FiberG:             r.FiberG,
		SugarG:             r.SugarG,
		SodiumMg:           r.SodiumMg,
		ServingsConsumed:   r.ServingsConsumed,
		MealType:           r.MealType,
	}
	if r.LoggedAt != nil {
		entry.LoggedAt = *r.LoggedAt
	}
	return entry
}

func SetupNutritionRoutes(app fiber.Router, nutrition *services.NutritionService, water *services.WaterService, requireUser fiber.Handler) {
	app.Post("/nutrition/logs", requireUser, func(c *fiber.Ctx) error {
		var in foodLogRequest
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		logged, summary, err := nutrition.RecordFoodLog(c.UserContext(), currentUserID(c), in.model())
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"food_log":      logged,
			"daily_summary": summary,
		})
	})

	app.Get("/nutrition/logs", requireUser, func(c *fiber.Ctx) error {
		var day *time.Time
		if raw := c.Query("date"); raw != "" {
			d, err := utils.ParseDate(raw)
			if err != nil {
				return badRequest(c, "date must be YYYY-MM-DD", err)
			}
			day = &d
		}
		logs, err := nutrition.ListFoodLogs(c.UserContext(), currentUserID(c), day)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(logs)
	})

	app.Get("/nutrition/daily-summary", requireUser, func(c *fiber.Ctx) error {
		day := time.Now()
		if raw := c.Query("date"); raw != "" {
			d, err := utils.ParseDate(raw)
			if err != nil {
				return badRequest(c, "date must be YYYY-MM-DD", err)
			}
			day = d
		}
		summary, err := nutrition.DailySummary(c.UserContext(), currentUserID(c), day)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(summary)
	})

	analytics := app.Group("/api/nutrition/analytics")

	analytics.Get("/history", requireUser, func(c *fiber.Ctx) error {
		history, err := nutrition.History(c.UserContext(), currentUserID(c), queryInt(c, "limit", 30), queryInt(c, "offset", 0))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(history)
	})

	analytics.Get("/weekly", requireUser, func(c *fiber.Ctx) error {
		days, weeks, err := nutrition.Weekly(c.UserContext(), currentUserID(c), queryInt(c, "weeks", 4))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"data": days, "weeks": weeks})
	})

	analytics.Get("/water", requireUser, func(c *fiber.Ctx) error {
		day, err := water.Today(c.UserContext(), currentUserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(day)
	})

	analytics.Post("/water", requireUser, func(c *fiber.Ctx) error {
		var in waterRequest
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		var at time.Time
		if in.LoggedAt != nil {
			at = *in.LoggedAt
		}
		entry, err := water.Log(c.UserContext(), currentUserID(c), in.AmountMl, at)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	})
}
