package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const apiVersion = "1.0.0"

func SetupHealthRoutes(app fiber.Router, db *gorm.DB) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Project Ascend API is running!", "version": apiVersion})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "unhealthy",
				"version":  apiVersion,
				"database": "disconnected",
				"cause":    err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "healthy", "version": apiVersion, "database": "connected"})
	})
}
