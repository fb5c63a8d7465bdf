package handlers

import (
	"project-ascend/services"

	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// SetupAuthRoutes wires registration, login and the caller's own profile.
func SetupAuthRoutes(app fiber.Router, users *services.UserService, requireUser fiber.Handler) {
	app.Post("/auth/register", func(c *fiber.Ctx) error {
		var in services.RegisterInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		session, err := users.Register(c.UserContext(), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(session)
	})

	// Accepts JSON or an OAuth2 password form, where "username" carries the email.
	app.Post("/auth/login", func(c *fiber.Ctx) error {
		var in loginRequest
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		email := in.Email
		if email == "" {
			email = in.Username
		}
		session, err := users.Login(c.UserContext(), email, in.Password)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(session)
	})

	app.Get("/auth/me", requireUser, func(c *fiber.Ctx) error {
		user, err := users.Get(c.UserContext(), currentUserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(user)
	})

	app.Put("/users/me", requireUser, func(c *fiber.Ctx) error {
		var upd services.ProfileUpdate
		if err := c.BodyParser(&upd); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		user, err := users.UpdateProfile(c.UserContext(), currentUserID(c), upd)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(user)
	})
}
