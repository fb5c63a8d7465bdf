// middleware/logger.go
package middleware

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/gofiber/fiber/v2"
)

// RequestLogger prints one colored line per request: green for 2xx/3xx,
// yellow for 4xx, red for 5xx.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		printer := color.GreenString
		switch {
		case status >= 500:
			printer = color.RedString
		case status >= 400:
			printer = color.YellowString
		}
		fmt.Fprintln(color.Output, printer("[%s] %s %s %d %v from %s",
			start.Format("2006-01-02 15:04:05"), c.Method(), c.Path(), status, time.Since(start), c.IP()))
		return err
	}
}
