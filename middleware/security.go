package middleware

import "github.com/gofiber/fiber/v2"

// pagePolicy allows only our own stylesheet and forms; repository pages link
// out to GitHub but never embed it.
const pagePolicy = "default-src 'self'; script-src 'none'; style-src 'self'; img-src 'self' data:; form-action 'self'; base-uri 'none'; frame-ancestors 'none'"

// Security sets response hardening headers. With hsts set, browsers are told
// to keep using https for a year.
func Security(hsts bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
		c.Set(fiber.HeaderXFrameOptions, "DENY")
		c.Set(fiber.HeaderReferrerPolicy, "same-origin")
		c.Set(fiber.HeaderContentSecurityPolicy, pagePolicy)
		if hsts {
			c.Set(fiber.HeaderStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		}
		return c.Next()
	}
}
