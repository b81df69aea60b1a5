package serverutils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const credentialLocal = "credential"

// CredentialMiddleware captures the optional bearer credential. It is forwarded
// to the task API as-is; this service never verifies it.
func CredentialMiddleware(ctx *fiber.Ctx) error {
	if cred := ExtractBearer(ctx.Get(fiber.HeaderAuthorization)); cred != "" {
		ctx.Locals(credentialLocal, cred)
	}
	return ctx.Next()
}

func Credential(ctx *fiber.Ctx) string {
	cred, _ := ctx.Locals(credentialLocal).(string)
	return cred
}

func ExtractBearer(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
