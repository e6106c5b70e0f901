package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appcatalog "github.com/jhoicas/catalogo-api/internal/application/catalog"
	"github.com/jhoicas/catalogo-api/pkg/jwt"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ImportUC  *appcatalog.ImportUseCase
	DeleteUC  *appcatalog.DeleteUseCase
	QueryUC   *appcatalog.QueryUseCase
	JWTSecret string // vacío = escrituras sin autenticación
	Logger    *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	h := NewUnitHandler(deps.ImportUC, deps.DeleteUC, deps.QueryUC, validator.New(), deps.Logger)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Escrituras (protegidas con Bearer Token si hay JWT_SECRET)
	importChain := []fiber.Handler{}
	deleteChain := []fiber.Handler{}
	if deps.JWTSecret != "" {
		importChain = append(importChain, AuthMiddleware(deps.JWTSecret), RequireRole(jwt.RoleAdmin, jwt.RoleImporter))
		deleteChain = append(deleteChain, AuthMiddleware(deps.JWTSecret), RequireRole(jwt.RoleAdmin))
	}
	app.Post("/imports", append(importChain, h.Import)...)
	app.Delete("/delete/:id", append(deleteChain, h.Delete)...)

	// Lecturas (públicas)
	app.Get("/nodes/:id", h.GetNode)
	app.Get("/sales", h.Sales)
	app.Get("/node/:id/statistics", h.Statistics)
}
