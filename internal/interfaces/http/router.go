package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/prospect-board/internal/application/capability"
	"github.com/tu-usuario/prospect-board/internal/infrastructure/sqlite"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Users      *sqlite.UserRepo
	Prospects  *sqlite.ProspectRepo
	Projects   *sqlite.ProjectRepo
	Subtasks   *sqlite.SubtaskRepo
	JWTSecret  string
	JWTIssuer  string
	JWTMinutes int
}

// Router registra las rutas de la API. Los permisos por rol salen de la misma
// tabla de capacidades que usa el cliente; aquí es donde cuentan de verdad.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.Users, deps.JWTSecret, deps.JWTIssuer, deps.JWTMinutes)
	api.Group("/auth").Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Prospectos. El cambio de status comparte ruta con la edición; los
	// permisos finos (REAL_LOSS) se resuelven dentro del handler.
	prospects := protected.Group("/prospects")
	prospectHandler := NewProspectHandler(deps.Prospects)
	prospects.Get("/", prospectHandler.List)
	prospects.Post("/", RequireRole(capability.AllowedRoles(capability.ActionCreateProspect)...), prospectHandler.Create)
	prospects.Get("/:no_project", prospectHandler.Get)
	prospects.Put("/:no_project", prospectHandler.Update)

	// Proyectos. /reorder va antes de /:id para que Fiber no lo capture
	// como parámetro.
	projects := protected.Group("/projects")
	projectHandler := NewProjectHandler(deps.Projects)
	subtaskHandler := NewSubtaskHandler(deps.Subtasks)
	projects.Get("/", projectHandler.List)
	projects.Put("/reorder", RequireRole(capability.AllowedRoles(capability.ActionReorderProjects)...), projectHandler.Reorder)

	// Subtareas (de proyectos y de prospectos por igual).
	subtasks := projects.Group("/subtasks")
	subtasks.Post("/", RequireRole(capability.AllowedRoles(capability.ActionCreateSubtask)...), subtaskHandler.Create)
	subtasks.Get("/:id", subtaskHandler.Get)
	subtasks.Put("/:id", RequireRole(capability.AllowedRoles(capability.ActionEditSubtask)...), subtaskHandler.Update)
	subtasks.Delete("/:id", RequireRole(capability.AllowedRoles(capability.ActionDeleteSubtask)...), subtaskHandler.Delete)

	projects.Get("/:id", projectHandler.Get)
	projects.Put("/:id", projectHandler.Update)

	// Métricas del dashboard
	protected.Get("/stats", projectHandler.Stats)
}
