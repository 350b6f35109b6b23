package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/language-school-api/internal/handler"
	"github.com/noah-isme/language-school-api/internal/middleware"
	"github.com/noah-isme/language-school-api/internal/models"
)

// RouteConfig carries the handlers and guards the HTTP surface is built from.
type RouteConfig struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Classes    *handler.ClassHandler
	Selections *handler.SelectionHandler
	Enrollment *handler.EnrollmentHandler
	Payments   *handler.PaymentHandler
	Ops        *handler.MetricsHandler

	Tokens middleware.TokenValidator
	Roles  middleware.RoleChecker

	MetricsEnabled bool
	DocsEnabled    bool
}

// RegisterRoutes mounts every endpoint on r.
func RegisterRoutes(r *gin.Engine, cfg RouteConfig) {
	authn := middleware.JWT(cfg.Tokens)
	instructor := middleware.RequireRole(cfg.Roles, models.RoleInstructor)
	admin := middleware.RequireRole(cfg.Roles, models.RoleAdmin)
	selfParam := middleware.RequireSelf(middleware.FromParam("email"))

	r.GET("/", cfg.Ops.Root)
	r.GET("/health", cfg.Ops.Health)
	r.GET("/ready", cfg.Ops.Ready)
	if cfg.MetricsEnabled {
		r.GET("/metrics", cfg.Ops.Prometheus)
	}
	if cfg.DocsEnabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.POST("/jwt", cfg.Auth.IssueToken)

	// students and instructors
	r.PUT("/students", cfg.Users.UpsertStudent)
	r.POST("/students", cfg.Users.CreateStudent)
	r.GET("/students/:email", cfg.Users.GetStudent)
	r.GET("/instructors", cfg.Users.ListInstructors)

	// user administration
	r.GET("/users", authn, admin, cfg.Users.ListUsers)
	r.PATCH("/users/:email", authn, admin, cfg.Users.SetRole)
	r.GET("/users/role/:email", authn, selfParam, cfg.Users.RoleStatus)

	// class catalog
	r.GET("/classes", cfg.Classes.List)
	r.POST("/add_class", authn, instructor, cfg.Classes.Create)
	r.GET("/classes/:email", authn, instructor, selfParam, cfg.Classes.ListByInstructor)
	r.GET("/myClasses/:id", authn, instructor, cfg.Classes.Get)
	r.PATCH("/classes/:id", authn, admin, cfg.Classes.SetStatus)
	r.PATCH("/feedback/classes/:id", authn, admin, cfg.Classes.SetFeedback)
	r.PUT("/classes/:id", authn, cfg.Classes.Update)
	r.DELETE("/classes/:id", cfg.Classes.Delete)

	// selections
	r.POST("/select_classes", authn, cfg.Selections.Create)
	r.GET("/selectedItems/:email", authn, selfParam, cfg.Selections.List)
	r.DELETE("/selectedItems/:id", cfg.Selections.Delete)

	// payments and enrollment
	r.POST("/create_payment_intent", cfg.Payments.CreateIntent)
	r.POST("/payment", authn, cfg.Enrollment.Pay)
	r.GET("/enrolledClasses/:email", authn, selfParam, cfg.Enrollment.ListEnrollments)
	r.GET("/payment_history/:email", authn, selfParam, cfg.Enrollment.PaymentHistory)
	r.GET("/payment_history/:email/export", authn, selfParam, cfg.Enrollment.ExportPaymentHistory)
}
