package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/instructor-directory-api/internal/handler"
	"github.com/noah-isme/instructor-directory-api/internal/middleware"
	"github.com/noah-isme/instructor-directory-api/internal/models"
)

type routeDeps struct {
	instructors *handler.InstructorHandler
	auth        *handler.AuthHandler
	settings    *handler.SettingsHandler
	tokens      middleware.TokenValidator
	audit       *zap.Logger
}

func registerRoutes(api *gin.RouterGroup, deps routeDeps) {
	auth := middleware.JWT(deps.tokens)
	admin := middleware.RequireRoles(models.RoleAdmin)
	selfOrAdmin := middleware.RequireSelfOrRoles("fino", models.RoleAdmin)
	audit := func(action string) gin.HandlerFunc { return middleware.Audit(deps.audit, action) }

	api.POST("/auth/login", deps.auth.Login)

	instructors := api.Group("/instructors")
	instructors.GET("", deps.instructors.List)
	instructors.GET("/search/closest", deps.instructors.Closest)
	instructors.GET("/search/area", deps.instructors.Area)
	instructors.GET("/all", auth, admin, deps.instructors.ListAll)
	instructors.GET("/export", auth, admin, deps.instructors.Export)
	instructors.POST("", auth, admin, audit("instructor.register"), deps.instructors.Register)
	instructors.POST("/priority/sweep", auth, admin, audit("instructor.priority_sweep"), deps.instructors.SweepPriorities)
	instructors.GET("/:fino", deps.instructors.Get)
	instructors.GET("/:fino/testimonials", deps.instructors.Testimonials)
	instructors.PUT("/:fino", auth, admin, audit("instructor.update"), deps.instructors.Update)
	instructors.POST("/:fino/priority", auth, admin, audit("instructor.priority"), deps.instructors.AddPriority)
	instructors.PUT("/:fino/profile", auth, selfOrAdmin, audit("instructor.profile"), deps.instructors.UpdateProfile)
	instructors.PUT("/:fino/location", auth, selfOrAdmin, audit("instructor.location"), deps.instructors.UpdateLocation)

	settings := api.Group("/settings", auth, admin)
	settings.GET("/:key", deps.settings.Get)
	settings.PUT("/:key", audit("setting.update"), deps.settings.Update)
}
