package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/noticeboard-api/api"
	"github.com/sahilchouksey/noticeboard-api/database"
	"github.com/sahilchouksey/noticeboard-api/handlers"
	auth_handlers "github.com/sahilchouksey/noticeboard-api/handlers/auth"
	course_handlers "github.com/sahilchouksey/noticeboard-api/handlers/course"
	dashboard_handlers "github.com/sahilchouksey/noticeboard-api/handlers/dashboard"
	notice_handlers "github.com/sahilchouksey/noticeboard-api/handlers/notice"
	user_handlers "github.com/sahilchouksey/noticeboard-api/handlers/user"
	"github.com/sahilchouksey/noticeboard-api/services"
	"github.com/sahilchouksey/noticeboard-api/utils"
	"github.com/sahilchouksey/noticeboard-api/utils/auth"
	"github.com/sahilchouksey/noticeboard-api/utils/middleware"
)

// Dependencies are the collaborators built at startup. The optional ones
// are nil when their backing service is not configured.
type Dependencies struct {
	JWTManager      *auth.JWTManager
	DefaultPassword string
	SecureCookies   bool
	Security        middleware.SecurityConfig

	BruteForceProtection *middleware.BruteForceProtection
	RosterArchiver       services.RosterArchiver
	Mailer               services.WelcomeMailer
}

func SetupRoutes(app *fiber.App, store database.Storage, deps Dependencies) {
	db := store.GetDB()

	// Services
	courseService := services.NewCourseService(db)
	membershipService := services.NewMembershipService(db)
	noticeService := services.NewNoticeService(db)
	dashboardService := services.NewDashboardService(db)
	userService := services.NewUserService(db)
	rosterService := services.NewRosterService(db, deps.DefaultPassword, deps.RosterArchiver, deps.Mailer)

	// Handlers
	authMiddleware := middleware.NewAuthMiddleware(deps.JWTManager)
	authHandler := auth_handlers.NewAuthHandler(db, deps.JWTManager, deps.BruteForceProtection, deps.SecureCookies)
	courseHandler := course_handlers.NewCourseHandler(courseService, membershipService, noticeService, rosterService)
	noticeHandler := notice_handlers.NewNoticeHandler(noticeService)
	dashboardHandler := dashboard_handlers.NewDashboardHandler(dashboardService)
	userHandler := user_handlers.NewUserHandler(userService)

	middleware.SetupSecurity(app, deps.Security)

	// let queued welcome emails go out before the process exits
	app.Hooks().OnShutdown(func() error {
		rosterService.WaitForMail()
		return nil
	})

	// Health check endpoint (public)
	app.Get("/health", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	apiGroup := app.Group("/api")

	requireAuth := authMiddleware.Required()
	adminOnly := []fiber.Handler{requireAuth, authMiddleware.RequireAdmin()}
	instructorOnly := []fiber.Handler{requireAuth, authMiddleware.RequireInstructor()}

	// Auth routes
	authGroup := apiGroup.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	if deps.BruteForceProtection != nil {
		authGroup.Post("/login", deps.BruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}
	authGroup.Get("/profile", requireAuth, authHandler.GetProfile)
	authGroup.Get("/admin-only", with(adminOnly, authHandler.AdminOnly)...)

	// Course routes. Literal paths are registered before /:id.
	courses := apiGroup.Group("/courses")
	courses.Get("/instructor/details", with(instructorOnly, courseHandler.GetInstructorCourseDetails)...)
	courses.Post("/instructor", with(adminOnly, courseHandler.SetInstructors)...)
	courses.Delete("/instructor", with(adminOnly, courseHandler.RemoveInstructors)...)
	courses.Post("/join", with(instructorOnly, courseHandler.JoinCourse)...)
	courses.Post("/upload-teachers", with(adminOnly, courseHandler.UploadTeachers)...)
	courses.Get("/", courseHandler.ListCourses)
	courses.Get("/:id", courseHandler.GetCourse)
	courses.Post("/", with(adminOnly, courseHandler.CreateCourse)...)
	courses.Put("/:id", with(adminOnly, courseHandler.UpdateCourse)...)
	courses.Delete("/:id", with(adminOnly, courseHandler.DeleteCourse)...)

	// User routes
	apiGroup.Get("/users", with(adminOnly, userHandler.ListUsers)...)

	// Notice routes
	notices := apiGroup.Group("/notices")
	notices.Get("/admin", with(adminOnly, noticeHandler.ListAllNotices)...)
	notices.Post("/admin/:courseId/new", with(adminOnly, noticeHandler.CreateNotice)...)
	notices.Get("/instructor/noticeboards", with(instructorOnly, noticeHandler.GetInstructorNoticeBoards)...)
	notices.Get("/instructor/courses", with(instructorOnly, noticeHandler.GetInstructorCourseNotices)...)
	notices.Get("/unread-count", requireAuth, noticeHandler.GetUnreadCount)
	notices.Get("/:courseId", requireAuth, noticeHandler.ListCourseNotices)
	notices.Get("/:courseId/:noticeId", requireAuth, noticeHandler.GetNoticeDetails)
	notices.Post("/:noticeId/reply", requireAuth, noticeHandler.AddResponse)
	notices.Post("/:noticeId/view", requireAuth, noticeHandler.MarkViewed)

	// Dashboard routes
	apiGroup.Get("/dashboard/admin/stats", with(adminOnly, dashboardHandler.GetAdminStats)...)

	app.Use(api.NotFound)
}

// with appends the route handler to a middleware chain
func with(chain []fiber.Handler, h fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(chain)+1)
	out = append(out, chain...)
	return append(out, h)
}
