package course

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/noticeboard-api/services"
	"github.com/sahilchouksey/noticeboard-api/utils/query"
	"github.com/sahilchouksey/noticeboard-api/utils/response"
	"github.com/sahilchouksey/noticeboard-api/utils/validation"
)

// CourseHandler handles course-related requests
type CourseHandler struct {
	courses    *services.CourseService
	membership *services.MembershipService
	notices    *services.NoticeService
	roster     *services.RosterService
	validator  *validation.Validator
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(
	courses *services.CourseService,
	membership *services.MembershipService,
	notices *services.NoticeService,
	roster *services.RosterService,
) *CourseHandler {
	return &CourseHandler{
		courses:    courses,
		membership: membership,
		notices:    notices,
		roster:     roster,
		validator:  validation.NewValidator(),
	}
}

// CourseRequest is the body of course create and update
type CourseRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"omitempty,max=5000"`
}

// ListCourses handles GET /api/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	courses, err := h.courses.ListCourses(c.UserContext())
	if err != nil {
		log.Errorw("failed to list courses", "error", err)
		return response.InternalServerError(c, "Failed to fetch courses")
	}
	return response.Success(c, fiber.Map{"courses": courses})
}

// GetCourse handles GET /api/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id, err := query.ParamID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	course, err := h.courses.GetCourse(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}
	return response.Success(c, fiber.Map{"course": course})
}

// CreateCourse handles POST /api/courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	var req CourseRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	course, err := h.courses.CreateCourse(c.UserContext(), req.Name, req.Description)
	if err != nil {
		log.Errorw("failed to create course", "name", req.Name, "error", err)
		return response.InternalServerError(c, "Failed to create course")
	}
	return response.Created(c, "Course created successfully", fiber.Map{"course": course})
}

// UpdateCourse handles PUT /api/courses/:id
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	id, err := query.ParamID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req CourseRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	course, err := h.courses.UpdateCourse(c.UserContext(), id, req.Name, req.Description)
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to update course")
	}
	return response.SuccessWithMessage(c, "Course updated successfully", fiber.Map{"course": course})
}

// DeleteCourse handles DELETE /api/courses/:id
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	id, err := query.ParamID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	if err := h.courses.DeleteCourse(c.UserContext(), id); err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to delete course")
	}
	return response.NoContent(c)
}

// bind decodes and validates a JSON body. When it reports false the 400 has
// already been written and err is the result of writing it.
func (h *CourseHandler) bind(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return false, response.ValidationError(c, validation.Describe(err))
	}
	return true, nil
}
