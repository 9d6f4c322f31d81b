package course

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/noticeboard-api/services"
	"github.com/sahilchouksey/noticeboard-api/utils/middleware"
	"github.com/sahilchouksey/noticeboard-api/utils/response"
)

// InstructorsRequest names a course and a set of instructors. Older clients
// send the ids as instructorIds; both lists are honored.
type InstructorsRequest struct {
	CourseID      uint   `json:"courseId" validate:"required,gt=0"`
	UserIDs       []uint `json:"userIds" validate:"dive,gt=0"`
	InstructorIDs []uint `json:"instructorIds,omitempty" validate:"dive,gt=0"`
}

// IDs returns the union of both id lists in request order
func (r *InstructorsRequest) IDs() []uint {
	ids := make([]uint, 0, len(r.UserIDs)+len(r.InstructorIDs))
	ids = append(ids, r.UserIDs...)
	return append(ids, r.InstructorIDs...)
}

// RemoveInstructorsRequest names the assignments to delete
type RemoveInstructorsRequest struct {
	InstructorsRequest
}

// JoinRequest is an instructor's self-enrollment by course code
type JoinRequest struct {
	Code string `json:"code" validate:"required"`
}

// SetInstructors handles POST /api/courses/instructor. The course's
// assignments are replaced by userIds in one transaction.
func (h *CourseHandler) SetInstructors(c *fiber.Ctx) error {
	var req InstructorsRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	result, err := h.membership.SetInstructors(c.UserContext(), req.CourseID, req.IDs())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCourseNotFound):
			return response.NotFound(c, "Course not found")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "One or more instructors not found")
		}
		log.Errorw("failed to set instructors", "course", req.CourseID, "error", err)
		return response.InternalServerError(c, "Failed to update instructors")
	}
	return response.SuccessWithMessage(c, "Instructors updated successfully", result)
}

// RemoveInstructors handles DELETE /api/courses/instructor
func (h *CourseHandler) RemoveInstructors(c *fiber.Ctx) error {
	var req RemoveInstructorsRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	ids := req.IDs()
	if len(ids) == 0 {
		return response.ValidationError(c, "userIds must contain at least one id")
	}

	if err := h.membership.RemoveInstructors(c.UserContext(), req.CourseID, ids); err != nil {
		if errors.Is(err, services.ErrAssignmentNotFound) {
			return response.NotFound(c, "Instructor is not assigned to this course")
		}
		log.Errorw("failed to remove instructors", "course", req.CourseID, "error", err)
		return response.InternalServerError(c, "Failed to remove instructors")
	}
	return response.NoContent(c)
}

// JoinCourse handles POST /api/courses/join
func (h *CourseHandler) JoinCourse(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req JoinRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	course, err := h.membership.JoinByCode(c.UserContext(), identity.ID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCourseNotFound):
			return response.NotFound(c, "Course not found")
		case errors.Is(err, services.ErrAlreadyAssigned):
			return response.Conflict(c, "Already assigned to this course", response.CodeAlreadyAssigned)
		}
		return response.InternalServerError(c, "Failed to join course")
	}
	return response.SuccessWithMessage(c, "Joined course successfully", fiber.Map{"course": course})
}

// GetInstructorCourseDetails handles GET /api/courses/instructor/details
func (h *CourseHandler) GetInstructorCourseDetails(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	courses, err := h.notices.InstructorCourseDetails(c.UserContext(), identity.ID)
	if err != nil {
		log.Errorw("failed to load instructor courses", "user", identity.ID, "error", err)
		return response.InternalServerError(c, "Failed to fetch courses")
	}
	return response.Success(c, fiber.Map{"courses": courses})
}
