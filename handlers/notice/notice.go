package notice

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/noticeboard-api/services"
	"github.com/sahilchouksey/noticeboard-api/utils/middleware"
	"github.com/sahilchouksey/noticeboard-api/utils/query"
	"github.com/sahilchouksey/noticeboard-api/utils/response"
	"github.com/sahilchouksey/noticeboard-api/utils/validation"
)

// NoticeHandler handles notices, replies and read state
type NoticeHandler struct {
	notices   *services.NoticeService
	validator *validation.Validator
}

// NewNoticeHandler creates a new notice handler
func NewNoticeHandler(notices *services.NoticeService) *NoticeHandler {
	return &NoticeHandler{
		notices:   notices,
		validator: validation.NewValidator(),
	}
}

// CreateNoticeRequest is the body of a new notice
type CreateNoticeRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
}

// ReplyRequest is the body of a notice reply
type ReplyRequest struct {
	Content string `json:"content" validate:"required"`
}

// ListAllNotices handles GET /api/notices/admin
func (h *NoticeHandler) ListAllNotices(c *fiber.Ctx) error {
	notices, err := h.notices.ListAll(c.UserContext())
	if err != nil {
		log.Errorw("failed to list notices", "error", err)
		return response.InternalServerError(c, "Failed to fetch notices")
	}
	return response.Success(c, fiber.Map{"notices": notices})
}

// CreateNotice handles POST /api/notices/admin/:courseId/new
func (h *NoticeHandler) CreateNotice(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	courseID, err := query.ParamID(c, "courseId")
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req CreateNoticeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Title = validation.SanitizeString(req.Title)
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.Describe(err))
	}

	notice, err := h.notices.CreateNotice(c.UserContext(), courseID, identity.ID, req.Title, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCourseNotFound):
			return response.NotFound(c, "Course not found")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		}
		log.Errorw("failed to create notice", "course", courseID, "error", err)
		return response.InternalServerError(c, "Failed to create notice")
	}
	return response.Created(c, "Notice created successfully", fiber.Map{"notice": notice})
}

// GetInstructorNoticeBoards handles GET /api/notices/instructor/noticeboards
func (h *NoticeHandler) GetInstructorNoticeBoards(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	boards, err := h.notices.InstructorNoticeBoards(c.UserContext(), identity.ID)
	if err != nil {
		log.Errorw("failed to build noticeboards", "user", identity.ID, "error", err)
		return response.InternalServerError(c, "Failed to fetch noticeboards")
	}
	return response.Success(c, fiber.Map{"noticeBoards": boards})
}

// GetInstructorCourseNotices handles GET /api/notices/instructor/courses
func (h *NoticeHandler) GetInstructorCourseNotices(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	courses, err := h.notices.InstructorCourseNotices(c.UserContext(), identity.ID)
	if err != nil {
		log.Errorw("failed to group course notices", "user", identity.ID, "error", err)
		return response.InternalServerError(c, "Failed to fetch notices")
	}
	return response.Success(c, fiber.Map{"courses": courses})
}

// GetUnreadCount handles GET /api/notices/unread-count
func (h *NoticeHandler) GetUnreadCount(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	count, err := h.notices.UnreadCount(c.UserContext(), identity.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to count unread notices")
	}
	return response.Success(c, fiber.Map{"unreadCount": count})
}

// ListCourseNotices handles GET /api/notices/:courseId
func (h *NoticeHandler) ListCourseNotices(c *fiber.Ctx) error {
	courseID, err := query.ParamID(c, "courseId")
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	notices, err := h.notices.ListCourseNotices(c.UserContext(), courseID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch notices")
	}
	return response.Success(c, fiber.Map{"notices": notices})
}

// GetNoticeDetails handles GET /api/notices/:courseId/:noticeId
func (h *NoticeHandler) GetNoticeDetails(c *fiber.Ctx) error {
	courseID, err := query.ParamID(c, "courseId")
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}
	noticeID, err := query.ParamID(c, "noticeId")
	if err != nil {
		return response.BadRequest(c, "Invalid notice ID")
	}

	notice, err := h.notices.NoticeDetails(c.UserContext(), courseID, noticeID)
	if err != nil {
		if errors.Is(err, services.ErrNoticeNotFound) {
			return response.NotFound(c, "Notice not found")
		}
		return response.InternalServerError(c, "Failed to fetch notice")
	}
	return response.Success(c, fiber.Map{"notice": notice})
}

// AddResponse handles POST /api/notices/:noticeId/reply
func (h *NoticeHandler) AddResponse(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	noticeID, err := query.ParamID(c, "noticeId")
	if err != nil {
		return response.BadRequest(c, "Invalid notice ID")
	}

	var req ReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.Describe(err))
	}

	reply, err := h.notices.AddResponse(c.UserContext(), noticeID, identity.ID, identity.IsAdmin(), req.Content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoticeNotFound):
			return response.NotFound(c, "Notice not found")
		case errors.Is(err, services.ErrNotAllowedToRespond):
			return response.Forbidden(c, "You are not assigned to this course")
		}
		log.Errorw("failed to add response", "notice", noticeID, "error", err)
		return response.InternalServerError(c, "Failed to add response")
	}
	return response.Created(c, "Response added successfully", fiber.Map{"response": reply})
}

// MarkViewed handles POST /api/notices/:noticeId/view
func (h *NoticeHandler) MarkViewed(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	noticeID, err := query.ParamID(c, "noticeId")
	if err != nil {
		return response.BadRequest(c, "Invalid notice ID")
	}

	if err := h.notices.MarkViewed(c.UserContext(), identity.ID, noticeID); err != nil {
		if errors.Is(err, services.ErrNoticeNotFound) {
			return response.NotFound(c, "Notice not found")
		}
		return response.InternalServerError(c, "Failed to mark notice as viewed")
	}
	return response.SuccessWithMessage(c, "Notice marked as viewed", nil)
}
