package course

import (
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/noticeboard-api/services"
	"github.com/sahilchouksey/noticeboard-api/utils/middleware"
	"github.com/sahilchouksey/noticeboard-api/utils/response"
)

// MaxRosterSize caps uploaded roster files
const MaxRosterSize = 5 * 1024 * 1024

var allowedRosterTypes = map[string]bool{
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"text/csv": true,
}

// UploadTeachers handles POST /api/courses/upload-teachers. The multipart
// field "file" holds an XLSX or CSV roster with email, name and courseCode
// columns.
func (h *CourseHandler) UploadTeachers(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "No file uploaded")
	}
	if fh.Size > MaxRosterSize {
		return response.BadRequest(c, "File exceeds the 5MB limit")
	}

	contentType := strings.ToLower(strings.TrimSpace(strings.SplitN(fh.Header.Get(fiber.HeaderContentType), ";", 2)[0]))
	if !allowedRosterTypes[contentType] {
		return response.BadRequest(c, "Only Excel and CSV files are allowed")
	}

	f, err := fh.Open()
	if err != nil {
		return response.BadRequest(c, "Failed to read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxRosterSize+1))
	if err != nil {
		return response.BadRequest(c, "Failed to read uploaded file")
	}
	if len(data) > MaxRosterSize {
		return response.BadRequest(c, "File exceeds the 5MB limit")
	}

	result, importID, err := h.roster.Import(c.UserContext(), services.RosterUpload{
		UploadedByID: identity.ID,
		FileName:     fh.Filename,
		ContentType:  contentType,
		Data:         data,
	})
	if err != nil {
		var parseErr *services.RosterParseError
		switch {
		case errors.As(err, &parseErr):
			return response.BadRequest(c, parseErr.Error())
		case errors.Is(err, services.ErrDefaultPasswordUnset):
			log.Error("roster upload rejected: DEFAULT_PASSWORD is not set")
			return response.InternalServerError(c, "Bulk import is not configured")
		}
		log.Errorw("roster import failed", "file", fh.Filename, "error", err)
		return response.InternalServerError(c, "Failed to process file")
	}

	return response.SuccessWithMessage(c, "File processed", fiber.Map{
		"results":  result,
		"importId": importID,
	})
}
