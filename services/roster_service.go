package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/noticeboard-api/database"
	"github.com/sahilchouksey/noticeboard-api/model"
	"github.com/sahilchouksey/noticeboard-api/utils/auth"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrDefaultPasswordUnset is returned when imports are attempted without DEFAULT_PASSWORD
var ErrDefaultPasswordUnset = errors.New("DEFAULT_PASSWORD environment variable is not set")

// RosterArchiver keeps a copy of an uploaded roster and returns where it went
type RosterArchiver interface {
	Archive(ctx context.Context, fileName string, data []byte, contentType string) (string, error)
}

// WelcomeMailer notifies instructors created by an import
type WelcomeMailer interface {
	SendWelcomeEmail(toEmail, userName, courseName string) error
}

// RosterImportResult summarizes an import. Errors keeps row order.
type RosterImportResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// welcome is a pending welcome email for an account created by an import
type welcome struct {
	email, name, course string
}

func (r *RosterImportResult) fail(msg string) {
	r.Failed++
	r.Errors = append(r.Errors, msg)
}

// RosterUpload is one uploaded roster file
type RosterUpload struct {
	UploadedByID uint
	FileName     string
	ContentType  string
	Data         []byte
}

// RosterService bulk-assigns instructors to courses from a spreadsheet
type RosterService struct {
	db              *gorm.DB
	membership      *MembershipService
	archiver        RosterArchiver
	mailer          WelcomeMailer
	defaultPassword string
	mailing         sync.WaitGroup
}

// NewRosterService creates a roster service. archiver and mailer may be nil.
func NewRosterService(db *gorm.DB, defaultPassword string, archiver RosterArchiver, mailer WelcomeMailer) *RosterService {
	return &RosterService{
		db:              db,
		membership:      NewMembershipService(db),
		archiver:        archiver,
		mailer:          mailer,
		defaultPassword: defaultPassword,
	}
}

// Import processes every row independently; a failing row is recorded and
// the next one is processed. The returned id is the audit record.
func (s *RosterService) Import(ctx context.Context, upload RosterUpload) (*RosterImportResult, uint, error) {
	if s.defaultPassword == "" {
		return nil, 0, ErrDefaultPasswordUnset
	}

	rows, err := ParseRoster(upload.Data)
	if err != nil {
		return nil, 0, err
	}

	passwordHash, err := auth.HashPassword(s.defaultPassword)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to hash default password: %w", err)
	}

	archiveKey := ""
	if s.archiver != nil {
		archiveKey, err = s.archiver.Archive(ctx, upload.FileName, upload.Data, upload.ContentType)
		if err != nil {
			log.Warnw("roster archive failed, continuing without a copy", "file", upload.FileName, "error", err)
			archiveKey = ""
		}
	}

	result := &RosterImportResult{Errors: make([]string, 0)}
	var welcomes []welcome
	for _, row := range rows {
		if w := s.importRow(ctx, row, passwordHash, result); w != nil {
			welcomes = append(welcomes, *w)
		}
	}

	importID, err := s.record(ctx, upload, archiveKey, result)
	if err != nil {
		return nil, 0, err
	}
	s.sendWelcomesAsync(welcomes)

	log.Infof("roster %q imported by user %d: %d succeeded, %d failed",
		upload.FileName, upload.UploadedByID, result.Success, result.Failed)
	return result, importID, nil
}

// importRow returns the welcome email owed to a newly created account, if any
func (s *RosterService) importRow(ctx context.Context, row RosterRow, passwordHash string, result *RosterImportResult) *welcome {
	if row.Email == "" || row.CourseCode == "" {
		result.fail(fmt.Sprintf("Missing email or course code for row: %s", row))
		return nil
	}

	var course model.Course
	err := s.db.WithContext(ctx).
		Where("code = ? AND is_deleted = ?", row.CourseCode, false).
		First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		result.fail(fmt.Sprintf("Course not found with code: %s", row.CourseCode))
		return nil
	}
	if err != nil {
		result.fail(fmt.Sprintf("Error processing %s: %s", row.Email, err))
		return nil
	}

	name := row.Name
	if name == "" {
		name = strings.SplitN(row.Email, "@", 2)[0]
	}

	user, created, err := s.findOrCreateInstructor(ctx, row.Email, name, passwordHash)
	if err != nil {
		result.fail(fmt.Sprintf("Error processing %s: %s", row.Email, err))
		return nil
	}

	if err := s.membership.Assign(ctx, course.ID, user.ID); err != nil {
		result.fail(fmt.Sprintf("Error processing %s: %s", row.Email, err))
		return nil
	}

	result.Success++

	if !created {
		return nil
	}
	return &welcome{email: user.Email, name: user.Name, course: course.Name}
}

// sendWelcomesAsync mails the new accounts in the background. Failures are
// logged and never reach the import result.
func (s *RosterService) sendWelcomesAsync(welcomes []welcome) {
	if s.mailer == nil || len(welcomes) == 0 {
		return
	}
	s.mailing.Add(1)
	go func() {
		defer s.mailing.Done()
		for _, w := range welcomes {
			if err := s.mailer.SendWelcomeEmail(w.email, w.name, w.course); err != nil {
				log.Warnw("welcome email not sent", "email", w.email, "error", err)
			}
		}
		log.Infof("sent welcome emails to %d new instructors", len(welcomes))
	}()
}

// WaitForMail blocks until welcome emails queued by earlier imports are out
func (s *RosterService) WaitForMail() {
	s.mailing.Wait()
}

// findOrCreateInstructor reuses the account holding email or creates an
// instructor account with the default password
func (s *RosterService) findOrCreateInstructor(ctx context.Context, email, name, passwordHash string) (*model.User, bool, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	user = model.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Gender:       model.GenderMale,
		Role:         model.RoleInstructor,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if !database.IsUniqueViolation(err) {
			return nil, false, err
		}
		// created concurrently by another request
		if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
			return nil, false, err
		}
		return &user, false, nil
	}
	return &user, true, nil
}

func (s *RosterService) record(ctx context.Context, upload RosterUpload, archiveKey string, result *RosterImportResult) (uint, error) {
	errs, err := json.Marshal(result.Errors)
	if err != nil {
		return 0, fmt.Errorf("failed to encode import errors: %w", err)
	}

	audit := &model.RosterImport{
		UploadedByID: upload.UploadedByID,
		FileName:     upload.FileName,
		ArchiveURL:   archiveKey,
		Succeeded:    result.Success,
		Failed:       result.Failed,
		Errors:       datatypes.JSON(errs),
	}
	if err := s.db.WithContext(ctx).Create(audit).Error; err != nil {
		return 0, fmt.Errorf("failed to record roster import: %w", err)
	}
	return audit.ID, nil
}
