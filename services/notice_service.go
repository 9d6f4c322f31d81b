package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/noticeboard-api/database"
	"github.com/sahilchouksey/noticeboard-api/model"
	"github.com/sahilchouksey/noticeboard-api/services/noticeboard"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NoticeService handles notices, their reply threads and read state
type NoticeService struct {
	db   *gorm.DB
	rows rowLoader
}

// NewNoticeService creates a new notice service
func NewNoticeService(db *gorm.DB) *NoticeService {
	return &NoticeService{db: db, rows: rowLoader{db: db}}
}

// AdminNotice is a notice listed together with its course
type AdminNotice struct {
	noticeboard.NoticeItem
	Course noticeboard.CourseRow `json:"course"`
}

// UnreadCount counts the notices in the caller's active courses that the
// caller has not opened yet
func (s *NoticeService) UnreadCount(ctx context.Context, userID uint) (int, error) {
	courseIDs, err := activeCourseIDs(ctx, s.db, userID)
	if err != nil {
		return 0, err
	}
	if len(courseIDs) == 0 {
		return 0, nil
	}

	notices, err := s.rows.noticesOfCourses(ctx, courseIDs)
	if err != nil {
		return 0, err
	}
	rows, err := s.rows.threadRows(ctx, notices)
	if err != nil {
		return 0, err
	}

	return noticeboard.UnreadCount(rows.Notices, rows.Views, userID), nil
}

// instructorRows loads everything the instructor views aggregate over
func (s *NoticeService) instructorRows(ctx context.Context, userID uint) ([]uint, noticeboard.Rows, error) {
	courseIDs, err := activeCourseIDs(ctx, s.db, userID)
	if err != nil {
		return nil, noticeboard.Rows{}, err
	}

	notices, err := s.rows.noticesOfCourses(ctx, courseIDs)
	if err != nil {
		return nil, noticeboard.Rows{}, err
	}
	rows, err := s.rows.threadRows(ctx, notices)
	if err != nil {
		return nil, noticeboard.Rows{}, err
	}
	if rows.Instructors, err = loadInstructorRows(ctx, s.db, courseIDs); err != nil {
		return nil, noticeboard.Rows{}, err
	}
	return courseIDs, rows, nil
}

// InstructorCourseNotices groups the caller's course notices by course
func (s *NoticeService) InstructorCourseNotices(ctx context.Context, userID uint) ([]noticeboard.CourseNotices, error) {
	_, rows, err := s.instructorRows(ctx, userID)
	if err != nil {
		return nil, err
	}
	return noticeboard.GroupCourseNotices(rows, userID), nil
}

// InstructorNoticeBoards returns one board per active course of the caller
func (s *NoticeService) InstructorNoticeBoards(ctx context.Context, userID uint) ([]noticeboard.NoticeBoard, error) {
	courseIDs, rows, err := s.instructorRows(ctx, userID)
	if err != nil {
		return nil, err
	}
	courses, err := s.rows.courses(ctx, courseIDs)
	if err != nil {
		return nil, err
	}
	return noticeboard.BuildNoticeBoards(courses, rows), nil
}

// InstructorCourseDetails lists, per active course, the notices the caller
// has not opened
func (s *NoticeService) InstructorCourseDetails(ctx context.Context, userID uint) ([]noticeboard.InstructorCourse, error) {
	courseIDs, rows, err := s.instructorRows(ctx, userID)
	if err != nil {
		return nil, err
	}
	courses, err := s.rows.courses(ctx, courseIDs)
	if err != nil {
		return nil, err
	}
	return noticeboard.UnviewedByCourse(courses, rows, userID), nil
}

// CreateNotice posts a notice to an active course
func (s *NoticeService) CreateNotice(ctx context.Context, courseID, postedByID uint, title, content string) (*noticeboard.NoticeItem, error) {
	if err := ensureActiveCourse(s.db.WithContext(ctx), courseID); err != nil {
		return nil, err
	}

	notice := &model.Notice{
		Title:      title,
		Content:    content,
		CourseID:   courseID,
		PostedByID: postedByID,
	}
	if err := s.db.WithContext(ctx).Create(notice).Error; err != nil {
		return nil, noticeInsertError(err)
	}

	log.Infof("notice %d posted to course %d by user %d", notice.ID, courseID, postedByID)
	return s.noticeItem(ctx, notice.ID, 0)
}

// noticeInsertError names the missing parent of a rejected notice insert.
// Only postgres reports the constraint; otherwise the course was just
// checked, which leaves the poster.
func noticeInsertError(err error) error {
	switch {
	case !database.IsForeignKeyViolation(err):
		return fmt.Errorf("failed to create notice: %w", err)
	case strings.Contains(database.ConstraintName(err), "courses"):
		return ErrCourseNotFound
	default:
		return ErrUserNotFound
	}
}

// AddResponse appends a reply to a notice thread. Only instructors assigned
// to the notice's course and admins may reply.
func (s *NoticeService) AddResponse(ctx context.Context, noticeID, userID uint, isAdmin bool, content string) (*noticeboard.ResponseItem, error) {
	var notice model.Notice
	if err := s.db.WithContext(ctx).First(&notice, noticeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoticeNotFound
		}
		return nil, fmt.Errorf("failed to load notice: %w", err)
	}

	if !isAdmin {
		var assigned int64
		if err := s.db.WithContext(ctx).Model(&model.CourseInstructor{}).
			Where("course_id = ? AND user_id = ?", notice.CourseID, userID).
			Count(&assigned).Error; err != nil {
			return nil, fmt.Errorf("failed to check assignment: %w", err)
		}
		if assigned == 0 {
			return nil, ErrNotAllowedToRespond
		}
	}

	resp := &model.Response{Content: content, NoticeID: noticeID, UserID: userID}
	if err := s.db.WithContext(ctx).Create(resp).Error; err != nil {
		return nil, fmt.Errorf("failed to add response: %w", err)
	}

	var author model.User
	if err := s.db.WithContext(ctx).First(&author, userID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load response author: %w", err)
	}

	return &noticeboard.ResponseItem{
		ID:        resp.ID,
		Content:   resp.Content,
		CreatedAt: resp.CreatedAt,
		User: model.UserSummary{
			ID:    userID,
			Name:  author.Name,
			Email: author.Email,
			Role:  author.Role,
		},
	}, nil
}

// MarkViewed records that userID opened the notice. Repeat calls are no-ops.
func (s *NoticeService) MarkViewed(ctx context.Context, userID, noticeID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Notice{}).Where("id = ?", noticeID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to load notice: %w", err)
	}
	if count == 0 {
		return ErrNoticeNotFound
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.NoticeView{UserID: userID, NoticeID: noticeID}).Error
	if err != nil {
		return fmt.Errorf("failed to mark notice as viewed: %w", err)
	}
	return nil
}

// ListAll returns every notice with its course, thread and view total
func (s *NoticeService) ListAll(ctx context.Context) ([]AdminNotice, error) {
	notices, err := s.rows.notices(ctx, func(q *gorm.DB) *gorm.DB { return q })
	if err != nil {
		return nil, err
	}
	rows, err := s.rows.threadRows(ctx, notices)
	if err != nil {
		return nil, err
	}

	items := noticeboard.BuildNoticeItems(rows, true)
	out := make([]AdminNotice, 0, len(items))
	for i, item := range items {
		item.ViewerIDs = nil
		out = append(out, AdminNotice{
			NoticeItem: item,
			Course: noticeboard.CourseRow{
				ID:   notices[i].CourseID,
				Name: notices[i].CourseName,
				Code: notices[i].CourseCode,
			},
		})
	}
	return out, nil
}

// ListCourseNotices returns a course's notices newest first with viewer ids
func (s *NoticeService) ListCourseNotices(ctx context.Context, courseID uint) ([]noticeboard.NoticeItem, error) {
	notices, err := s.rows.noticesOfCourses(ctx, []uint{courseID})
	if err != nil {
		return nil, err
	}
	rows, err := s.rows.threadRows(ctx, notices)
	if err != nil {
		return nil, err
	}
	return noticeboard.BuildNoticeItems(rows, true), nil
}

// NoticeDetails returns one notice of a course with its thread oldest first
func (s *NoticeService) NoticeDetails(ctx context.Context, courseID, noticeID uint) (*noticeboard.NoticeItem, error) {
	return s.noticeItem(ctx, noticeID, courseID)
}

// noticeItem renders one notice; a non-zero courseID must match its course
func (s *NoticeService) noticeItem(ctx context.Context, noticeID, courseID uint) (*noticeboard.NoticeItem, error) {
	notices, err := s.rows.notices(ctx, func(q *gorm.DB) *gorm.DB {
		q = q.Where("n.id = ?", noticeID)
		if courseID != 0 {
			q = q.Where("n.course_id = ?", courseID)
		}
		return q
	})
	if err != nil {
		return nil, err
	}
	if len(notices) == 0 {
		return nil, ErrNoticeNotFound
	}

	rows, err := s.rows.threadRows(ctx, notices)
	if err != nil {
		return nil, err
	}
	item := noticeboard.BuildNoticeItems(rows, true)[0]
	item.ViewerIDs = nil
	return &item, nil
}
