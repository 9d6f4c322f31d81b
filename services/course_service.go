package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/noticeboard-api/database"
	"github.com/sahilchouksey/noticeboard-api/model"
	"github.com/sahilchouksey/noticeboard-api/services/noticeboard"
	"gorm.io/gorm"
)

const (
	courseCodePrefix   = "COURSE-"
	courseCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	courseCodeLength   = 6
	courseCodeAttempts = 5
)

// CourseService handles course CRUD
type CourseService struct {
	db *gorm.DB
}

// NewCourseService creates a new course service
func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{db: db}
}

// CourseDetail is a course with its assigned instructors and notices
type CourseDetail struct {
	model.Course
	Instructors []model.UserSummary `json:"instructors"`
	Notices     []model.Notice      `json:"notices"`
}

// GenerateCourseCode returns COURSE- followed by six characters from [A-Z0-9]
func GenerateCourseCode() (string, error) {
	max := big.NewInt(int64(len(courseCodeAlphabet)))
	code := make([]byte, courseCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = courseCodeAlphabet[n.Int64()]
	}
	return courseCodePrefix + string(code), nil
}

// CreateCourse stores a new course under a freshly generated code
func (s *CourseService) CreateCourse(ctx context.Context, name, description string) (*model.Course, error) {
	for attempt := 1; attempt <= courseCodeAttempts; attempt++ {
		code, err := GenerateCourseCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate course code: %w", err)
		}

		course := &model.Course{Name: name, Code: code, Description: description}
		err = s.db.WithContext(ctx).Create(course).Error
		if err == nil {
			return course, nil
		}
		if !database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create course: %w", err)
		}
		log.Warnf("course code %s already taken, retrying (attempt %d)", code, attempt)
	}
	return nil, ErrCodeExhausted
}

// UpdateCourse changes the name and description of a course
func (s *CourseService) UpdateCourse(ctx context.Context, id uint, name, description string) (*model.Course, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&course).Updates(map[string]interface{}{
		"name":        name,
		"description": description,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	course.Name = name
	course.Description = description
	return &course, nil
}

// DeleteCourse soft deletes a course; its notices stay in place
func (s *CourseService) DeleteCourse(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Model(&model.Course{}).
		Where("id = ?", id).
		Update("is_deleted", true)
	if result.Error != nil {
		return fmt.Errorf("failed to delete course: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

// ListCourses returns every non-deleted course, newest first
func (s *CourseService) ListCourses(ctx context.Context) ([]CourseDetail, error) {
	var courses []model.Course
	if err := s.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("created_at DESC, id DESC").
		Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch courses: %w", err)
	}
	return s.withRelations(ctx, courses)
}

// GetCourse returns one non-deleted course
func (s *CourseService) GetCourse(ctx context.Context, id uint) (*CourseDetail, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to fetch course: %w", err)
	}

	details, err := s.withRelations(ctx, []model.Course{course})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *CourseService) withRelations(ctx context.Context, courses []model.Course) ([]CourseDetail, error) {
	details := make([]CourseDetail, 0, len(courses))
	if len(courses) == 0 {
		return details, nil
	}

	ids := make([]uint, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}

	instructors, err := loadInstructorRows(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	var notices []model.Notice
	if err := s.db.WithContext(ctx).
		Where("course_id IN ?", ids).
		Order("created_at DESC, id DESC").
		Find(&notices).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch course notices: %w", err)
	}

	instructorsByCourse := make(map[uint][]model.UserSummary)
	for _, i := range instructors {
		instructorsByCourse[i.CourseID] = append(instructorsByCourse[i.CourseID], model.UserSummary{
			ID:     i.UserID,
			Name:   i.Name,
			Email:  i.Email,
			Gender: i.Gender,
		})
	}
	noticesByCourse := make(map[uint][]model.Notice)
	for _, n := range notices {
		noticesByCourse[n.CourseID] = append(noticesByCourse[n.CourseID], n)
	}

	for _, c := range courses {
		d := CourseDetail{
			Course:      c,
			Instructors: instructorsByCourse[c.ID],
			Notices:     noticesByCourse[c.ID],
		}
		if d.Instructors == nil {
			d.Instructors = []model.UserSummary{}
		}
		if d.Notices == nil {
			d.Notices = []model.Notice{}
		}
		details = append(details, d)
	}
	return details, nil
}

// loadInstructorRows returns the assignments of the given courses joined with
// their users, in assignment order
func loadInstructorRows(ctx context.Context, db *gorm.DB, courseIDs []uint) ([]noticeboard.InstructorRow, error) {
	rows := make([]noticeboard.InstructorRow, 0)
	if len(courseIDs) == 0 {
		return rows, nil
	}
	err := db.WithContext(ctx).
		Table("course_instructors AS ci").
		Select("ci.course_id, u.id AS user_id, u.name, u.email, u.gender").
		Joins("JOIN users u ON u.id = ci.user_id").
		Where("ci.course_id IN ?", courseIDs).
		Order("ci.created_at ASC, u.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch course instructors: %w", err)
	}
	return rows, nil
}
