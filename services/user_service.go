package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sahilchouksey/noticeboard-api/model"
	"github.com/sahilchouksey/noticeboard-api/services/noticeboard"
	"gorm.io/gorm"
)

// UserService handles user listings
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// UserWithCourses is a user together with the courses assigned to them
type UserWithCourses struct {
	ID            uint                    `json:"id"`
	Name          string                  `json:"name"`
	Email         string                  `json:"email"`
	Gender        model.Gender            `json:"gender"`
	Role          model.Role              `json:"role"`
	EmailVerified bool                    `json:"emailVerified"`
	CreatedAt     time.Time               `json:"createdAt"`
	Courses       []noticeboard.CourseRow `json:"courses"`
}

// ListNonAdminUsers returns every user that is not an admin, oldest first
func (s *UserService) ListNonAdminUsers(ctx context.Context) ([]UserWithCourses, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).
		Where("role <> ?", model.RoleAdmin).
		Order("created_at ASC, id ASC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	out := make([]UserWithCourses, 0, len(users))
	if len(users) == 0 {
		return out, nil
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	var assignments []struct {
		UserID uint
		ID     uint
		Name   string
		Code   string
	}
	if err := s.db.WithContext(ctx).
		Table("course_instructors AS ci").
		Select("ci.user_id, c.id, c.name, c.code").
		Joins("JOIN courses c ON c.id = ci.course_id").
		Where("ci.user_id IN ?", ids).
		Order("ci.created_at ASC, c.id ASC").
		Scan(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch user courses: %w", err)
	}

	coursesByUser := make(map[uint][]noticeboard.CourseRow)
	for _, a := range assignments {
		coursesByUser[a.UserID] = append(coursesByUser[a.UserID], noticeboard.CourseRow{ID: a.ID, Name: a.Name, Code: a.Code})
	}

	for _, u := range users {
		courses := coursesByUser[u.ID]
		if courses == nil {
			courses = []noticeboard.CourseRow{}
		}
		out = append(out, UserWithCourses{
			ID:            u.ID,
			Name:          u.Name,
			Email:         u.Email,
			Gender:        u.Gender,
			Role:          u.Role,
			EmailVerified: u.EmailVerified,
			CreatedAt:     u.CreatedAt,
			Courses:       courses,
		})
	}
	return out, nil
}
