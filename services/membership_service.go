package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/noticeboard-api/database"
	"github.com/sahilchouksey/noticeboard-api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MembershipService manages instructor-to-course assignments
type MembershipService struct {
	db *gorm.DB
}

// NewMembershipService creates a new membership service
func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// ReconcileResult reports what a reconciliation changed
type ReconcileResult struct {
	Added   []uint `json:"added"`
	Removed []uint `json:"removed"`
}

// Diff compares the assigned set with the desired one. Duplicates on either
// side are ignored and input order is kept.
func Diff(current, target []uint) (toAdd, toRemove []uint) {
	currentSet := make(map[uint]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}
	targetSet := make(map[uint]struct{}, len(target))
	for _, id := range target {
		targetSet[id] = struct{}{}
	}

	toAdd = make([]uint, 0)
	seen := make(map[uint]struct{}, len(target))
	for _, id := range target {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := currentSet[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}

	toRemove = make([]uint, 0)
	seen = make(map[uint]struct{}, len(current))
	for _, id := range current {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := targetSet[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}

	return toAdd, toRemove
}

// SetInstructors makes userIDs the exact instructor set of a course. Removals
// and additions commit together or not at all.
func (s *MembershipService) SetInstructors(ctx context.Context, courseID uint, userIDs []uint) (*ReconcileResult, error) {
	result := &ReconcileResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureActiveCourse(tx, courseID); err != nil {
			return err
		}

		var current []uint
		if err := tx.Model(&model.CourseInstructor{}).
			Where("course_id = ?", courseID).
			Pluck("user_id", &current).Error; err != nil {
			return fmt.Errorf("failed to load current instructors: %w", err)
		}

		toAdd, toRemove := Diff(current, userIDs)

		if len(toRemove) > 0 {
			if err := tx.Where("course_id = ? AND user_id IN ?", courseID, toRemove).
				Delete(&model.CourseInstructor{}).Error; err != nil {
				return fmt.Errorf("failed to remove instructors: %w", err)
			}
		}

		if len(toAdd) > 0 {
			rows := make([]model.CourseInstructor, 0, len(toAdd))
			for _, id := range toAdd {
				rows = append(rows, model.CourseInstructor{CourseID: courseID, UserID: id})
			}
			// the course is locked in above, so a dangling reference is a user
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
				if database.IsForeignKeyViolation(err) {
					return ErrUserNotFound
				}
				return fmt.Errorf("failed to add instructors: %w", err)
			}
		}

		result.Added = toAdd
		result.Removed = toRemove
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Infof("course %d instructors reconciled: +%d -%d", courseID, len(result.Added), len(result.Removed))
	return result, nil
}

// RemoveInstructors deletes the listed assignments. If any of them does not
// exist nothing is removed and ErrAssignmentNotFound is returned.
func (s *MembershipService) RemoveInstructors(ctx context.Context, courseID uint, userIDs []uint) error {
	unique, _ := Diff(nil, userIDs)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, userID := range unique {
			res := tx.Where("course_id = ? AND user_id = ?", courseID, userID).
				Delete(&model.CourseInstructor{})
			if res.Error != nil {
				return fmt.Errorf("failed to remove instructor %d: %w", userID, res.Error)
			}
			if res.RowsAffected == 0 {
				return ErrAssignmentNotFound
			}
		}
		return nil
	})
}

// JoinByCode assigns userID to the active course carrying code
func (s *MembershipService) JoinByCode(ctx context.Context, userID uint, code string) (*model.Course, error) {
	code = strings.TrimSpace(code)

	var course model.Course
	if err := s.db.WithContext(ctx).
		Where("code = ? AND is_deleted = ?", code, false).
		First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to find course: %w", err)
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&model.CourseInstructor{}).
		Where("course_id = ? AND user_id = ?", course.ID, userID).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check assignment: %w", err)
	}
	if existing > 0 {
		return nil, ErrAlreadyAssigned
	}

	err := s.db.WithContext(ctx).Create(&model.CourseInstructor{CourseID: course.ID, UserID: userID}).Error
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrAlreadyAssigned
		}
		return nil, fmt.Errorf("failed to join course: %w", err)
	}

	return &course, nil
}

// Assign creates the assignment unless it already exists
func (s *MembershipService) Assign(ctx context.Context, courseID, userID uint) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.CourseInstructor{CourseID: courseID, UserID: userID}).Error
	if err != nil {
		return fmt.Errorf("failed to assign instructor: %w", err)
	}
	return nil
}

func ensureActiveCourse(tx *gorm.DB, courseID uint) error {
	var count int64
	if err := tx.Model(&model.Course{}).
		Where("id = ? AND is_deleted = ?", courseID, false).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to load course: %w", err)
	}
	if count == 0 {
		return ErrCourseNotFound
	}
	return nil
}

// activeCourseIDs lists the non-deleted courses userID is assigned to, in
// assignment order
func activeCourseIDs(ctx context.Context, db *gorm.DB, userID uint) ([]uint, error) {
	ids := make([]uint, 0)
	err := db.WithContext(ctx).
		Table("course_instructors AS ci").
		Joins("JOIN courses c ON c.id = ci.course_id").
		Where("ci.user_id = ? AND c.is_deleted = ?", userID, false).
		Order("ci.created_at ASC, c.id ASC").
		Pluck("c.id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load instructor courses: %w", err)
	}
	return ids, nil
}
