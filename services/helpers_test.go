package services

import (
	"testing"
	"time"

	"github.com/sahilchouksey/noticeboard-api/database"
	"github.com/sahilchouksey/noticeboard-api/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	store, err := database.OpenSQLite(":memory:", logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(store.GetDB()))
	t.Cleanup(func() { _ = store.Close() })

	return store.GetDB()
}

func createUser(t *testing.T, db *gorm.DB, email string, role model.Role, gender model.Gender) model.User {
	t.Helper()
	user := model.User{
		Name:         email,
		Email:        email,
		PasswordHash: "not-a-real-hash",
		Role:         role,
		Gender:       gender,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createCourse(t *testing.T, db *gorm.DB, name, code string) model.Course {
	t.Helper()
	course := model.Course{Name: name, Code: code}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func assign(t *testing.T, db *gorm.DB, courseID, userID uint) {
	t.Helper()
	require.NoError(t, db.Create(&model.CourseInstructor{CourseID: courseID, UserID: userID}).Error)
}

func createNotice(t *testing.T, db *gorm.DB, courseID, postedBy uint, title string, at time.Time) model.Notice {
	t.Helper()
	notice := model.Notice{
		Title:      title,
		Content:    title + " body",
		CourseID:   courseID,
		PostedByID: postedBy,
		CreatedAt:  at,
	}
	require.NoError(t, db.Create(&notice).Error)
	return notice
}

// fixedTime returns a stable base time shifted by minutes
func fixedTime(minutes int) time.Time {
	return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute)
}

func view(t *testing.T, db *gorm.DB, userID, noticeID uint) {
	t.Helper()
	require.NoError(t, db.Create(&model.NoticeView{UserID: userID, NoticeID: noticeID}).Error)
}

func assignedUserIDs(t *testing.T, db *gorm.DB, courseID uint) []uint {
	t.Helper()
	var ids []uint
	require.NoError(t, db.Model(&model.CourseInstructor{}).
		Where("course_id = ?", courseID).
		Order("user_id").
		Pluck("user_id", &ids).Error)
	return ids
}
