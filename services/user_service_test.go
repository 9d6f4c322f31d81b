package services

import (
	"context"
	"testing"

	"github.com/sahilchouksey/noticeboard-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListNonAdminUsers(t *testing.T) {
	db := newTestDB(t)

	createUser(t, db, "admin@x.com", model.RoleAdmin, model.GenderMale)
	instructor := createUser(t, db, "t@x.com", model.RoleInstructor, model.GenderFemale)
	idle := createUser(t, db, "idle@x.com", model.RoleInstructor, model.GenderMale)
	course := createCourse(t, db, "Algebra", "COURSE-ALG001")
	assign(t, db, course.ID, instructor.ID)

	users, err := NewUserService(db).ListNonAdminUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, instructor.ID, users[0].ID)
	require.Len(t, users[0].Courses, 1)
	assert.Equal(t, "COURSE-ALG001", users[0].Courses[0].Code)

	assert.Equal(t, idle.ID, users[1].ID)
	assert.NotNil(t, users[1].Courses)
	assert.Empty(t, users[1].Courses)
}
