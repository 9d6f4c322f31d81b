package services

import (
	"context"
	"testing"

	"github.com/sahilchouksey/noticeboard-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name         string
		current      []uint
		target       []uint
		wantAdd      []uint
		wantRemove   []uint
	}{
		{"equal sets change nothing", []uint{1, 2}, []uint{2, 1}, []uint{}, []uint{}},
		{"add and remove", []uint{2, 3}, []uint{1, 2}, []uint{1}, []uint{3}},
		{"duplicates in target are added once", nil, []uint{4, 4, 5}, []uint{4, 5}, []uint{}},
		{"empty target removes everything", []uint{7, 8}, nil, []uint{}, []uint{7, 8}},
		{"both empty", nil, nil, []uint{}, []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			add, remove := Diff(tt.current, tt.target)
			assert.Equal(t, tt.wantAdd, add)
			assert.Equal(t, tt.wantRemove, remove)
		})
	}
}

func TestSetInstructors(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewMembershipService(db)

	a := createUser(t, db, "a@x.com", model.RoleInstructor, model.GenderMale)
	b := createUser(t, db, "b@x.com", model.RoleInstructor, model.GenderFemale)
	c := createUser(t, db, "c@x.com", model.RoleInstructor, model.GenderMale)

	t.Run("reconciles towards the target set", func(t *testing.T) {
		course := createCourse(t, db, "CS101", "COURSE-AAAAA1")
		assign(t, db, course.ID, b.ID)
		assign(t, db, course.ID, c.ID)

		result, err := svc.SetInstructors(ctx, course.ID, []uint{a.ID, b.ID})
		require.NoError(t, err)
		assert.Equal(t, []uint{a.ID}, result.Added)
		assert.Equal(t, []uint{c.ID}, result.Removed)
		assert.Equal(t, []uint{a.ID, b.ID}, assignedUserIDs(t, db, course.ID))
	})

	t.Run("equal sets produce no changes", func(t *testing.T) {
		course := createCourse(t, db, "CS102", "COURSE-AAAAA2")
		assign(t, db, course.ID, a.ID)

		result, err := svc.SetInstructors(ctx, course.ID, []uint{a.ID})
		require.NoError(t, err)
		assert.Empty(t, result.Added)
		assert.Empty(t, result.Removed)
		assert.Equal(t, []uint{a.ID}, assignedUserIDs(t, db, course.ID))
	})

	t.Run("duplicate ids create one row", func(t *testing.T) {
		course := createCourse(t, db, "CS103", "COURSE-AAAAA3")

		_, err := svc.SetInstructors(ctx, course.ID, []uint{c.ID, c.ID})
		require.NoError(t, err)
		assert.Equal(t, []uint{c.ID}, assignedUserIDs(t, db, course.ID))
	})

	t.Run("a failing addition rolls back the removals", func(t *testing.T) {
		course := createCourse(t, db, "CS104", "COURSE-AAAAA4")
		assign(t, db, course.ID, b.ID)
		assign(t, db, course.ID, c.ID)

		_, err := svc.SetInstructors(ctx, course.ID, []uint{a.ID, 9999})
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.Equal(t, []uint{b.ID, c.ID}, assignedUserIDs(t, db, course.ID))
	})

	t.Run("unknown or deleted course", func(t *testing.T) {
		_, err := svc.SetInstructors(ctx, 9999, []uint{a.ID})
		assert.ErrorIs(t, err, ErrCourseNotFound)

		course := createCourse(t, db, "Gone", "COURSE-AAAAA5")
		require.NoError(t, db.Model(&course).Update("is_deleted", true).Error)
		_, err = svc.SetInstructors(ctx, course.ID, []uint{a.ID})
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})
}

func TestRemoveInstructors(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewMembershipService(db)

	a := createUser(t, db, "a@x.com", model.RoleInstructor, model.GenderMale)
	b := createUser(t, db, "b@x.com", model.RoleInstructor, model.GenderMale)
	course := createCourse(t, db, "CS101", "COURSE-BBBBB1")
	assign(t, db, course.ID, a.ID)

	t.Run("missing pair removes nothing", func(t *testing.T) {
		err := svc.RemoveInstructors(ctx, course.ID, []uint{a.ID, b.ID})
		assert.ErrorIs(t, err, ErrAssignmentNotFound)
		assert.Equal(t, []uint{a.ID}, assignedUserIDs(t, db, course.ID))
	})

	t.Run("existing pairs are removed", func(t *testing.T) {
		require.NoError(t, svc.RemoveInstructors(ctx, course.ID, []uint{a.ID}))
		assert.Empty(t, assignedUserIDs(t, db, course.ID))
	})
}

func TestJoinByCode(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewMembershipService(db)

	user := createUser(t, db, "t@x.com", model.RoleInstructor, model.GenderFemale)
	course := createCourse(t, db, "CS101", "COURSE-JOIN01")

	joined, err := svc.JoinByCode(ctx, user.ID, " COURSE-JOIN01 ")
	require.NoError(t, err)
	assert.Equal(t, course.ID, joined.ID)
	assert.Equal(t, []uint{user.ID}, assignedUserIDs(t, db, course.ID))

	_, err = svc.JoinByCode(ctx, user.ID, "COURSE-JOIN01")
	assert.ErrorIs(t, err, ErrAlreadyAssigned)

	_, err = svc.JoinByCode(ctx, user.ID, "COURSE-NOPE00")
	assert.ErrorIs(t, err, ErrCourseNotFound)

	deleted := createCourse(t, db, "Old", "COURSE-OLD000")
	require.NoError(t, db.Model(&deleted).Update("is_deleted", true).Error)
	_, err = svc.JoinByCode(ctx, user.ID, "COURSE-OLD000")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestAssignIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewMembershipService(db)

	user := createUser(t, db, "t@x.com", model.RoleInstructor, model.GenderMale)
	course := createCourse(t, db, "CS101", "COURSE-IDEM01")

	require.NoError(t, svc.Assign(ctx, course.ID, user.ID))
	require.NoError(t, svc.Assign(ctx, course.ID, user.ID))
	assert.Equal(t, []uint{user.ID}, assignedUserIDs(t, db, course.ID))
}
