package noticeboard

import (
	"testing"
	"time"

	"github.com/sahilchouksey/noticeboard-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// fixture: instructors 10 and 11 teach course 1, instructor 12 teaches course 2,
// user 1 is the admin who posts everything
func fixture() Rows {
	return Rows{
		Notices: []NoticeRow{
			{ID: 3, Title: "Lab moved", CourseID: 1, CourseName: "Networks", CourseCode: "COURSE-AAAAAA", PostedByID: 1, PostedByName: "Admin", CreatedAt: base.Add(3 * time.Hour)},
			{ID: 2, Title: "Quiz", CourseID: 2, CourseName: "Compilers", CourseCode: "COURSE-BBBBBB", PostedByID: 1, PostedByName: "Admin", CreatedAt: base.Add(2 * time.Hour)},
			{ID: 1, Title: "Welcome", CourseID: 1, CourseName: "Networks", CourseCode: "COURSE-AAAAAA", PostedByID: 1, PostedByName: "Admin", CreatedAt: base.Add(time.Hour)},
		},
		Responses: []ResponseRow{
			{ID: 1, NoticeID: 1, Content: "first", UserID: 10, CreatedAt: base.Add(90 * time.Minute)},
			{ID: 2, NoticeID: 1, Content: "second", UserID: 11, CreatedAt: base.Add(100 * time.Minute)},
			{ID: 3, NoticeID: 3, Content: "ok", UserID: 1, UserRole: model.RoleAdmin, CreatedAt: base.Add(4 * time.Hour)},
		},
		Views: []ViewRow{
			{NoticeID: 3, UserID: 10, UserRole: model.RoleInstructor},
			{NoticeID: 3, UserID: 1, UserRole: model.RoleAdmin},
			{NoticeID: 3, UserID: 12, UserRole: model.RoleInstructor},
			{NoticeID: 1, UserID: 11, UserRole: model.RoleInstructor},
			{NoticeID: 1, UserID: 1, UserRole: model.RoleAdmin},
		},
		Instructors: []InstructorRow{
			{CourseID: 1, UserID: 10, Name: "Ada", Gender: model.GenderFemale},
			{CourseID: 1, UserID: 11, Name: "Bob", Gender: model.GenderMale},
			{CourseID: 2, UserID: 12, Name: "Cy", Gender: model.GenderMale},
		},
	}
}

func TestUnreadCount(t *testing.T) {
	rows := fixture()

	t.Run("counts notices without a view by the user", func(t *testing.T) {
		assert.Equal(t, 2, UnreadCount(rows.Notices, rows.Views, 10))
		assert.Equal(t, 1, UnreadCount(rows.Notices, rows.Views, 1))
	})

	t.Run("no notices means zero", func(t *testing.T) {
		assert.Equal(t, 0, UnreadCount(nil, rows.Views, 10))
	})

	t.Run("other users views do not count", func(t *testing.T) {
		assert.Equal(t, 3, UnreadCount(rows.Notices, rows.Views, 99))
	})
}

func TestGroupCourseNotices(t *testing.T) {
	groups := GroupCourseNotices(fixture(), 10)
	require.Len(t, groups, 2)

	t.Run("groups keep first-seen course order", func(t *testing.T) {
		assert.Equal(t, uint(1), groups[0].CourseInfo.ID)
		assert.Equal(t, uint(2), groups[1].CourseInfo.ID)
		assert.Equal(t, "COURSE-AAAAAA", groups[0].CourseInfo.Code)
	})

	t.Run("notices keep input order within a group", func(t *testing.T) {
		require.Len(t, groups[0].Notices, 2)
		assert.Equal(t, uint(3), groups[0].Notices[0].ID)
		assert.Equal(t, uint(1), groups[0].Notices[1].ID)
	})

	t.Run("course view count comes from the seeding notice and counts assigned instructors only", func(t *testing.T) {
		// notice 3 was viewed by 10 (assigned), 1 (admin), 12 (not assigned to course 1)
		assert.Equal(t, 1, groups[0].CourseInfo.ViewCount)
		// notice 2 has no views
		assert.Equal(t, 0, groups[1].CourseInfo.ViewCount)
	})

	t.Run("isViewed is scoped to the requester while counters are totals", func(t *testing.T) {
		n3 := groups[0].Notices[0]
		assert.True(t, n3.IsViewed)
		assert.Equal(t, 3, n3.ViewCount)
		assert.Equal(t, 1, n3.ResponseCount)
		assert.ElementsMatch(t, []uint{10, 1, 12}, n3.ViewerIDs)

		n1 := groups[0].Notices[1]
		assert.False(t, n1.IsViewed)
		assert.Equal(t, 2, n1.ViewCount)
	})

	t.Run("responses are newest first", func(t *testing.T) {
		n1 := groups[0].Notices[1]
		require.Len(t, n1.Responses, 2)
		assert.Equal(t, "second", n1.Responses[0].Content)
		assert.Equal(t, "first", n1.Responses[1].Content)
	})

	t.Run("no notices yields no groups", func(t *testing.T) {
		assert.Empty(t, GroupCourseNotices(Rows{}, 10))
	})
}

func TestBuildNoticeBoards(t *testing.T) {
	courses := []CourseRow{
		{ID: 1, Name: "Networks", Code: "COURSE-AAAAAA"},
		{ID: 3, Name: "Empty", Code: "COURSE-CCCCCC"},
	}
	boards := BuildNoticeBoards(courses, fixture())
	require.Len(t, boards, 2)

	board := boards[0]
	assert.Equal(t, "Networks", board.CourseName)
	require.Len(t, board.Instructors, 2)
	assert.Equal(t, "Ada", board.Instructors[0].Name)

	require.Len(t, board.Notices, 2)

	t.Run("view count leaves out admins", func(t *testing.T) {
		assert.Equal(t, 2, board.Notices[0].ViewCount)
		assert.Equal(t, 1, board.Notices[1].ViewCount)
	})

	t.Run("isViewed means any view exists", func(t *testing.T) {
		assert.True(t, board.Notices[0].IsViewed)
		assert.True(t, board.Notices[1].IsViewed)
	})

	t.Run("responses are oldest first", func(t *testing.T) {
		thread := board.Notices[1].Responses
		require.Len(t, thread, 2)
		assert.Equal(t, "first", thread[0].Content)
		assert.Equal(t, "second", thread[1].Content)
	})

	t.Run("course without notices renders empty lists", func(t *testing.T) {
		assert.NotNil(t, boards[1].Notices)
		assert.Empty(t, boards[1].Notices)
		assert.Empty(t, boards[1].Instructors)
	})
}

func TestUnviewedByCourse(t *testing.T) {
	courses := []CourseRow{{ID: 1, Name: "Networks"}, {ID: 2, Name: "Compilers"}}
	out := UnviewedByCourse(courses, fixture(), 11)
	require.Len(t, out, 2)

	require.Len(t, out[0].ActiveNotices, 1)
	assert.Equal(t, uint(3), out[0].ActiveNotices[0].ID)
	assert.Equal(t, 3, out[0].ActiveNotices[0].ViewCount)
	assert.Equal(t, 1, out[0].ActiveNotices[0].ResponseCount)

	require.Len(t, out[1].ActiveNotices, 1)
	assert.Equal(t, uint(2), out[1].ActiveNotices[0].ID)
}

func TestBuildNoticeItems(t *testing.T) {
	items := BuildNoticeItems(fixture(), true)
	require.Len(t, items, 3)
	assert.Equal(t, "first", items[2].Responses[0].Content)
	assert.Equal(t, 2, items[2].ResponseCount)
	assert.Equal(t, 0, items[1].ViewCount)
}
