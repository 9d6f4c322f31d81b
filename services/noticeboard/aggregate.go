package noticeboard

import (
	"sort"

	"github.com/sahilchouksey/noticeboard-api/model"
)

// index groups the response and view rows of a Rows by notice
type index struct {
	responses   map[uint][]ResponseRow
	views       map[uint][]ViewRow
	instructors map[uint][]InstructorRow
}

func buildIndex(rows Rows) index {
	idx := index{
		responses:   make(map[uint][]ResponseRow),
		views:       make(map[uint][]ViewRow),
		instructors: make(map[uint][]InstructorRow),
	}
	for _, r := range rows.Responses {
		idx.responses[r.NoticeID] = append(idx.responses[r.NoticeID], r)
	}
	for _, v := range rows.Views {
		idx.views[v.NoticeID] = append(idx.views[v.NoticeID], v)
	}
	for _, i := range rows.Instructors {
		idx.instructors[i.CourseID] = append(idx.instructors[i.CourseID], i)
	}
	return idx
}

// viewedBy reports whether userID has a view row for the notice
func (idx index) viewedBy(noticeID, userID uint) bool {
	for _, v := range idx.views[noticeID] {
		if v.UserID == userID {
			return true
		}
	}
	return false
}

// UnreadCount counts the notices that userID has no view row for.
// No notices means zero.
func UnreadCount(notices []NoticeRow, views []ViewRow, userID uint) int {
	seen := make(map[uint]struct{}, len(views))
	for _, v := range views {
		if v.UserID == userID {
			seen[v.NoticeID] = struct{}{}
		}
	}

	unread := 0
	for _, n := range notices {
		if _, ok := seen[n.ID]; !ok {
			unread++
		}
	}
	return unread
}

// GroupCourseNotices builds the per-course instructor dashboard.
//
// Notices are grouped by course in a single pass. The first notice seen for a
// course seeds the group's CourseInfo, including its ViewCount, which counts
// only views by the course's assigned instructors. Each notice carries
// IsViewed for requesterID alone while its ViewCount and ResponseCount are
// totals over every user. Responses are newest first.
func GroupCourseNotices(rows Rows, requesterID uint) []CourseNotices {
	idx := buildIndex(rows)
	groups := newOrderedGroups[uint, CourseNotices]()

	for _, n := range rows.Notices {
		group, ok := groups.get(n.CourseID)
		if !ok {
			group = groups.seed(n.CourseID, CourseNotices{
				CourseInfo: CourseInfo{
					ID:        n.CourseID,
					Name:      n.CourseName,
					Code:      n.CourseCode,
					ViewCount: instructorViews(idx, n),
				},
				Notices: make([]ViewedNotice, 0),
			})
		}

		item := buildNoticeItem(idx, n, newestFirst)
		item.ViewerIDs = viewerIDs(idx.views[n.ID])
		group.Notices = append(group.Notices, ViewedNotice{
			NoticeItem: item,
			IsViewed:   idx.viewedBy(n.ID, requesterID),
		})
	}

	return groups.values()
}

// BuildNoticeBoards builds the reply view for each of the given courses, in
// the order given.
//
// Here IsViewed means any user at all has opened the notice and ViewCount
// leaves out viewers holding the ADMIN role. Responses are oldest first.
func BuildNoticeBoards(courses []CourseRow, rows Rows) []NoticeBoard {
	idx := buildIndex(rows)

	noticesByCourse := make(map[uint][]NoticeRow)
	for _, n := range rows.Notices {
		noticesByCourse[n.CourseID] = append(noticesByCourse[n.CourseID], n)
	}

	boards := make([]NoticeBoard, 0, len(courses))
	for _, c := range courses {
		board := NoticeBoard{
			CourseID:    c.ID,
			CourseName:  c.Name,
			CourseCode:  c.Code,
			Instructors: make([]model.UserSummary, 0),
			Notices:     make([]ViewedNotice, 0),
		}

		for _, i := range idx.instructors[c.ID] {
			board.Instructors = append(board.Instructors, model.UserSummary{
				ID:    i.UserID,
				Name:  i.Name,
				Email: i.Email,
			})
		}

		for _, n := range noticesByCourse[c.ID] {
			item := buildNoticeItem(idx, n, oldestFirst)
			item.ViewCount = nonAdminViews(idx.views[n.ID])
			board.Notices = append(board.Notices, ViewedNotice{
				NoticeItem: item,
				IsViewed:   len(idx.views[n.ID]) > 0,
			})
		}

		boards = append(boards, board)
	}

	return boards
}

// UnviewedByCourse lists, per course, the notices userID has not opened,
// newest first. Counters are totals over every user.
func UnviewedByCourse(courses []CourseRow, rows Rows, userID uint) []InstructorCourse {
	idx := buildIndex(rows)

	out := make([]InstructorCourse, 0, len(courses))
	for _, c := range courses {
		course := InstructorCourse{
			ID:            c.ID,
			Name:          c.Name,
			Code:          c.Code,
			ActiveNotices: make([]NoticeSummary, 0),
		}
		for _, n := range rows.Notices {
			if n.CourseID != c.ID || idx.viewedBy(n.ID, userID) {
				continue
			}
			course.ActiveNotices = append(course.ActiveNotices, NoticeSummary{
				ID:            n.ID,
				Title:         n.Title,
				CreatedAt:     n.CreatedAt,
				ViewCount:     len(idx.views[n.ID]),
				ResponseCount: len(idx.responses[n.ID]),
			})
		}
		out = append(out, course)
	}
	return out
}

// BuildNoticeItems renders notices with their full threads and totals, in
// input order. Responses are newest first unless oldestFirstThread is set.
func BuildNoticeItems(rows Rows, oldestFirstThread bool) []NoticeItem {
	idx := buildIndex(rows)
	order := newestFirst
	if oldestFirstThread {
		order = oldestFirst
	}

	items := make([]NoticeItem, 0, len(rows.Notices))
	for _, n := range rows.Notices {
		item := buildNoticeItem(idx, n, order)
		item.ViewerIDs = viewerIDs(idx.views[n.ID])
		items = append(items, item)
	}
	return items
}

type threadOrder int

const (
	newestFirst threadOrder = iota
	oldestFirst
)

func buildNoticeItem(idx index, n NoticeRow, order threadOrder) NoticeItem {
	responses := sortedResponses(idx.responses[n.ID], order)

	item := NoticeItem{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		CourseID:  n.CourseID,
		CreatedAt: n.CreatedAt,
		PostedBy: model.UserSummary{
			ID:    n.PostedByID,
			Name:  n.PostedByName,
			Email: n.PostedByEmail,
		},
		Responses:     make([]ResponseItem, 0, len(responses)),
		ViewCount:     len(idx.views[n.ID]),
		ResponseCount: len(responses),
	}

	for _, r := range responses {
		item.Responses = append(item.Responses, ResponseItem{
			ID:        r.ID,
			Content:   r.Content,
			CreatedAt: r.CreatedAt,
			User: model.UserSummary{
				ID:    r.UserID,
				Name:  r.UserName,
				Email: r.UserEmail,
				Role:  r.UserRole,
			},
		})
	}

	return item
}

func sortedResponses(in []ResponseRow, order threadOrder) []ResponseRow {
	out := make([]ResponseRow, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if order == oldestFirst {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		if order == oldestFirst {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})
	return out
}

// instructorViews counts the views of n made by instructors assigned to n's course
func instructorViews(idx index, n NoticeRow) int {
	assigned := make(map[uint]struct{}, len(idx.instructors[n.CourseID]))
	for _, i := range idx.instructors[n.CourseID] {
		assigned[i.UserID] = struct{}{}
	}

	count := 0
	for _, v := range idx.views[n.ID] {
		if _, ok := assigned[v.UserID]; ok {
			count++
		}
	}
	return count
}

func nonAdminViews(views []ViewRow) int {
	count := 0
	for _, v := range views {
		if v.UserRole != model.RoleAdmin {
			count++
		}
	}
	return count
}

func viewerIDs(views []ViewRow) []uint {
	ids := make([]uint, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.UserID)
	}
	return ids
}
