// Package noticeboard reshapes flat notice, response and view rows into the
// payloads served to instructors and admins. Nothing here touches storage;
// callers load the rows and hand them over.
package noticeboard

import (
	"time"

	"github.com/sahilchouksey/noticeboard-api/model"
)

// NoticeRow is one notice joined with its course and poster
type NoticeRow struct {
	ID            uint
	Title         string
	Content       string
	CourseID      uint
	CourseName    string
	CourseCode    string
	PostedByID    uint
	PostedByName  string
	PostedByEmail string
	CreatedAt     time.Time
}

// ResponseRow is one reply joined with its author
type ResponseRow struct {
	ID        uint
	NoticeID  uint
	Content   string
	CreatedAt time.Time
	UserID    uint
	UserName  string
	UserEmail string
	UserRole  model.Role
}

// ViewRow records that UserID opened NoticeID
type ViewRow struct {
	NoticeID uint
	UserID   uint
	UserRole model.Role
}

// InstructorRow is one course assignment joined with the assigned user
type InstructorRow struct {
	CourseID uint
	UserID   uint
	Name     string
	Email    string
	Gender   model.Gender
}

// CourseRow is the identifying part of a course
type CourseRow struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// Rows is everything loaded for one aggregation request. Notices must be
// ordered newest first.
type Rows struct {
	Notices     []NoticeRow
	Responses   []ResponseRow
	Views       []ViewRow
	Instructors []InstructorRow
}

// ResponseItem is a reply as rendered in a notice thread
type ResponseItem struct {
	ID        uint              `json:"id"`
	Content   string            `json:"content"`
	CreatedAt time.Time         `json:"createdAt"`
	User      model.UserSummary `json:"user"`
}

// NoticeItem is a notice with its thread and counters
type NoticeItem struct {
	ID            uint              `json:"id"`
	Title         string            `json:"title"`
	Content       string            `json:"content"`
	CourseID      uint              `json:"courseId"`
	CreatedAt     time.Time         `json:"createdAt"`
	PostedBy      model.UserSummary `json:"postedBy"`
	Responses     []ResponseItem    `json:"responses"`
	ViewerIDs     []uint            `json:"viewerIds,omitempty"`
	ViewCount     int               `json:"viewCount"`
	ResponseCount int               `json:"responseCount"`
}

// ViewedNotice adds read state to a NoticeItem
type ViewedNotice struct {
	NoticeItem
	IsViewed bool `json:"isViewed"`
}

// CourseInfo heads a group of notices. ViewCount counts views by the
// course's assigned instructors on the notice that opened the group.
type CourseInfo struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	ViewCount int    `json:"viewCount"`
}

// CourseNotices is one course of the instructor course dashboard
type CourseNotices struct {
	CourseInfo CourseInfo     `json:"courseInfo"`
	Notices    []ViewedNotice `json:"notices"`
}

// NoticeBoard is one course of the instructor reply view
type NoticeBoard struct {
	CourseID    uint                `json:"courseId"`
	CourseName  string              `json:"courseName"`
	CourseCode  string              `json:"courseCode"`
	Instructors []model.UserSummary `json:"instructors"`
	Notices     []ViewedNotice      `json:"notices"`
}

// NoticeSummary is a notice reduced to its headline and counters
type NoticeSummary struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	CreatedAt     time.Time `json:"createdAt"`
	ViewCount     int       `json:"viewCount"`
	ResponseCount int       `json:"responseCount"`
}

// InstructorCourse lists the notices an instructor has not opened yet
type InstructorCourse struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	Code          string          `json:"code"`
	ActiveNotices []NoticeSummary `json:"activeNotices"`
}
