package noticeboard

import (
	"math"

	"github.com/sahilchouksey/noticeboard-api/model"
)

// GenderSplit counts instructors by gender
type GenderSplit struct {
	Male   int64 `json:"male"`
	Female int64 `json:"female"`
}

// NoticeboardStats holds the global notice totals and derived rates
type NoticeboardStats struct {
	TotalNotices         int64   `json:"totalNotices"`
	TotalViews           int64   `json:"totalViews"`
	TotalResponses       int64   `json:"totalResponses"`
	ViewershipPercentage float64 `json:"viewershipPercentage"`
	ResponsePercentage   float64 `json:"responsePercentage"`
}

// Statistics is the headline section of the admin dashboard
type Statistics struct {
	TotalCourses         int64            `json:"totalCourses"`
	AvgTeachersPerCourse float64          `json:"avgTeachersPerCourse"`
	TeacherGenderSplit   GenderSplit      `json:"teacherGenderSplit"`
	NoticeboardStats     NoticeboardStats `json:"noticeboardStats"`
}

// CourseStats is one course of the admin dashboard
type CourseStats struct {
	CourseID        uint            `json:"courseId"`
	CourseName      string          `json:"courseName"`
	CourseCode      string          `json:"courseCode"`
	InstructorCount int             `json:"instructorCount"`
	GenderSplit     GenderSplit     `json:"genderSplit"`
	RecentNotices   []NoticeSummary `json:"recentNotices"`
}

// Dashboard is the full admin statistics payload
type Dashboard struct {
	Statistics      Statistics    `json:"statistics"`
	CourseWiseStats []CourseStats `json:"courseWiseStats"`
}

// Round2 rounds v half away from zero to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Percentage returns numerator/denominator*100 rounded to two places, or 0
// when denominator is not positive
func Percentage(numerator, denominator int64) float64 {
	if denominator <= 0 {
		return 0
	}
	return Round2(float64(numerator) / float64(denominator) * 100)
}

// AverageInstructorsPerCourse averages grouped per-course instructor counts.
// Only courses present in the grouping take part, so no groups means 0.
func AverageInstructorsPerCourse(perCourse []int64) float64 {
	if len(perCourse) == 0 {
		return 0
	}
	var sum int64
	for _, c := range perCourse {
		sum += c
	}
	return Round2(float64(sum) / float64(len(perCourse)))
}

// SplitFromCounts reads a grouped gender count, absent genders count as 0
func SplitFromCounts(counts map[model.Gender]int64) GenderSplit {
	return GenderSplit{
		Male:   counts[model.GenderMale],
		Female: counts[model.GenderFemale],
	}
}

// NewNoticeboardStats derives the percentage fields from the totals
func NewNoticeboardStats(totalNotices, totalViews, totalResponses int64) NoticeboardStats {
	return NoticeboardStats{
		TotalNotices:         totalNotices,
		TotalViews:           totalViews,
		TotalResponses:       totalResponses,
		ViewershipPercentage: Percentage(totalViews, totalNotices),
		ResponsePercentage:   Percentage(totalResponses, totalNotices),
	}
}

// BuildCourseStats assembles the per-course section. recent holds at most the
// newest notices of each course, newest first; viewCounts and responseCounts
// are keyed by notice id.
func BuildCourseStats(
	courses []CourseRow,
	instructors []InstructorRow,
	recent []NoticeRow,
	viewCounts map[uint]int,
	responseCounts map[uint]int,
) []CourseStats {
	byCourse := make(map[uint][]InstructorRow)
	for _, i := range instructors {
		byCourse[i.CourseID] = append(byCourse[i.CourseID], i)
	}
	noticesByCourse := make(map[uint][]NoticeRow)
	for _, n := range recent {
		noticesByCourse[n.CourseID] = append(noticesByCourse[n.CourseID], n)
	}

	out := make([]CourseStats, 0, len(courses))
	for _, c := range courses {
		stats := CourseStats{
			CourseID:        c.ID,
			CourseName:      c.Name,
			CourseCode:      c.Code,
			InstructorCount: len(byCourse[c.ID]),
			RecentNotices:   make([]NoticeSummary, 0),
		}
		for _, i := range byCourse[c.ID] {
			switch i.Gender {
			case model.GenderMale:
				stats.GenderSplit.Male++
			case model.GenderFemale:
				stats.GenderSplit.Female++
			}
		}
		for _, n := range noticesByCourse[c.ID] {
			stats.RecentNotices = append(stats.RecentNotices, NoticeSummary{
				ID:            n.ID,
				Title:         n.Title,
				CreatedAt:     n.CreatedAt,
				ViewCount:     viewCounts[n.ID],
				ResponseCount: responseCounts[n.ID],
			})
		}
		out = append(out, stats)
	}
	return out
}
