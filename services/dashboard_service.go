package services

import (
	"context"
	"fmt"

	"github.com/sahilchouksey/noticeboard-api/model"
	"github.com/sahilchouksey/noticeboard-api/services/noticeboard"
	"gorm.io/gorm"
)

// RecentNoticesPerCourse caps the notices listed per course on the dashboard
const RecentNoticesPerCourse = 5

// DashboardService computes the admin statistics
type DashboardService struct {
	db   *gorm.DB
	rows rowLoader
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db, rows: rowLoader{db: db}}
}

type groupCount struct {
	GroupKey uint
	Total    int64
}

// GetAdminStats gathers the aggregate queries and hands them to the
// noticeboard package for shaping
func (s *DashboardService) GetAdminStats(ctx context.Context) (*noticeboard.Dashboard, error) {
	db := s.db.WithContext(ctx)

	var totalCourses int64
	if err := db.Model(&model.Course{}).Where("is_deleted = ?", false).Count(&totalCourses).Error; err != nil {
		return nil, fmt.Errorf("failed to count courses: %w", err)
	}

	var perCourse []groupCount
	if err := db.Model(&model.CourseInstructor{}).
		Select("course_id AS group_key, COUNT(user_id) AS total").
		Group("course_id").
		Scan(&perCourse).Error; err != nil {
		return nil, fmt.Errorf("failed to count instructors per course: %w", err)
	}
	counts := make([]int64, 0, len(perCourse))
	for _, g := range perCourse {
		counts = append(counts, g.Total)
	}

	var genders []struct {
		Gender model.Gender
		Total  int64
	}
	if err := db.Model(&model.User{}).
		Select("gender, COUNT(id) AS total").
		Where("role = ?", model.RoleInstructor).
		Group("gender").
		Scan(&genders).Error; err != nil {
		return nil, fmt.Errorf("failed to count instructor genders: %w", err)
	}
	genderCounts := make(map[model.Gender]int64, len(genders))
	for _, g := range genders {
		genderCounts[g.Gender] = g.Total
	}

	var totalNotices, totalViews, totalResponses int64
	if err := db.Model(&model.Notice{}).Count(&totalNotices).Error; err != nil {
		return nil, fmt.Errorf("failed to count notices: %w", err)
	}
	if err := db.Model(&model.NoticeView{}).Count(&totalViews).Error; err != nil {
		return nil, fmt.Errorf("failed to count notice views: %w", err)
	}
	if err := db.Model(&model.Response{}).Count(&totalResponses).Error; err != nil {
		return nil, fmt.Errorf("failed to count responses: %w", err)
	}

	courseWise, err := s.courseWiseStats(ctx)
	if err != nil {
		return nil, err
	}

	return &noticeboard.Dashboard{
		Statistics: noticeboard.Statistics{
			TotalCourses:         totalCourses,
			AvgTeachersPerCourse: noticeboard.AverageInstructorsPerCourse(counts),
			TeacherGenderSplit:   noticeboard.SplitFromCounts(genderCounts),
			NoticeboardStats:     noticeboard.NewNoticeboardStats(totalNotices, totalViews, totalResponses),
		},
		CourseWiseStats: courseWise,
	}, nil
}

func (s *DashboardService) courseWiseStats(ctx context.Context) ([]noticeboard.CourseStats, error) {
	var courses []noticeboard.CourseRow
	if err := s.db.WithContext(ctx).
		Table("courses").
		Select("id, name, code").
		Where("is_deleted = ?", false).
		Order("created_at DESC, id DESC").
		Scan(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch courses: %w", err)
	}

	ids := make([]uint, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}

	instructors, err := loadInstructorRows(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	notices, err := s.rows.noticesOfCourses(ctx, ids)
	if err != nil {
		return nil, err
	}
	recent := make([]noticeboard.NoticeRow, 0, len(notices))
	perCourse := make(map[uint]int)
	noticeIDs := make([]uint, 0)
	for _, n := range notices {
		if perCourse[n.CourseID] >= RecentNoticesPerCourse {
			continue
		}
		perCourse[n.CourseID]++
		recent = append(recent, n)
		noticeIDs = append(noticeIDs, n.ID)
	}

	viewCounts, err := s.countByNotice(ctx, &model.NoticeView{}, noticeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count views: %w", err)
	}
	responseCounts, err := s.countByNotice(ctx, &model.Response{}, noticeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count responses: %w", err)
	}

	return noticeboard.BuildCourseStats(courses, instructors, recent, viewCounts, responseCounts), nil
}

// countByNotice counts rows of m grouped by notice_id
func (s *DashboardService) countByNotice(ctx context.Context, m interface{}, noticeIDs []uint) (map[uint]int, error) {
	out := make(map[uint]int, len(noticeIDs))
	if len(noticeIDs) == 0 {
		return out, nil
	}

	var groups []groupCount
	if err := s.db.WithContext(ctx).Model(m).
		Select("notice_id AS group_key, COUNT(*) AS total").
		Where("notice_id IN ?", noticeIDs).
		Group("notice_id").
		Scan(&groups).Error; err != nil {
		return nil, err
	}
	for _, g := range groups {
		out[g.GroupKey] = int(g.Total)
	}
	return out, nil
}
