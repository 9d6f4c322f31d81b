package services

import (
	"context"
	"fmt"

	"github.com/sahilchouksey/noticeboard-api/services/noticeboard"
	"gorm.io/gorm"
)

// rowLoader fetches the flat rows the noticeboard package aggregates
type rowLoader struct {
	db *gorm.DB
}

func (l rowLoader) notices(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]noticeboard.NoticeRow, error) {
	rows := make([]noticeboard.NoticeRow, 0)
	q := l.db.WithContext(ctx).
		Table("notices AS n").
		Select("n.id, n.title, n.content, n.course_id, c.name AS course_name, c.code AS course_code, " +
			"n.posted_by_id, COALESCE(u.name, '') AS posted_by_name, COALESCE(u.email, '') AS posted_by_email, n.created_at").
		Joins("JOIN courses c ON c.id = n.course_id").
		Joins("LEFT JOIN users u ON u.id = n.posted_by_id")
	if err := scope(q).Order("n.created_at DESC, n.id DESC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch notices: %w", err)
	}
	return rows, nil
}

func (l rowLoader) noticesOfCourses(ctx context.Context, courseIDs []uint) ([]noticeboard.NoticeRow, error) {
	if len(courseIDs) == 0 {
		return []noticeboard.NoticeRow{}, nil
	}
	return l.notices(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("n.course_id IN ?", courseIDs)
	})
}

func (l rowLoader) responses(ctx context.Context, noticeIDs []uint) ([]noticeboard.ResponseRow, error) {
	rows := make([]noticeboard.ResponseRow, 0)
	if len(noticeIDs) == 0 {
		return rows, nil
	}
	err := l.db.WithContext(ctx).
		Table("responses AS r").
		Select("r.id, r.notice_id, r.content, r.created_at, r.user_id, " +
			"COALESCE(u.name, '') AS user_name, COALESCE(u.email, '') AS user_email, COALESCE(u.role, '') AS user_role").
		Joins("LEFT JOIN users u ON u.id = r.user_id").
		Where("r.notice_id IN ?", noticeIDs).
		Order("r.created_at ASC, r.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch responses: %w", err)
	}
	return rows, nil
}

func (l rowLoader) views(ctx context.Context, noticeIDs []uint) ([]noticeboard.ViewRow, error) {
	rows := make([]noticeboard.ViewRow, 0)
	if len(noticeIDs) == 0 {
		return rows, nil
	}
	err := l.db.WithContext(ctx).
		Table("notice_views AS v").
		Select("v.notice_id, v.user_id, COALESCE(u.role, '') AS user_role").
		Joins("LEFT JOIN users u ON u.id = v.user_id").
		Where("v.notice_id IN ?", noticeIDs).
		Order("v.created_at ASC, v.user_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notice views: %w", err)
	}
	return rows, nil
}

// courses returns the course rows for ids, in the order of ids
func (l rowLoader) courses(ctx context.Context, ids []uint) ([]noticeboard.CourseRow, error) {
	out := make([]noticeboard.CourseRow, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []noticeboard.CourseRow
	if err := l.db.WithContext(ctx).
		Table("courses").
		Select("id, name, code").
		Where("id IN ?", ids).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch courses: %w", err)
	}

	byID := make(map[uint]noticeboard.CourseRow, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// threadRows loads responses and views for the given notices
func (l rowLoader) threadRows(ctx context.Context, notices []noticeboard.NoticeRow) (noticeboard.Rows, error) {
	rows := noticeboard.Rows{Notices: notices}

	ids := make([]uint, 0, len(notices))
	for _, n := range notices {
		ids = append(ids, n.ID)
	}

	var err error
	if rows.Responses, err = l.responses(ctx, ids); err != nil {
		return rows, err
	}
	if rows.Views, err = l.views(ctx, ids); err != nil {
		return rows, err
	}
	return rows, nil
}
