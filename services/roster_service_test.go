package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sahilchouksey/noticeboard-api/model"
	"github.com/sahilchouksey/noticeboard-api/utils/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArchiver struct {
	files []string
	err   error
}

func (f *fakeArchiver) Archive(_ context.Context, fileName string, _ []byte, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.files = append(f.files, fileName)
	return "rosters/" + fileName, nil
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []string
	release chan struct{}
}

func (f *fakeMailer) SendWelcomeEmail(toEmail, _, _ string) error {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, toEmail)
	return nil
}

func (f *fakeMailer) recipients() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func TestRosterImport(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	admin := createUser(t, db, "admin@x.com", model.RoleAdmin, model.GenderMale)
	existing := createUser(t, db, "old@x.com", model.RoleInstructor, model.GenderFemale)
	course := createCourse(t, db, "Physics", "COURSE-PHY001")

	archiver := &fakeArchiver{}
	mailer := &fakeMailer{}
	svc := NewRosterService(db, "changeme", archiver, mailer)

	csv := "email,name,courseCode\n" +
		"new@x.com,,COURSE-PHY001\n" +
		"old@x.com,Old Timer,COURSE-PHY001\n" +
		",Ghost,COURSE-PHY001\n" +
		"lost@x.com,Lost,COURSE-NONE00\n"

	result, importID, err := svc.Import(ctx, RosterUpload{
		UploadedByID: admin.ID,
		FileName:     "teachers.csv",
		ContentType:  "text/csv",
		Data:         []byte(csv),
	})
	require.NoError(t, err)
	assert.NotZero(t, importID)

	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, []string{
		`Missing email or course code for row: {"courseCode":"COURSE-PHY001","name":"Ghost"}`,
		"Course not found with code: COURSE-NONE00",
	}, result.Errors)

	var created model.User
	require.NoError(t, db.Where("email = ?", "new@x.com").First(&created).Error)
	assert.Equal(t, "new", created.Name)
	assert.Equal(t, model.RoleInstructor, created.Role)
	assert.Equal(t, model.GenderMale, created.Gender)
	assert.NoError(t, auth.VerifyPassword(created.PasswordHash, "changeme"))

	assert.ElementsMatch(t, []uint{created.ID, existing.ID}, assignedUserIDs(t, db, course.ID))

	var users int64
	require.NoError(t, db.Model(&model.User{}).Where("name = ? OR email = ?", "Ghost", "lost@x.com").Count(&users).Error)
	assert.Zero(t, users)

	assert.Equal(t, []string{"teachers.csv"}, archiver.files)
	svc.WaitForMail()
	assert.Equal(t, []string{"new@x.com"}, mailer.recipients())

	var audit model.RosterImport
	require.NoError(t, db.First(&audit, importID).Error)
	assert.Equal(t, "rosters/teachers.csv", audit.ArchiveURL)
	assert.Equal(t, 2, audit.Succeeded)
	var auditErrors []string
	require.NoError(t, json.Unmarshal(audit.Errors, &auditErrors))
	assert.Equal(t, result.Errors, auditErrors)

	again, _, err := svc.Import(ctx, RosterUpload{UploadedByID: admin.ID, FileName: "teachers.csv", Data: []byte(csv)})
	require.NoError(t, err)
	assert.Equal(t, 2, again.Success)
	assert.Len(t, assignedUserIDs(t, db, course.ID), 2)
	svc.WaitForMail()
	assert.Equal(t, []string{"new@x.com"}, mailer.recipients())
}

func TestRosterImportDoesNotWaitForMail(t *testing.T) {
	db := newTestDB(t)
	createCourse(t, db, "Physics", "COURSE-PHY001")
	mailer := &fakeMailer{release: make(chan struct{})}
	svc := NewRosterService(db, "changeme", nil, mailer)

	done := make(chan *RosterImportResult, 1)
	go func() {
		result, _, err := svc.Import(context.Background(), RosterUpload{
			FileName: "t.csv",
			Data:     []byte("email,courseCode\na@x.com,COURSE-PHY001\nb@x.com,COURSE-PHY001\n"),
		})
		assert.NoError(t, err)
		done <- result
	}()

	select {
	case result := <-done:
		assert.Equal(t, 2, result.Success)
	case <-time.After(5 * time.Second):
		t.Fatal("import blocked on the mailer")
	}
	assert.Empty(t, mailer.recipients())

	close(mailer.release)
	svc.WaitForMail()
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, mailer.recipients())
}

func TestRosterImportWithoutDefaultPassword(t *testing.T) {
	svc := NewRosterService(newTestDB(t), "", nil, nil)

	_, _, err := svc.Import(context.Background(), RosterUpload{Data: []byte("email,courseCode\na@x.com,COURSE-A00001\n")})
	assert.ErrorIs(t, err, ErrDefaultPasswordUnset)
}

func TestRosterImportSurvivesArchiveFailure(t *testing.T) {
	db := newTestDB(t)
	createCourse(t, db, "Physics", "COURSE-PHY001")
	svc := NewRosterService(db, "changeme", &fakeArchiver{err: errors.New("bucket offline")}, nil)

	result, importID, err := svc.Import(context.Background(), RosterUpload{
		FileName: "t.csv",
		Data:     []byte("email,courseCode\na@x.com,COURSE-PHY001\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Success)

	var audit model.RosterImport
	require.NoError(t, db.First(&audit, importID).Error)
	assert.Empty(t, audit.ArchiveURL)
}
