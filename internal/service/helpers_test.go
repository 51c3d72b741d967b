package service

import (
	"archive/zip"
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/repository/memory"
	"orggov-backend/internal/security"
	"orggov-backend/internal/storage"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, to string, kind domain.NotificationKind, payload map[string]string) error {
	args := m.Called(ctx, to, kind, payload)
	return args.Error(0)
}

// recordingNotifier keeps every message for assertions made after
// concurrent calls.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

type sentMessage struct {
	To      string
	Kind    domain.NotificationKind
	Payload map[string]string
}

func (r *recordingNotifier) Notify(ctx context.Context, to string, kind domain.NotificationKind, payload map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{To: to, Kind: kind, Payload: payload})
	return nil
}

func (r *recordingNotifier) byKind(kind domain.NotificationKind) []sentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sentMessage
	for _, m := range r.sent {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

type fixture struct {
	ctx      context.Context
	store    *memory.Store
	files    *storage.LocalStorageService
	notifier *recordingNotifier
	college  domain.College
	course   domain.Course
	term     domain.AcademicTerm
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixtureWithoutTerm(t)
	term, err := f.store.AddTerm(domain.AcademicTerm{SchoolYear: "2026-2027", Semester: "1st Semester", IsActive: true})
	require.NoError(t, err)
	f.term = term
	return f
}

func newFixtureWithoutTerm(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	college := store.AddCollege(domain.College{Code: "ccs", Name: "college of computer studies"})
	course := store.AddCourse(domain.Course{CollegeID: college.ID, Code: "BSCS", Name: "BS Computer Science"})
	files, err := storage.NewLocalStorageService(t.TempDir())
	require.NoError(t, err)

	return &fixture{
		ctx:      context.Background(),
		store:    store,
		files:    files,
		notifier: &recordingNotifier{},
		college:  college,
		course:   course,
		now:      time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) applications() *applicationService {
	svc := NewApplicationService(f.store, NewProvisioner(), f.notifier).(*applicationService)
	svc.now = func() time.Time { return f.now }
	return svc
}

func (f *fixture) documents() *documentService {
	svc := NewDocumentService(f.store, f.files, f.notifier).(*documentService)
	svc.now = func() time.Time { return f.now }
	return svc
}

func (f *fixture) orgApplication(t *testing.T, name, code, presidentEmail, adviserEmail string) *domain.Application {
	t.Helper()
	courseID := f.course.ID
	app := &domain.Application{
		Type:           domain.ApplicationTypeOrganization,
		CollegeID:      f.college.ID,
		CourseID:       &courseID,
		OrgCode:        code,
		OrgName:        name,
		PresidentName:  "Juan dela Cruz",
		PresidentEmail: presidentEmail,
		AdviserName:    "Maria Santos",
		AdviserEmail:   adviserEmail,
		VerifiedBy:     domain.VerifiedByPresident,
		VerifiedEmail:  presidentEmail,
	}
	require.NoError(t, f.store.Repos().Applications.Create(f.ctx, app))
	return app
}

func (f *fixture) councilApplication(t *testing.T, presidentEmail, adviserEmail string) *domain.Application {
	t.Helper()
	app := &domain.Application{
		Type:           domain.ApplicationTypeCouncil,
		CollegeID:      f.college.ID,
		PresidentName:  "Ana Reyes",
		PresidentEmail: presidentEmail,
		AdviserName:    "Jose Rizal",
		AdviserEmail:   adviserEmail,
		VerifiedBy:     domain.VerifiedByAdviser,
		VerifiedEmail:  adviserEmail,
	}
	require.NoError(t, f.store.Repos().Applications.Create(f.ctx, app))
	return app
}

// recognizedOrg provisions an organization through approval and marks it
// recognized.
func (f *fixture) recognizedOrg(t *testing.T) *ProvisionResult {
	t.Helper()
	app := f.orgApplication(t, "computer science club", "CSC", "pres@school.edu", "adviser@school.edu")
	res, err := f.applications().Approve(f.ctx, app.ID, 1)
	require.NoError(t, err)
	_, err = NewEntityService(f.store).Recognize(f.ctx, res.OwnerType, res.EntityID)
	require.NoError(t, err)
	return res
}

func (f *fixture) addAccount(t *testing.T, username, email string, role domain.Role) *domain.Account {
	t.Helper()
	hash, err := security.HashPassword("secret-password")
	require.NoError(t, err)
	a := &domain.Account{Username: username, Email: email, FullName: username, Role: role, PasswordHash: hash}
	require.NoError(t, f.store.AddAccount(f.ctx, a))
	return a
}

func pdfUpload(name string, size int) domain.Upload {
	head := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	if size < len(head) {
		size = len(head)
	}
	buf := make([]byte, size)
	copy(buf, head)
	return domain.Upload{Filename: name, Data: buf}
}

func docxUpload(t *testing.T, name string) domain.Upload {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range []string{"[Content_Types].xml", "word/document.xml"} {
		w, err := zw.Create(entry)
		require.NoError(t, err)
		_, err = w.Write([]byte("<xml/>"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return domain.Upload{Filename: name, Data: buf.Bytes()}
}

func pngUpload(name string) domain.Upload {
	data := append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)
	return domain.Upload{Filename: name, Data: data}
}
