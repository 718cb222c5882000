package services

import (
	"context"
	"sync"

	"github.com/sjperalta/workpermit-api/internal/config"
	"github.com/sjperalta/workpermit-api/internal/mailer"
	"github.com/sjperalta/workpermit-api/internal/models"
	"github.com/sjperalta/workpermit-api/internal/repository"
	"github.com/sjperalta/workpermit-api/internal/roles"
	"gorm.io/gorm"
)

// memoryApplicationRepository is an in-memory store honouring the conditional status update
type memoryApplicationRepository struct {
	repository.ApplicationRepository

	mu           sync.Mutex
	apps         map[string]models.Application
	createErr    error
	onFind       func()
	transitions  int
	mockList     func(ctx context.Context, query *repository.ListQuery) ([]models.Application, int64, error)
	approvalLogs []models.ApprovalLog
}

func newMemoryApplicationRepository() *memoryApplicationRepository {
	return &memoryApplicationRepository{apps: make(map[string]models.Application)}
}

func cloneApplication(app models.Application) models.Application {
	app.ApprovalLogs = append([]models.ApprovalLog(nil), app.ApprovalLogs...)
	if d := app.HazardousOperations.HotWorkDetails; d != nil {
		copied := *d
		app.HazardousOperations.HotWorkDetails = &copied
	}
	return app
}

func (m *memoryApplicationRepository) put(app *models.Application) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apps[app.ID] = cloneApplication(*app)
}

func (m *memoryApplicationRepository) get(id string) models.Application {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneApplication(m.apps[id])
}

func (m *memoryApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	m.mu.Lock()
	app, ok := m.apps[id]
	m.mu.Unlock()
	if m.onFind != nil {
		m.onFind()
	}
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := cloneApplication(app)
	return &copied, nil
}

func (m *memoryApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.put(app)
	return nil
}

func (m *memoryApplicationRepository) ApplyTransition(ctx context.Context, t repository.Transition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.apps[t.ApplicationID]
	if !ok || app.Status != t.From {
		return repository.ErrStatusChanged
	}
	app.Status = t.To
	app.UpdatedAt = t.At
	if t.HazardousOperations != nil {
		app.HazardousOperations = *t.HazardousOperations
	}
	if t.Log != nil {
		t.Log.ID = uint(len(m.approvalLogs) + 1)
		app.ApprovalLogs = append(app.ApprovalLogs, *t.Log)
		m.approvalLogs = append(m.approvalLogs, *t.Log)
	}
	m.apps[t.ApplicationID] = app
	m.transitions++
	return nil
}

func (m *memoryApplicationRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apps[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.apps, id)
	return nil
}

func (m *memoryApplicationRepository) List(ctx context.Context, query *repository.ListQuery) ([]models.Application, int64, error) {
	if m.mockList != nil {
		return m.mockList(ctx, query)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Application, 0, len(m.apps))
	for _, app := range m.apps {
		out = append(out, cloneApplication(app))
	}
	return out, int64(len(out)), nil
}

func (m *memoryApplicationRepository) ListApprovalLogs(ctx context.Context, limit int) ([]models.ApprovalLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ApprovalLog(nil), m.approvalLogs...), nil
}

// Mock EmailLogRepository
type mockEmailLogRepository struct {
	repository.EmailLogRepository
	mu   sync.Mutex
	logs []models.EmailLog
}

func (m *mockEmailLogRepository) Create(ctx context.Context, log *models.EmailLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockEmailLogRepository) List(ctx context.Context, limit int) ([]models.EmailLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.EmailLog(nil), m.logs...), nil
}

// recordingDispatcher captures dispatched notifications instead of delivering them
type recordingDispatcher struct {
	mu   sync.Mutex
	sent []Notification
}

func (d *recordingDispatcher) Dispatch(notifications ...Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, notifications...)
}

func (d *recordingDispatcher) all() []Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Notification(nil), d.sent...)
}

func (d *recordingDispatcher) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = nil
}

// Mock Mailer
type mockMailer struct {
	mockSend func(ctx context.Context, msg mailer.Message) error
	mu       sync.Mutex
	sent     []mailer.Message
}

func (m *mockMailer) Channel() string { return "mock" }

func (m *mockMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	if m.mockSend != nil {
		return m.mockSend(ctx, msg)
	}
	return nil
}

const (
	testEHS       = "ehs@plant.test"
	testOps       = "ops@plant.test"
	testArea      = "prod@plant.test"
	testAdmin     = "admin@plant.test"
	testApplicant = "wang@plant.test"
	testBaseURL   = "https://permits.plant.test"
)

func testResolver() *roles.Resolver {
	return roles.NewResolver(config.RoleTables{
		EHSEmails:          []string{testEHS},
		DepartmentManagers: map[string]string{"Maintenance": testOps},
		AreaSupervisors:    map[string]string{"Production Manager": testArea},
		AdminEmails:        []string{testAdmin},
	})
}

func kinds(ns []Notification) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Kind+"->"+n.To)
	}
	return out
}
