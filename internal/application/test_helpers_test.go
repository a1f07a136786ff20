package application

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"archie-core-auth-gateway/internal/domain"
	"archie-core-auth-gateway/internal/ports"

	"github.com/rs/zerolog"
)

type memoryActivityLogs struct {
	mu        sync.Mutex
	nextID    int
	entries   map[string]*domain.ActivityLogEntry
	finalized map[string]int
	createErr error
}

func newMemoryActivityLogs() *memoryActivityLogs {
	return &memoryActivityLogs{
		entries:   map[string]*domain.ActivityLogEntry{},
		finalized: map[string]int{},
	}
}

func (m *memoryActivityLogs) Create(_ context.Context, entry *domain.ActivityLogEntry) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return "", m.createErr
	}
	m.nextID++
	id := fmt.Sprintf("log-%d", m.nextID)
	copied := *entry
	copied.ID = id
	m.entries[id] = &copied
	return id, nil
}

func (m *memoryActivityLogs) AppendMessage(_ context.Context, logID string, message domain.ActivityLogMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[logID]
	if !ok {
		return fmt.Errorf("log %s not found", logID)
	}
	entry.Messages = append(entry.Messages, message)
	if message.Level == domain.LogLevelError {
		entry.Level = domain.LogLevelError
	}
	return nil
}

func (m *memoryActivityLogs) UpdateProvider(_ context.Context, logID string, provider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[logID]
	if !ok {
		return fmt.Errorf("log %s not found", logID)
	}
	entry.Provider = provider
	return nil
}

func (m *memoryActivityLogs) UpdateSuccess(_ context.Context, logID string, success bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[logID]
	if !ok {
		return fmt.Errorf("log %s not found", logID)
	}
	entry.Success = success
	m.finalized[logID]++
	return nil
}

func (m *memoryActivityLogs) only(t *testing.T) *domain.ActivityLogEntry {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) != 1 {
		t.Fatalf("expected exactly one activity log, got %d", len(m.entries))
	}
	for _, entry := range m.entries {
		return entry
	}
	return nil
}

func (m *memoryActivityLogs) finalizeCount(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finalized[id]
}

type memoryProviderConfigs struct {
	configs   map[string]*domain.ProviderConfig // key: providerConfigKey|environmentID
	templates map[string]*domain.AuthTemplate
	calls     int
}

func newMemoryProviderConfigs() *memoryProviderConfigs {
	return &memoryProviderConfigs{
		configs:   map[string]*domain.ProviderConfig{},
		templates: map[string]*domain.AuthTemplate{},
	}
}

func (m *memoryProviderConfigs) add(key, environmentID, provider string, mode domain.AuthMode) {
	m.configs[key+"|"+environmentID] = &domain.ProviderConfig{
		ID:                key + "-id",
		Provider:          provider,
		ProviderConfigKey: key,
		EnvironmentID:     environmentID,
	}
	m.templates[provider] = &domain.AuthTemplate{Provider: provider, AuthMode: mode}
}

func (m *memoryProviderConfigs) GetProviderConfig(_ context.Context, key string, environmentID string) (*domain.ProviderConfig, error) {
	m.calls++
	return m.configs[key+"|"+environmentID], nil
}

func (m *memoryProviderConfigs) GetTemplate(_ context.Context, provider string) (*domain.AuthTemplate, error) {
	return m.templates[provider], nil
}

type memoryConnections struct {
	mu        sync.Mutex
	byKey     map[string]*domain.Connection
	upserts   int
	decline   bool
	upsertErr error
}

func newMemoryConnections() *memoryConnections {
	return &memoryConnections{byKey: map[string]*domain.Connection{}}
}

func connectionKey(connectionID, providerConfigKey, environmentID string) string {
	return connectionID + "|" + providerConfigKey + "|" + environmentID
}

func (m *memoryConnections) UpsertAPIConnection(_ context.Context, input domain.UpsertConnectionInput) (*domain.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	if m.decline {
		return nil, nil
	}
	key := connectionKey(input.ConnectionID, input.ProviderConfigKey, input.EnvironmentID)
	existing, ok := m.byKey[key]
	if !ok {
		existing = &domain.Connection{
			ID:                fmt.Sprintf("conn-%d", len(m.byKey)+1),
			ConnectionID:      input.ConnectionID,
			ProviderConfigKey: input.ProviderConfigKey,
			EnvironmentID:     input.EnvironmentID,
		}
		m.byKey[key] = existing
	}
	existing.Provider = input.Provider
	existing.Credential = input.Credential
	existing.ConnectionConfig = input.ConnectionConfig
	existing.AccountID = input.AccountID
	copied := *existing
	return &copied, nil
}

func (m *memoryConnections) get(connectionID, providerConfigKey, environmentID string) *domain.Connection {
	m.mu.Lock()
	defer m.mu.Unlock()
	conn, ok := m.byKey[connectionKey(connectionID, providerConfigKey, environmentID)]
	if !ok {
		return nil
	}
	copied := *conn
	return &copied
}

func (m *memoryConnections) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byKey)
}

type stubVerifier struct {
	enabled   bool
	valid     string
	calls     int
	enableErr error
}

func (s *stubVerifier) IsEnabled(context.Context, string) (bool, error) {
	return s.enabled, s.enableErr
}

func (s *stubVerifier) Verify(_ context.Context, signature, _, _, _ string) (bool, error) {
	s.calls++
	return signature == s.valid, nil
}

type recordingSyncClient struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (r *recordingSyncClient) Initiate(_ context.Context, connectionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, connectionID)
	return r.err
}

func (r *recordingSyncClient) initiated() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type recordingReporter struct {
	mu       sync.Mutex
	errs     []error
	metadata []map[string]any
}

func (r *recordingReporter) Report(_ context.Context, err error, _ string, metadata map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
	r.metadata = append(r.metadata, metadata)
}

func (r *recordingReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

type recordingMetrics struct {
	mu       sync.Mutex
	auth     []string
	webhooks []string
	failed   []string
}

func (m *recordingMetrics) AuthAttempt(mode domain.AuthMode, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auth = append(m.auth, string(mode)+":"+outcome)
}

func (m *recordingMetrics) WebhookReceived(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.webhooks = append(m.webhooks, outcome)
}

func (m *recordingMetrics) TaskFailed(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, name)
}

type memoryEnvironments struct {
	byUUID map[string]*domain.Environment
	err    error
}

func (m *memoryEnvironments) GetByID(_ context.Context, id string) (*domain.Environment, error) {
	for _, env := range m.byUUID {
		if env.ID == id {
			return env, nil
		}
	}
	return nil, nil
}

func (m *memoryEnvironments) GetByUUID(_ context.Context, uuid string) (*domain.Environment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byUUID[uuid], nil
}

func (m *memoryEnvironments) GetBySecretKey(context.Context, string) (*domain.Environment, error) {
	return nil, nil
}

func (m *memoryEnvironments) GetByPublicKey(context.Context, string) (*domain.Environment, error) {
	return nil, nil
}

type stubFlags struct {
	values map[string]bool
	err    error
}

func (s *stubFlags) IsEnabled(_ context.Context, flag string, distinctID string, defaultValue bool) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if v, ok := s.values[flag+":"+distinctID]; ok {
		return v, nil
	}
	return defaultValue, nil
}

type countingRoute struct {
	calls       int
	last        *domain.WebhookContext
	hadDeadline bool
	payload     any
	err         error
}

func (c *countingRoute) Route(ctx context.Context, webhook *domain.WebhookContext) (any, error) {
	c.calls++
	c.last = webhook
	_, c.hadDeadline = ctx.Deadline()
	return c.payload, c.err
}

type pipelineFixture struct {
	logs        *memoryActivityLogs
	configs     *memoryProviderConfigs
	connections *memoryConnections
	verifier    *stubVerifier
	sync        *recordingSyncClient
	reporter    *recordingReporter
	metrics     *recordingMetrics
	tasks       *TaskRunner
	pipeline    *CredentialPipeline
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	logger := zerolog.Nop()
	f := &pipelineFixture{
		logs:        newMemoryActivityLogs(),
		configs:     newMemoryProviderConfigs(),
		connections: newMemoryConnections(),
		verifier:    &stubVerifier{},
		sync:        &recordingSyncClient{},
		reporter:    &recordingReporter{},
		metrics:     &recordingMetrics{},
	}
	f.configs.add("stripe-prod", "env-1", "stripe", domain.AuthModeAPIKey)
	f.configs.add("jira-prod", "env-1", "jira", domain.AuthModeBasic)

	f.tasks = NewTaskRunner(logger, f.metrics)
	f.withLogStore(f.logs, time.Second)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = f.tasks.Wait(ctx)
	})
	return f
}

// withLogStore rebuilds the pipeline around another activity log store
func (f *pipelineFixture) withLogStore(logs ports.ActivityLogRepository, stageTimeout time.Duration) {
	logger := zerolog.Nop()
	f.pipeline = NewCredentialPipeline(CredentialPipelineDeps{
		Recorder:    NewActivityRecorder(logs, f.reporter, logger, stageTimeout),
		Gate:        NewSecurityGate(f.verifier),
		Resolver:    NewProviderResolver(f.configs),
		Connections: f.connections,
		SyncClient:  f.sync,
		Reporter:    f.reporter,
		Metrics:     f.metrics,
		Tasks:       f.tasks,
	}, PipelineOptions{StageTimeout: stageTimeout, SyncTimeout: time.Second}, logger)
}

func (f *pipelineFixture) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := f.tasks.Wait(ctx); err != nil {
		t.Fatalf("background tasks did not finish: %v", err)
	}
}

func apiKeyRequest() AuthRequest {
	return AuthRequest{
		AccountID:         "acct-1",
		EnvironmentID:     "env-1",
		ProviderConfigKey: "stripe-prod",
		ConnectionID:      "user-42",
		APIKey:            "sk_test_1",
	}
}

func basicRequest() AuthRequest {
	return AuthRequest{
		AccountID:         "acct-1",
		EnvironmentID:     "env-1",
		ProviderConfigKey: "jira-prod",
		ConnectionID:      "user-42",
		Username:          "ada",
		Password:          "hunter2",
	}
}

func headers(kv ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}
