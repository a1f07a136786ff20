package application

import (
	"context"
	"fmt"
	"time"

	"archie-core-auth-gateway/internal/domain"
	"archie-core-auth-gateway/internal/ports"

	"github.com/rs/zerolog"
)

const (
	defaultStageTimeout = 5 * time.Second
	defaultSyncTimeout  = 30 * time.Second
)

// Analytics events emitted before each flow runs
const (
	EventPreAPIKeyAuth = "server:pre_api_key_auth"
	EventPreBasicAuth  = "server:pre_basic_api_key_auth"
)

// AuthRequest is one inbound static-credential authorization
type AuthRequest struct {
	AccountID         string
	EnvironmentID     string
	ProviderConfigKey string
	ConnectionID      string
	Signature         string // hmac query parameter
	Params            string // raw params query parameter
	APIKey            string
	Username          string
	Password          string
}

// AuthResult is returned on success
type AuthResult struct {
	LogID      string
	Connection *domain.Connection // nil when the store declined to return one
	SyncTask   *Task              // started only when Connection is set
}

// PipelineOptions tunes collaborator timeouts
type PipelineOptions struct {
	StageTimeout time.Duration
	SyncTimeout  time.Duration
}

// CredentialPipeline establishes connections from API keys and basic credentials
type CredentialPipeline struct {
	recorder    *ActivityRecorder
	gate        *SecurityGate
	resolver    *ProviderResolver
	connections ports.ConnectionRepository
	syncClient  ports.SyncClient
	analytics   ports.Analytics
	reporter    ports.ErrorReporter
	metrics     ports.Metrics
	tasks       *TaskRunner
	logger      zerolog.Logger

	stageTimeout time.Duration
	syncTimeout  time.Duration
}

// CredentialPipelineDeps groups the collaborators of a CredentialPipeline
type CredentialPipelineDeps struct {
	Recorder    *ActivityRecorder
	Gate        *SecurityGate
	Resolver    *ProviderResolver
	Connections ports.ConnectionRepository
	SyncClient  ports.SyncClient
	Analytics   ports.Analytics
	Reporter    ports.ErrorReporter
	Metrics     ports.Metrics
	Tasks       *TaskRunner
}

// NewCredentialPipeline creates a new credential pipeline
func NewCredentialPipeline(deps CredentialPipelineDeps, opts PipelineOptions, logger zerolog.Logger) *CredentialPipeline {
	if opts.StageTimeout <= 0 {
		opts.StageTimeout = defaultStageTimeout
	}
	if opts.SyncTimeout <= 0 {
		opts.SyncTimeout = defaultSyncTimeout
	}
	return &CredentialPipeline{
		recorder:     deps.Recorder,
		gate:         deps.Gate,
		resolver:     deps.Resolver,
		connections:  deps.Connections,
		syncClient:   deps.SyncClient,
		analytics:    deps.Analytics,
		reporter:     deps.Reporter,
		metrics:      deps.Metrics,
		tasks:        deps.Tasks,
		logger:       logger,
		stageTimeout: opts.StageTimeout,
		syncTimeout:  opts.SyncTimeout,
	}
}

// authFlow is the per-mode shape of the pipeline
type authFlow struct {
	mode           domain.AuthMode
	label          string
	analyticsEvent string
	// checkUsernameFirst runs the username presence check before the security gate
	checkUsernameFirst bool
	// checkAPIKeyAfterResolve runs the apiKey presence check after provider resolution
	checkAPIKeyAfterResolve bool
	credential              func(req AuthRequest) domain.Credential
	successMessage          func(req AuthRequest) string
}

var apiKeyFlow = authFlow{
	mode:                    domain.AuthModeAPIKey,
	label:                   "API key",
	analyticsEvent:          EventPreAPIKeyAuth,
	checkAPIKeyAfterResolve: true,
	credential: func(req AuthRequest) domain.Credential {
		return domain.APIKeyCredential{APIKey: req.APIKey}
	},
	successMessage: func(AuthRequest) string {
		return "API key auth creation was successful"
	},
}

var basicFlow = authFlow{
	mode:               domain.AuthModeBasic,
	label:              "basic API",
	analyticsEvent:     EventPreBasicAuth,
	checkUsernameFirst: true,
	credential: func(req AuthRequest) domain.Credential {
		return domain.BasicCredential{Username: req.Username, Password: req.Password}
	},
	successMessage: func(req AuthRequest) string {
		return fmt.Sprintf("Basic API auth creation was successful with the username %s", req.Username)
	},
}

// authAttempt is the mutable state threaded through the steps
type authAttempt struct {
	req        AuthRequest
	flow       *authFlow
	logID      string
	config     *domain.ProviderConfig
	credential domain.Credential
	connection *domain.Connection
	syncTask   *Task
	finalized  bool
}

type authStep func(ctx context.Context, a *authAttempt) error

// AuthorizeAPIKey runs the API key flow.
// Order: identity, security gate, provider resolution, apiKey presence.
func (p *CredentialPipeline) AuthorizeAPIKey(ctx context.Context, req AuthRequest) (*AuthResult, error) {
	return p.run(ctx, &apiKeyFlow, req)
}

// AuthorizeBasic runs the basic auth flow.
// Order: identity, username presence, security gate, provider resolution.
func (p *CredentialPipeline) AuthorizeBasic(ctx context.Context, req AuthRequest) (*AuthResult, error) {
	return p.run(ctx, &basicFlow, req)
}

func (p *CredentialPipeline) steps(flow *authFlow) []authStep {
	steps := []authStep{p.validateIdentity}
	if flow.checkUsernameFirst {
		steps = append(steps, p.validateUsername)
	}
	steps = append(steps, p.securityCheck, p.resolveProvider)
	if flow.checkAPIKeyAfterResolve {
		steps = append(steps, p.validateAPIKey)
	}
	return append(steps, p.extractCredential, p.recordSuccess, p.persist, p.triggerSync)
}

func (p *CredentialPipeline) run(ctx context.Context, flow *authFlow, req AuthRequest) (*AuthResult, error) {
	attempt := &authAttempt{req: req, flow: flow}
	attempt.logID = p.recorder.Open(ctx, domain.AttemptMeta{
		ConnectionID:      req.ConnectionID,
		ProviderConfigKey: req.ProviderConfigKey,
		EnvironmentID:     req.EnvironmentID,
	})

	p.track(ctx, flow, req)

	for _, step := range p.steps(flow) {
		if err := step(ctx, attempt); err != nil {
			return nil, p.fail(ctx, attempt, err)
		}
	}

	p.observe(flow.mode, "success")
	p.logger.Info().
		Str("providerConfigKey", req.ProviderConfigKey).
		Str("connectionId", req.ConnectionID).
		Str("environmentId", req.EnvironmentID).
		Str("authMode", string(flow.mode)).
		Bool("syncStarted", attempt.syncTask != nil).
		Msg("Connection authorized")

	return &AuthResult{
		LogID:      attempt.logID,
		Connection: attempt.connection,
		SyncTask:   attempt.syncTask,
	}, nil
}

func (p *CredentialPipeline) validateIdentity(_ context.Context, a *authAttempt) error {
	if a.req.ProviderConfigKey == "" {
		return domain.NewAuthError(domain.CodeMissingConnection, nil)
	}
	if a.req.ConnectionID == "" {
		return domain.NewAuthError(domain.CodeMissingConnectionID, nil)
	}
	return nil
}

func (p *CredentialPipeline) validateUsername(_ context.Context, a *authAttempt) error {
	if a.req.Username == "" {
		return domain.NewAuthError(domain.CodeMissingBasicUsername, nil)
	}
	return nil
}

func (p *CredentialPipeline) securityCheck(ctx context.Context, a *authAttempt) error {
	stageCtx, cancel := p.stage(ctx)
	defer cancel()
	return p.gate.Check(stageCtx, a.req.Signature, a.req.EnvironmentID, a.req.ProviderConfigKey, a.req.ConnectionID)
}

func (p *CredentialPipeline) resolveProvider(ctx context.Context, a *authAttempt) error {
	stageCtx, cancel := p.stage(ctx)
	defer cancel()

	config, err := p.resolver.ResolveFor(stageCtx, a.req.ProviderConfigKey, a.req.EnvironmentID, a.flow.mode)
	a.config = config
	if err != nil {
		return err
	}
	p.recorder.SetProvider(ctx, a.logID, config.Provider)
	return nil
}

func (p *CredentialPipeline) validateAPIKey(_ context.Context, a *authAttempt) error {
	if a.req.APIKey == "" {
		return domain.NewAuthError(domain.CodeMissingAPIKey, nil)
	}
	return nil
}

func (p *CredentialPipeline) extractCredential(_ context.Context, a *authAttempt) error {
	a.credential = a.flow.credential(a.req)
	return nil
}

// recordSuccess closes the audit entry before the connection is written
func (p *CredentialPipeline) recordSuccess(ctx context.Context, a *authAttempt) error {
	p.recorder.Append(ctx, a.logID, domain.LogLevelInfo, a.flow.successMessage(a.req))
	p.recorder.Finalize(ctx, a.logID, true)
	a.finalized = true
	return nil
}

func (p *CredentialPipeline) persist(ctx context.Context, a *authAttempt) error {
	stageCtx, cancel := p.stage(ctx)
	defer cancel()

	connection, err := p.connections.UpsertAPIConnection(stageCtx, domain.UpsertConnectionInput{
		ConnectionID:      a.req.ConnectionID,
		ProviderConfigKey: a.req.ProviderConfigKey,
		Provider:          a.config.Provider,
		Credential:        a.credential,
		ConnectionConfig:  ParseConnectionConfig(a.req.Params),
		EnvironmentID:     a.req.EnvironmentID,
		AccountID:         a.req.AccountID,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert connection: %w", err)
	}
	a.connection = connection
	return nil
}

func (p *CredentialPipeline) triggerSync(ctx context.Context, a *authAttempt) error {
	if a.connection == nil || p.syncClient == nil || p.tasks == nil {
		return nil
	}
	connectionID := a.connection.ID
	a.syncTask = p.tasks.Go(ctx, "sync.initiate", p.syncTimeout, func(taskCtx context.Context) error {
		return p.syncClient.Initiate(taskCtx, connectionID)
	})
	return nil
}

// fail records the failure on the audit entry and maps it for the caller.
// Expected errors are returned as is; anything else is reported and wrapped
// for the general error handler.
func (p *CredentialPipeline) fail(ctx context.Context, a *authAttempt, err error) error {
	if domain.IsExpected(err) {
		code := domain.ErrorCode(err)
		p.recorder.Append(ctx, a.logID, domain.LogLevelError, p.failureMessage(a, code))
		p.finalizeFailed(ctx, a)
		p.observe(a.flow.mode, code)
		return err
	}

	p.recorder.Append(ctx, a.logID, domain.LogLevelError,
		fmt.Sprintf("Error during %s auth: %s", a.flow.label, domain.RedactError(err)))
	p.finalizeFailed(ctx, a)

	metadata := map[string]any{
		"accountId":         a.req.AccountID,
		"providerConfigKey": a.req.ProviderConfigKey,
		"connectionId":      a.req.ConnectionID,
	}
	if p.reporter != nil {
		p.reporter.Report(ctx, err, a.req.AccountID, metadata)
	}
	p.observe(a.flow.mode, domain.CodeServerError)
	p.logger.Error().
		Str("error", domain.RedactError(err)).
		Str("providerConfigKey", a.req.ProviderConfigKey).
		Str("connectionId", a.req.ConnectionID).
		Str("authMode", string(a.flow.mode)).
		Msg("Authorization failed unexpectedly")

	return domain.NewUnexpectedError(err, fmt.Sprintf("%s auth failed", a.flow.label), metadata)
}

func (p *CredentialPipeline) finalizeFailed(ctx context.Context, a *authAttempt) {
	if a.finalized {
		return
	}
	p.recorder.Finalize(ctx, a.logID, false)
	a.finalized = true
}

func (p *CredentialPipeline) failureMessage(a *authAttempt, code string) string {
	switch code {
	case domain.CodeMissingConnection:
		return "Missing Provider Config unique key"
	case domain.CodeMissingConnectionID:
		return "Missing connection_id in query params"
	case domain.CodeMissingBasicUsername:
		return "Missing username in request body"
	case domain.CodeMissingAPIKey:
		return "Missing apiKey in request body"
	case domain.CodeMissingSignature:
		return "Missing HMAC in query params"
	case domain.CodeInvalidSignature:
		return "Invalid HMAC"
	case domain.CodeUnknownProviderConfig:
		return fmt.Sprintf("Error during %s auth: config not found", a.flow.label)
	case domain.CodeInvalidAuthMode:
		provider := ""
		if a.config != nil {
			provider = a.config.Provider
		}
		return fmt.Sprintf("Provider %s does not support %s auth", provider, a.flow.label)
	default:
		return fmt.Sprintf("Error during %s auth: %s", a.flow.label, code)
	}
}

func (p *CredentialPipeline) track(ctx context.Context, flow *authFlow, req AuthRequest) {
	if p.analytics == nil || p.tasks == nil {
		return
	}
	p.tasks.Go(ctx, "analytics.track", p.stageTimeout, func(taskCtx context.Context) error {
		return p.analytics.Track(taskCtx, flow.analyticsEvent, req.AccountID, map[string]any{
			"providerConfigKey": req.ProviderConfigKey,
		})
	})
}

func (p *CredentialPipeline) stage(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.stageTimeout)
}

func (p *CredentialPipeline) observe(mode domain.AuthMode, outcome string) {
	if p.metrics != nil {
		p.metrics.AuthAttempt(mode, outcome)
	}
}
