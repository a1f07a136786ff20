package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"archie-core-auth-gateway/internal/domain"
)

func expectCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil error", code)
	}
	if got := domain.ErrorCode(err); got != code {
		t.Fatalf("expected %s, got %q (%v)", code, got, err)
	}
}

func TestPipelineMissingIdentity(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AuthRequest)
		code   string
	}{
		{"missing provider config key", func(r *AuthRequest) { r.ProviderConfigKey = "" }, domain.CodeMissingConnection},
		{"missing connection id", func(r *AuthRequest) { r.ConnectionID = "" }, domain.CodeMissingConnectionID},
		{"both missing reports config key first", func(r *AuthRequest) {
			r.ProviderConfigKey = ""
			r.ConnectionID = ""
		}, domain.CodeMissingConnection},
	}

	for _, tt := range tests {
		for _, mode := range []string{"api_key", "basic"} {
			t.Run(tt.name+"/"+mode, func(t *testing.T) {
				f := newPipelineFixture(t)
				var err error
				if mode == "api_key" {
					req := apiKeyRequest()
					tt.mutate(&req)
					_, err = f.pipeline.AuthorizeAPIKey(context.Background(), req)
				} else {
					req := basicRequest()
					tt.mutate(&req)
					_, err = f.pipeline.AuthorizeBasic(context.Background(), req)
				}
				expectCode(t, err, tt.code)
				if f.connections.upserts != 0 {
					t.Fatalf("expected no upsert, got %d", f.connections.upserts)
				}
				entry := f.logs.only(t)
				if entry.Success {
					t.Fatal("expected the activity log to stay unsuccessful")
				}
				if f.logs.finalizeCount(entry.ID) != 1 {
					t.Fatalf("expected one finalize, got %d", f.logs.finalizeCount(entry.ID))
				}
			})
		}
	}
}

func TestBasicUsernameCheckPrecedesSecurityGate(t *testing.T) {
	f := newPipelineFixture(t)
	f.verifier.enabled = true
	f.verifier.valid = "good"

	req := basicRequest()
	req.Username = ""
	req.Signature = "bad"

	_, err := f.pipeline.AuthorizeBasic(context.Background(), req)
	expectCode(t, err, domain.CodeMissingBasicUsername)
	if f.verifier.calls != 0 {
		t.Fatalf("expected the gate not to run, got %d verify calls", f.verifier.calls)
	}
	if f.configs.calls != 0 {
		t.Fatal("expected no provider resolution")
	}
}

func TestAPIKeyPresenceCheckedAfterResolution(t *testing.T) {
	t.Run("missing api key with valid signature", func(t *testing.T) {
		f := newPipelineFixture(t)
		f.verifier.enabled = true
		f.verifier.valid = "good"

		req := apiKeyRequest()
		req.APIKey = ""
		req.Signature = "good"

		_, err := f.pipeline.AuthorizeAPIKey(context.Background(), req)
		expectCode(t, err, domain.CodeMissingAPIKey)
		if f.configs.calls != 1 {
			t.Fatalf("expected provider resolution before the apiKey check, got %d lookups", f.configs.calls)
		}
		if entry := f.logs.only(t); entry.Provider != "stripe" {
			t.Fatalf("expected provider recorded on the log, got %q", entry.Provider)
		}
	})

	t.Run("unknown config wins over missing api key", func(t *testing.T) {
		f := newPipelineFixture(t)
		req := apiKeyRequest()
		req.APIKey = ""
		req.ProviderConfigKey = "nope"

		_, err := f.pipeline.AuthorizeAPIKey(context.Background(), req)
		expectCode(t, err, domain.CodeUnknownProviderConfig)
	})

	t.Run("invalid auth mode wins over missing api key", func(t *testing.T) {
		f := newPipelineFixture(t)
		req := apiKeyRequest()
		req.APIKey = ""
		req.ProviderConfigKey = "jira-prod"

		_, err := f.pipeline.AuthorizeAPIKey(context.Background(), req)
		expectCode(t, err, domain.CodeInvalidAuthMode)
	})
}

func TestSecurityGate(t *testing.T) {
	t.Run("not required skips the gate", func(t *testing.T) {
		f := newPipelineFixture(t)
		f.verifier.enabled = false

		if _, err := f.pipeline.AuthorizeAPIKey(context.Background(), apiKeyRequest()); err != nil {
			t.Fatalf("expected success without a signature, got %v", err)
		}
		if f.verifier.calls != 0 {
			t.Fatal("expected verify not to be called")
		}
	})

	t.Run("required and missing", func(t *testing.T) {
		f := newPipelineFixture(t)
		f.verifier.enabled = true

		_, err := f.pipeline.AuthorizeAPIKey(context.Background(), apiKeyRequest())
		expectCode(t, err, domain.CodeMissingSignature)
		entry := f.logs.only(t)
		if len(entry.Messages) != 1 || entry.Messages[0].Content != "Missing HMAC in query params" {
			t.Fatalf("unexpected log messages: %+v", entry.Messages)
		}
	})

	t.Run("required and invalid", func(t *testing.T) {
		f := newPipelineFixture(t)
		f.verifier.enabled = true
		f.verifier.valid = "good"

		req := basicRequest()
		req.Signature = "forged"
		_, err := f.pipeline.AuthorizeBasic(context.Background(), req)
		expectCode(t, err, domain.CodeInvalidSignature)
		if f.configs.calls != 0 {
			t.Fatal("expected no provider resolution after a failed gate")
		}
	})

	t.Run("required and valid", func(t *testing.T) {
		f := newPipelineFixture(t)
		f.verifier.enabled = true
		f.verifier.valid = "good"

		req := apiKeyRequest()
		req.Signature = "good"
		if _, err := f.pipeline.AuthorizeAPIKey(context.Background(), req); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
	})
}

func TestInvalidAuthModeForBasicProviderOnAPIKeyEndpoint(t *testing.T) {
	f := newPipelineFixture(t)
	req := apiKeyRequest()
	req.ProviderConfigKey = "jira-prod"

	_, err := f.pipeline.AuthorizeAPIKey(context.Background(), req)
	expectCode(t, err, domain.CodeInvalidAuthMode)

	entry := f.logs.only(t)
	last := entry.Messages[len(entry.Messages)-1]
	if last.Level != domain.LogLevelError || !strings.Contains(last.Content, "jira does not support API key auth") {
		t.Fatalf("unexpected failure message: %+v", last)
	}
}

func TestAPIKeyUpsertIsIdempotent(t *testing.T) {
	f := newPipelineFixture(t)

	first := apiKeyRequest()
	first.APIKey = "sk_old"
	second := apiKeyRequest()
	second.APIKey = "sk_new"

	if _, err := f.pipeline.AuthorizeAPIKey(context.Background(), first); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := f.pipeline.AuthorizeAPIKey(context.Background(), second); err != nil {
		t.Fatalf("second call: %v", err)
	}
	f.drain(t)

	if f.connections.count() != 1 {
		t.Fatalf("expected one connection, got %d", f.connections.count())
	}
	conn := f.connections.get("user-42", "stripe-prod", "env-1")
	if conn == nil {
		t.Fatal("expected the connection to be stored")
	}
	cred, ok := conn.Credential.(domain.APIKeyCredential)
	if !ok {
		t.Fatalf("expected an API key credential, got %T", conn.Credential)
	}
	if cred.APIKey != "sk_new" {
		t.Fatalf("expected latest api key, got %q", cred.APIKey)
	}
}

func TestSuccessFinalizesOnceAndTriggersSyncOnce(t *testing.T) {
	f := newPipelineFixture(t)
	req := basicRequest()
	req.Params = "subdomain=acme&region=eu"

	result, err := f.pipeline.AuthorizeBasic(context.Background(), req)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if result.SyncTask == nil {
		t.Fatal("expected a sync task")
	}
	if err := result.SyncTask.Wait(context.Background()); err != nil {
		t.Fatalf("sync task failed: %v", err)
	}

	entry := f.logs.only(t)
	if !entry.Success {
		t.Fatal("expected the activity log to be successful")
	}
	if f.logs.finalizeCount(entry.ID) != 1 {
		t.Fatalf("expected one finalize, got %d", f.logs.finalizeCount(entry.ID))
	}
	if got := entry.Messages[0].Content; got != "Basic API auth creation was successful with the username ada" {
		t.Fatalf("unexpected success message %q", got)
	}

	if calls := f.sync.initiated(); len(calls) != 1 || calls[0] != result.Connection.ID {
		t.Fatalf("expected one sync initiation for %s, got %v", result.Connection.ID, calls)
	}

	if result.Connection.ConnectionConfig["subdomain"] != "acme" {
		t.Fatalf("expected parsed connection config, got %v", result.Connection.ConnectionConfig)
	}
	cred, ok := result.Connection.Credential.(domain.BasicCredential)
	if !ok || cred.Username != "ada" || cred.Password != "hunter2" {
		t.Fatalf("unexpected credential %#v", result.Connection.Credential)
	}
}

func TestDeclinedPersistenceSkipsSync(t *testing.T) {
	f := newPipelineFixture(t)
	f.connections.decline = true

	result, err := f.pipeline.AuthorizeAPIKey(context.Background(), apiKeyRequest())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	f.drain(t)

	if result.Connection != nil || result.SyncTask != nil {
		t.Fatalf("expected no connection and no sync task, got %+v", result)
	}
	if len(f.sync.initiated()) != 0 {
		t.Fatal("expected no sync initiation")
	}
}

func TestSyncFailureDoesNotFailResponse(t *testing.T) {
	f := newPipelineFixture(t)
	f.sync.err = errors.New("queue unavailable")

	result, err := f.pipeline.AuthorizeAPIKey(context.Background(), apiKeyRequest())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if waitErr := result.SyncTask.Wait(context.Background()); waitErr == nil {
		t.Fatal("expected the sync task to surface its failure")
	}
	f.drain(t)
	if len(f.metrics.failed) != 1 || f.metrics.failed[0] != "sync.initiate" {
		t.Fatalf("expected a recorded task failure, got %v", f.metrics.failed)
	}
}

func TestPersistenceFailureIsRedactedReportedAndForwarded(t *testing.T) {
	f := newPipelineFixture(t)
	f.connections.upsertErr = errors.New("duplicate key")

	_, err := f.pipeline.AuthorizeAPIKey(context.Background(), apiKeyRequest())
	expectCode(t, err, domain.CodeServerError)
	if domain.IsExpected(err) {
		t.Fatal("persistence failures must be forwarded as unexpected")
	}

	if f.reporter.count() != 1 {
		t.Fatalf("expected one report, got %d", f.reporter.count())
	}
	meta := f.reporter.metadata[0]
	if meta["accountId"] != "acct-1" || meta["providerConfigKey"] != "stripe-prod" || meta["connectionId"] != "user-42" {
		t.Fatalf("unexpected report metadata %v", meta)
	}

	entry := f.logs.only(t)
	if !entry.Success {
		t.Fatal("the log is finalized as successful before persistence")
	}
	if f.logs.finalizeCount(entry.ID) != 1 {
		t.Fatalf("expected one finalize, got %d", f.logs.finalizeCount(entry.ID))
	}
	last := entry.Messages[len(entry.Messages)-1]
	if last.Level != domain.LogLevelError || !strings.HasPrefix(last.Content, "Error during API key auth: ") {
		t.Fatalf("unexpected error message %+v", last)
	}
	if !strings.Contains(last.Content, `"message"`) || !strings.Contains(last.Content, `"name"`) {
		t.Fatalf("expected redacted message/name, got %q", last.Content)
	}
	if len(f.sync.initiated()) != 0 {
		t.Fatal("expected no sync initiation after a failed upsert")
	}
}

func TestGateCollaboratorFailureFinalizesAsFailed(t *testing.T) {
	f := newPipelineFixture(t)
	f.verifier.enableErr = errors.New("environment store timeout")

	_, err := f.pipeline.AuthorizeAPIKey(context.Background(), apiKeyRequest())
	expectCode(t, err, domain.CodeServerError)

	entry := f.logs.only(t)
	if entry.Success || f.logs.finalizeCount(entry.ID) != 1 {
		t.Fatalf("expected one failed finalize, got success=%v count=%d", entry.Success, f.logs.finalizeCount(entry.ID))
	}
}

func TestRecorderFailureDoesNotBlockPipeline(t *testing.T) {
	f := newPipelineFixture(t)
	f.logs.createErr = errors.New("audit store down")

	result, err := f.pipeline.AuthorizeAPIKey(context.Background(), apiKeyRequest())
	if err != nil {
		t.Fatalf("expected success despite the recorder failure, got %v", err)
	}
	if result.LogID != "" {
		t.Fatalf("expected no log id, got %q", result.LogID)
	}
	if f.reporter.count() == 0 {
		t.Fatal("expected the recorder failure to be reported")
	}
}

// stalledLogs never answers Create until the caller's context ends
type stalledLogs struct {
	*memoryActivityLogs
}

func (s stalledLogs) Create(ctx context.Context, _ *domain.ActivityLogEntry) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// cancelAwareLogs rejects writes made on a cancelled context
type cancelAwareLogs struct {
	*memoryActivityLogs
}

func (c cancelAwareLogs) AppendMessage(ctx context.Context, logID string, message domain.ActivityLogMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.memoryActivityLogs.AppendMessage(ctx, logID, message)
}

func (c cancelAwareLogs) UpdateSuccess(ctx context.Context, logID string, success bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.memoryActivityLogs.UpdateSuccess(ctx, logID, success)
}

func TestStalledActivityLogIsBoundedByStageTimeout(t *testing.T) {
	f := newPipelineFixture(t)
	f.withLogStore(stalledLogs{f.logs}, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	result, err := f.pipeline.AuthorizeAPIKey(ctx, apiKeyRequest())
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("expected success despite the stalled audit store, got %v", err)
	}
	if result.LogID != "" {
		t.Fatalf("expected no log id, got %q", result.LogID)
	}
	if elapsed > time.Second {
		t.Fatalf("request waited %s on the audit store", elapsed)
	}
	if f.reporter.count() == 0 {
		t.Fatal("expected the stalled write to be reported")
	}
}

func TestFailureIsFinalizedAfterCallerCancels(t *testing.T) {
	f := newPipelineFixture(t)
	f.withLogStore(cancelAwareLogs{f.logs}, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := apiKeyRequest()
	req.ConnectionID = ""
	_, err := f.pipeline.AuthorizeAPIKey(ctx, req)
	expectCode(t, err, domain.CodeMissingConnectionID)

	entry := f.logs.only(t)
	if f.logs.finalizeCount(entry.ID) != 1 {
		t.Fatalf("expected one finalize, got %d", f.logs.finalizeCount(entry.ID))
	}
	if len(entry.Messages) != 1 || entry.Messages[0].Level != domain.LogLevelError {
		t.Fatalf("expected one error message, got %+v", entry.Messages)
	}
	if f.reporter.count() != 0 {
		t.Fatalf("expected no recorder failures, got %d", f.reporter.count())
	}
}
