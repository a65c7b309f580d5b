package onboarding

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clawkit/internal/adapter/store"
	"clawkit/internal/adapter/validation"
	"clawkit/internal/domain"
	"clawkit/internal/infra/config"
)

// fakeValidator records calls and returns configured errors. When gate is
// non-nil every call blocks until gate is closed or ctx is done.
type fakeValidator struct {
	mu       sync.Mutex
	urlErr   error
	keyErr   error
	gate     chan struct{}
	urlCalls []string
	keyCalls []string
}

func (f *fakeValidator) wait(ctx context.Context) error {
	if f.gate == nil {
		return nil
	}
	select {
	case <-f.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeValidator) ValidateGatewayURL(ctx context.Context, rawURL string) error {
	f.mu.Lock()
	f.urlCalls = append(f.urlCalls, rawURL)
	err := f.urlErr
	f.mu.Unlock()
	if werr := f.wait(ctx); werr != nil {
		return werr
	}
	return err
}

func (f *fakeValidator) ValidateAPIKey(ctx context.Context, key string, _ domain.Provider) error {
	f.mu.Lock()
	f.keyCalls = append(f.keyCalls, key)
	err := f.keyErr
	f.mu.Unlock()
	if werr := f.wait(ctx); werr != nil {
		return werr
	}
	return err
}

type fakeStore struct {
	mu    sync.Mutex
	err   error
	saved []domain.Configuration
}

func (f *fakeStore) Save(_ context.Context, cfg domain.Configuration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, cfg)
	return nil
}

type fakeLauncher struct {
	err error
	got []domain.LaunchConfig
}

func (f *fakeLauncher) Launch(_ context.Context, cfg domain.LaunchConfig) error {
	f.got = append(f.got, cfg)
	return f.err
}

func newTestController(v domain.Validator, s domain.ConfigStore, l domain.Launcher) *Controller {
	return New(v, s, l, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

func await(t *testing.T, ch <-chan Outcome) Outcome {
	t.Helper()
	select {
	case o := <-ch:
		return o
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for outcome")
		return Outcome{}
	}
}

// walkTo fills every field and advances until the controller reaches step.
func walkTo(t *testing.T, c *Controller, step domain.WizardStep) {
	t.Helper()
	c.SetGatewayURL("https://gw.example.com")
	c.SetAPIKey("abcdefghij")
	c.AddChannel(domain.ChannelTelegram)
	for c.Snapshot().Step < step {
		o := await(t, c.Advance())
		require.NoError(t, o.Err)
	}
}

func TestNewControllerInitialState(t *testing.T) {
	c := newTestController(&fakeValidator{}, &fakeStore{}, nil)
	defer c.Close()

	s := c.Snapshot()
	assert.Equal(t, domain.StepWelcome, s.Step)
	assert.Equal(t, domain.ProviderAnthropic, s.Provider)
	assert.Zero(t, s.Channels.Len())
	assert.False(t, s.IsLoading)
	assert.Empty(t, s.ErrorMessage)
	assert.False(t, s.Saved)
}

func TestAdvanceWelcomeIsSynchronous(t *testing.T) {
	v := &fakeValidator{}
	c := newTestController(v, &fakeStore{}, nil)
	defer c.Close()

	ch := c.Advance()
	// Delivered before Advance returned.
	select {
	case o := <-ch:
		assert.NoError(t, o.Err)
		assert.Equal(t, domain.StepNetworkSetup, o.To)
		assert.True(t, o.Moved())
	default:
		t.Fatal("welcome step should complete without waiting")
	}
	assert.Empty(t, v.urlCalls)
}

func TestHappyPath(t *testing.T) {
	v := &fakeValidator{}
	st := &fakeStore{}
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := New(v, st, nil, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), WithClock(func() time.Time { return fixed }))
	defer c.Close()

	require.NoError(t, await(t, c.Advance()).Err)

	c.SetGatewayURL("  https://gw.example.com  ")
	o := await(t, c.Advance())
	require.NoError(t, o.Err)
	assert.Equal(t, domain.StepAPIKeyConfig, o.To)

	c.SetAPIKey("abcdefghij")
	require.NoError(t, c.SetProvider(domain.ProviderOpenAI))
	o = await(t, c.Advance())
	require.NoError(t, o.Err)
	assert.Equal(t, domain.StepChannelSetup, o.To)

	c.AddChannel(domain.ChannelTelegram)
	c.AddChannel(domain.ChannelSlack)
	o = await(t, c.Advance())
	require.NoError(t, o.Err)
	assert.Equal(t, domain.StepCompletion, o.To)

	o = await(t, c.Advance())
	require.NoError(t, o.Err)
	assert.True(t, o.Saved)
	assert.False(t, o.Moved())

	s := c.Snapshot()
	assert.Equal(t, domain.StepCompletion, s.Step)
	assert.Empty(t, s.ErrorMessage)
	assert.False(t, s.IsLoading)
	assert.True(t, s.Saved)

	assert.Equal(t, []string{"https://gw.example.com"}, v.urlCalls)
	assert.Equal(t, []string{"abcdefghij"}, v.keyCalls)
	require.Len(t, st.saved, 1)
	saved := st.saved[0]
	assert.Equal(t, "https://gw.example.com", saved.GatewayURL)
	assert.Equal(t, domain.ProviderOpenAI, saved.Provider)
	assert.Equal(t, []domain.Channel{domain.ChannelTelegram, domain.ChannelSlack}, saved.Channels.Sorted())
	assert.Equal(t, fixed, saved.CreatedAt)
}

func TestAdvanceFailureKeepsStep(t *testing.T) {
	tests := []struct {
		name    string
		step    domain.WizardStep
		setup   func(v *fakeValidator, s *fakeStore)
		wantMsg string
		wantErr error
	}{
		{
			name: "network error",
			step: domain.StepNetworkSetup,
			setup: func(v *fakeValidator, _ *fakeStore) {
				v.urlErr = domain.NewDomainError("Validation.GatewayURL", domain.ErrNetwork, "connection refused")
			},
			wantMsg: "Invalid Gateway URL: connection refused",
			wantErr: domain.ErrNetwork,
		},
		{
			name: "invalid key",
			step: domain.StepAPIKeyConfig,
			setup: func(v *fakeValidator, _ *fakeStore) {
				v.keyErr = domain.NewDomainError("Validation.APIKey", domain.ErrKeyValidationFailed, "too short")
			},
			wantMsg: "API Key Validation Failed: too short",
			wantErr: domain.ErrKeyValidationFailed,
		},
		{
			name: "save failed",
			step: domain.StepCompletion,
			setup: func(_ *fakeValidator, s *fakeStore) {
				s.err = domain.NewDomainError("Store.Save", domain.ErrSaveFailed, "disk full")
			},
			wantMsg: "Configuration Save Failed: disk full",
			wantErr: domain.ErrSaveFailed,
		},
		{
			name: "unclassified",
			step: domain.StepNetworkSetup,
			setup: func(v *fakeValidator, _ *fakeStore) {
				v.urlErr = errors.New("boom")
			},
			wantMsg: "Unexpected error: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, st := &fakeValidator{}, &fakeStore{}
			c := newTestController(v, st, nil)
			defer c.Close()

			walkTo(t, c, tt.step)
			tt.setup(v, st)

			o := await(t, c.Advance())
			require.Error(t, o.Err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, o.Err, tt.wantErr)
			}
			assert.False(t, o.Moved())

			s := c.Snapshot()
			assert.Equal(t, tt.step, s.Step)
			assert.Equal(t, tt.wantMsg, s.ErrorMessage)
			assert.False(t, s.IsLoading)
			assert.False(t, s.Saved)
		})
	}
}

func TestErrorClearedOnRetry(t *testing.T) {
	v := &fakeValidator{urlErr: domain.ErrNetwork}
	c := newTestController(v, &fakeStore{}, nil)
	defer c.Close()

	walkTo(t, c, domain.StepNetworkSetup)
	await(t, c.Advance())
	require.NotEmpty(t, c.Snapshot().ErrorMessage)

	v.mu.Lock()
	v.urlErr = nil
	v.gate = make(chan struct{})
	v.mu.Unlock()

	ch := c.Advance()
	loading := c.Snapshot()
	assert.True(t, loading.IsLoading)
	assert.Empty(t, loading.ErrorMessage, "error must be cleared when the attempt starts")

	close(v.gate)
	o := await(t, ch)
	require.NoError(t, o.Err)
	assert.Equal(t, domain.StepAPIKeyConfig, c.Snapshot().Step)
}

func TestAdvanceWhileLoadingIsBusy(t *testing.T) {
	v := &fakeValidator{gate: make(chan struct{})}
	c := newTestController(v, &fakeStore{}, nil)
	defer c.Close()

	require.NoError(t, await(t, c.Advance()).Err)
	c.SetGatewayURL("https://gw.example.com")

	first := c.Advance()
	before := c.Snapshot()
	require.True(t, before.IsLoading)

	busy := await(t, c.Advance())
	assert.ErrorIs(t, busy.Err, domain.ErrBusy)
	assert.Equal(t, before, c.Snapshot(), "a rejected attempt must not touch state")

	close(v.gate)
	require.NoError(t, await(t, first).Err)
	assert.Len(t, v.urlCalls, 1)
}

func TestPreconditions(t *testing.T) {
	v := &fakeValidator{}
	c := newTestController(v, &fakeStore{}, nil)
	defer c.Close()

	require.NoError(t, await(t, c.Advance()).Err)

	o := await(t, c.Advance())
	assert.ErrorIs(t, o.Err, domain.ErrPrecondition)
	assert.Equal(t, "Please enter a gateway URL", c.Snapshot().ErrorMessage)
	assert.Empty(t, v.urlCalls, "no validation without a URL")

	c.SetGatewayURL("https://gw.example.com")
	require.NoError(t, await(t, c.Advance()).Err)

	c.SetAPIKey("   ")
	o = await(t, c.Advance())
	assert.ErrorIs(t, o.Err, domain.ErrPrecondition)
	assert.Empty(t, v.keyCalls)

	c.SetAPIKey("abcdefghij")
	require.NoError(t, await(t, c.Advance()).Err)

	o = await(t, c.Advance())
	assert.ErrorIs(t, o.Err, domain.ErrPrecondition)
	assert.Equal(t, domain.StepChannelSetup, c.Snapshot().Step)
	assert.Equal(t, "Please select at least one channel", c.Snapshot().ErrorMessage)
}

func TestAdvanceMovesAtMostOneStep(t *testing.T) {
	c := newTestController(&fakeValidator{}, &fakeStore{}, nil)
	defer c.Close()
	c.SetGatewayURL("https://gw.example.com")
	c.SetAPIKey("abcdefghij")
	c.AddChannel(domain.ChannelDiscord)

	for i := 0; i < int(domain.StepCount)+2; i++ {
		before := c.Snapshot().Step
		o := await(t, c.Advance())
		after := c.Snapshot()
		assert.False(t, after.IsLoading)
		if o.Err != nil {
			assert.Equal(t, before, after.Step)
			assert.NotEmpty(t, after.ErrorMessage)
			continue
		}
		if before == domain.StepCompletion {
			assert.Equal(t, before, after.Step)
		} else {
			assert.Equal(t, before+1, after.Step)
		}
	}
	assert.Equal(t, domain.StepCompletion, c.Snapshot().Step)
}

func TestChannelMutatorsIdempotent(t *testing.T) {
	c := newTestController(&fakeValidator{}, &fakeStore{}, nil)
	defer c.Close()

	c.AddChannel(domain.ChannelSlack)
	c.AddChannel(domain.ChannelSlack)
	assert.Equal(t, 1, c.Snapshot().Channels.Len())

	c.RemoveChannel(domain.ChannelSlack)
	c.RemoveChannel(domain.ChannelSlack)
	assert.Zero(t, c.Snapshot().Channels.Len())

	assert.True(t, c.ToggleChannel(domain.ChannelSignal))
	assert.False(t, c.ToggleChannel(domain.ChannelSignal))
	assert.False(t, c.Snapshot().Channels.Contains(domain.ChannelSignal))
}

func TestSnapshotIsACopy(t *testing.T) {
	c := newTestController(&fakeValidator{}, &fakeStore{}, nil)
	defer c.Close()

	s := c.Snapshot()
	s.Channels.Add(domain.ChannelIMessage)
	assert.False(t, c.Snapshot().Channels.Contains(domain.ChannelIMessage))
}

func TestSetProviderRejectsUnknown(t *testing.T) {
	c := newTestController(&fakeValidator{}, &fakeStore{}, nil)
	defer c.Close()

	assert.ErrorIs(t, c.SetProvider("mistral"), domain.ErrPrecondition)
	assert.Equal(t, domain.ProviderAnthropic, c.Snapshot().Provider)
}

func TestLaunch(t *testing.T) {
	l := &fakeLauncher{}
	c := newTestController(&fakeValidator{}, &fakeStore{}, l)
	defer c.Close()

	assert.ErrorIs(t, c.Launch(context.Background()), domain.ErrNotSaved)

	walkTo(t, c, domain.StepCompletion)
	assert.ErrorIs(t, c.Launch(context.Background()), domain.ErrNotSaved)

	require.NoError(t, await(t, c.Advance()).Err)
	require.NoError(t, c.Launch(context.Background()))

	require.Len(t, l.got, 1)
	assert.Equal(t, "https://gw.example.com", l.got[0].GatewayURL)
	assert.Equal(t, []domain.Channel{domain.ChannelTelegram}, l.got[0].Channels)
}

func TestLaunchFailureSetsError(t *testing.T) {
	l := &fakeLauncher{err: domain.NewDomainError("Launcher.Launch", domain.ErrLaunchFailed, "exit status 1")}
	c := newTestController(&fakeValidator{}, &fakeStore{}, l)
	defer c.Close()

	walkTo(t, c, domain.StepCompletion)
	require.NoError(t, await(t, c.Advance()).Err)

	assert.ErrorIs(t, c.Launch(context.Background()), domain.ErrLaunchFailed)
	assert.Equal(t, "Launch Failed: exit status 1", c.Snapshot().ErrorMessage)
}

func TestCloseDiscardsInFlightResult(t *testing.T) {
	v := &fakeValidator{gate: make(chan struct{})}
	c := newTestController(v, &fakeStore{}, nil)

	walkTo(t, c, domain.StepNetworkSetup)
	ch := c.Advance()
	require.True(t, c.Snapshot().IsLoading)

	c.Close()
	o := await(t, ch)
	assert.ErrorIs(t, o.Err, domain.ErrClosed)

	s := c.Snapshot()
	assert.Equal(t, domain.StepNetworkSetup, s.Step)
	assert.Empty(t, s.ErrorMessage)
	assert.False(t, s.IsLoading, "closed controller must not report loading")

	assert.ErrorIs(t, await(t, c.Advance()).Err, domain.ErrClosed)
	assert.ErrorIs(t, c.Launch(context.Background()), domain.ErrClosed)
	c.Close()
}

func TestLoggingNeverLeaksKey(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := New(&fakeValidator{}, &fakeStore{}, nil, logger)
	defer c.Close()

	walkTo(t, c, domain.StepCompletion)
	require.NoError(t, await(t, c.Advance()).Err)

	assert.NotContains(t, buf.String(), "abcdefghij")
	assert.Contains(t, buf.String(), "****")
}

// TestScenariosWithRealAdapters runs the wizard against the real validation
// service and the console store.
func TestScenariosWithRealAdapters(t *testing.T) {
	svc := validation.NewService(config.ValidationConfig{ProbeTimeout: time.Second, MinKeyLength: 10}, nil)

	t.Run("malformed url", func(t *testing.T) {
		c := newTestController(svc, &fakeStore{}, nil)
		defer c.Close()
		require.NoError(t, await(t, c.Advance()).Err)

		c.SetGatewayURL("not a url")
		o := await(t, c.Advance())
		assert.ErrorIs(t, o.Err, domain.ErrInvalidURL)
		assert.True(t, strings.HasPrefix(c.Snapshot().ErrorMessage, "Invalid Gateway URL"))
	})

	t.Run("key checks", func(t *testing.T) {
		for key, ok := range map[string]bool{"abcdefghi": false, "abcdefghij": true} {
			v := &keyOnly{svc: svc}
			c := newTestController(v, &fakeStore{}, nil)
			walkTo(t, c, domain.StepAPIKeyConfig)
			c.SetAPIKey(key)
			o := await(t, c.Advance())
			if ok {
				assert.NoError(t, o.Err, key)
			} else {
				assert.ErrorIs(t, o.Err, domain.ErrKeyValidationFailed, key)
			}
			c.Close()
		}
	})

	t.Run("console save", func(t *testing.T) {
		var out bytes.Buffer
		c := newTestController(&fakeValidator{}, store.NewConsoleStore(&out, 0), nil)
		defer c.Close()
		walkTo(t, c, domain.StepCompletion)

		require.NoError(t, await(t, c.Advance()).Err)
		assert.NotContains(t, out.String(), "abcdefghij")
		assert.Contains(t, out.String(), "****")
	})
}

// keyOnly accepts every gateway URL and delegates key checks.
type keyOnly struct{ svc *validation.Service }

func (k *keyOnly) ValidateGatewayURL(context.Context, string) error { return nil }

func (k *keyOnly) ValidateAPIKey(ctx context.Context, key string, p domain.Provider) error {
	return k.svc.ValidateAPIKey(ctx, key, p)
}
