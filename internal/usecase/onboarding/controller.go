// Package onboarding drives the setup wizard: a strictly forward sequence of
// welcome, network setup, API key, channel selection and completion steps.
package onboarding

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"clawkit/internal/domain"
)

// Controller owns the wizard state and performs the validation and save
// calls behind each step. It is safe for concurrent use; at most one
// validation or save is outstanding at a time.
type Controller struct {
	validator domain.Validator
	store     domain.ConfigStore
	launcher  domain.Launcher
	logger    *slog.Logger
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	state  State
	closed bool
}

// Option customizes a Controller.
type Option func(*Controller)

// WithClock overrides the time source used to stamp saved configurations.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New creates a controller at the welcome step. launcher may be nil when
// the caller never launches.
func New(validator domain.Validator, store domain.ConfigStore, launcher domain.Launcher, logger *slog.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		validator: validator,
		store:     store,
		launcher:  launcher,
		logger:    logger,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		state:     newState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// SetGatewayURL updates the gateway URL field.
func (c *Controller) SetGatewayURL(u string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.GatewayURL = strings.TrimSpace(u)
}

// SetAPIKey updates the API key field.
func (c *Controller) SetAPIKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.APIKey = strings.TrimSpace(key)
}

// SetProvider selects the AI provider. Unknown providers are rejected.
func (c *Controller) SetProvider(p domain.Provider) error {
	if !p.Valid() {
		return domain.NewDomainError("Onboarding.SetProvider", domain.ErrPrecondition, "unknown provider "+string(p))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Provider = p
	return nil
}

// AddChannel selects ch. Adding a selected channel is a no-op.
func (c *Controller) AddChannel(ch domain.Channel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Channels.Add(ch)
}

// RemoveChannel deselects ch. Removing an unselected channel is a no-op.
func (c *Controller) RemoveChannel(ch domain.Channel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Channels.Remove(ch)
}

// ToggleChannel flips the selection of ch and reports whether it is now selected.
func (c *Controller) ToggleChannel(ch domain.Channel) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Channels.Toggle(ch)
}

// Advance attempts to leave the current step. The returned channel delivers
// exactly one Outcome, after the outcome has been applied to the state, and
// is then closed. Steps without I/O complete before Advance returns.
//
// A call made while another attempt is loading yields ErrBusy and leaves the
// state untouched. After Close every call yields ErrClosed.
func (c *Controller) Advance() <-chan Outcome {
	out := make(chan Outcome, 1)

	c.mu.Lock()
	defer c.mu.Unlock()

	from := c.state.Step
	switch {
	case c.closed:
		out <- Outcome{From: from, To: from, Err: domain.ErrClosed}
		close(out)
		return out
	case c.state.IsLoading:
		out <- Outcome{From: from, To: from, Err: domain.ErrBusy}
		close(out)
		return out
	}

	c.state.ErrorMessage = ""

	var op func(context.Context) error
	switch from {
	case domain.StepWelcome, domain.StepChannelSetup:
		if err := c.checkPrecondition(from); err != nil {
			out <- c.failLocked(from, err)
		} else {
			out <- c.moveLocked(from)
		}
		close(out)
		return out

	case domain.StepNetworkSetup:
		gatewayURL := c.state.GatewayURL
		op = func(ctx context.Context) error {
			return c.validator.ValidateGatewayURL(ctx, gatewayURL)
		}

	case domain.StepAPIKeyConfig:
		key, provider := c.state.APIKey, c.state.Provider
		op = func(ctx context.Context) error {
			return c.validator.ValidateAPIKey(ctx, key, provider)
		}

	case domain.StepCompletion:
		cfg := c.state.configuration()
		cfg.CreatedAt = c.now().UTC()
		op = func(ctx context.Context) error {
			return c.store.Save(ctx, cfg)
		}

	default:
		out <- c.failLocked(from, domain.NewDomainError("Onboarding.Advance", domain.ErrUnknown, "wizard is in an unknown step"))
		close(out)
		return out
	}

	if err := c.checkPrecondition(from); err != nil {
		out <- c.failLocked(from, err)
		close(out)
		return out
	}

	c.state.IsLoading = true
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(out)
		err := op(c.ctx)
		out <- c.finish(from, err)
	}()
	return out
}

// checkPrecondition rejects an attempt whose required field is empty
// before any I/O happens.
func (c *Controller) checkPrecondition(step domain.WizardStep) error {
	var detail string
	switch step {
	case domain.StepNetworkSetup:
		if c.state.GatewayURL == "" {
			detail = "Please enter a gateway URL"
		}
	case domain.StepAPIKeyConfig:
		if c.state.APIKey == "" {
			detail = "Please enter an API key"
		}
	case domain.StepChannelSetup:
		if c.state.Channels.Len() == 0 {
			detail = "Please select at least one channel"
		}
	}
	if detail == "" {
		return nil
	}
	return domain.NewDomainError("Onboarding.Advance", domain.ErrPrecondition, detail)
}

// finish applies the result of an I/O attempt. Results arriving after Close
// are dropped; only the loading flag is cleared.
func (c *Controller) finish(from domain.WizardStep, err error) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.IsLoading = false
	if c.closed {
		c.logger.Debug("discarding result after close", "step", from.String())
		return Outcome{From: from, To: from, Err: domain.ErrClosed}
	}

	if err != nil {
		return c.failLocked(from, err)
	}

	if from == domain.StepCompletion {
		c.state.Saved = true
		c.logger.Info("configuration saved", "state", c.state)
		return Outcome{From: from, To: from, Saved: true}
	}
	return c.moveLocked(from)
}

func (c *Controller) moveLocked(from domain.WizardStep) Outcome {
	to := from + 1
	c.state.Step = to
	c.logger.Info("wizard step advanced", "from", from.String(), "to", to.String())
	return Outcome{From: from, To: to}
}

func (c *Controller) failLocked(from domain.WizardStep, err error) Outcome {
	c.state.ErrorMessage = domain.Describe(err)
	c.logger.Warn("wizard step failed",
		"step", from.String(),
		"code", string(domain.ErrorCodeOf(err)),
		"error", err,
	)
	return Outcome{From: from, To: from, Err: err}
}

// Launch hands the saved configuration to the launcher. It fails with
// ErrNotSaved until the completion step has been saved.
func (c *Controller) Launch(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrClosed
	}
	if !c.state.Saved {
		c.mu.Unlock()
		return domain.NewDomainError("Onboarding.Launch", domain.ErrNotSaved, "Save the configuration before launching")
	}
	if c.launcher == nil {
		c.mu.Unlock()
		return domain.NewDomainError("Onboarding.Launch", domain.ErrLaunchFailed, "no launcher configured")
	}
	cfg := c.state.configuration().LaunchConfig()
	c.mu.Unlock()

	if err := c.launcher.Launch(ctx, cfg); err != nil {
		c.mu.Lock()
		c.state.ErrorMessage = domain.Describe(err)
		c.mu.Unlock()
		return err
	}
	return nil
}

// Close cancels any outstanding attempt and waits for it to return. Its
// result is discarded and the state is left at rest. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}
