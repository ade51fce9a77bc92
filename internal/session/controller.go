// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ManuGH/unmark/internal/backend"
	"github.com/ManuGH/unmark/internal/compare"
	"github.com/ManuGH/unmark/internal/geometry"
	xlog "github.com/ManuGH/unmark/internal/log"
	"github.com/ManuGH/unmark/internal/metrics"
	"github.com/ManuGH/unmark/internal/orchestrator"
	"github.com/ManuGH/unmark/internal/region"
)

// MediaFactory opens a playable URL for comparison playback.
type MediaFactory func(playableURL string) (compare.Media, error)

// ClockMediaFactory plays every URL on a wall-clock timeline.
func ClockMediaFactory(playableURL string) (compare.Media, error) {
	return compare.NewClockMedia(compare.SystemClock(), playableURL, 0), nil
}

// Config carries the processing options and comparison tuning.
type Config struct {
	Method  string
	Quality string
	// RequireRegion blocks processing until a non-empty region is drawn.
	RequireRegion bool
	DownloadDir   string
	// UploadTimeout bounds one upload; zero means no limit.
	UploadTimeout time.Duration
	SyncEpsilon   float64
	// SyncInterval is the drift check period; negative disables the loop.
	SyncInterval time.Duration
}

// DefaultConfig returns the page defaults.
func DefaultConfig() Config {
	return Config{
		Method:        orchestrator.DefaultMethod,
		Quality:       orchestrator.DefaultQuality,
		RequireRegion: true,
		DownloadDir:   ".",
		SyncEpsilon:   compare.DefaultEpsilon,
		SyncInterval:  compare.DefaultInterval,
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithMediaFactory overrides how comparison media are opened.
func WithMediaFactory(f MediaFactory) Option {
	return func(c *Controller) { c.media = f }
}

// WithSurface draws the region overlay onto s in addition to the built-in
// canvas, which keeps feeding snapshots.
func WithSurface(s region.Surface) Option {
	return func(c *Controller) { c.surface = s }
}

// Controller is the per-page context object. It serializes every state
// mutation behind one mutex and discards results of superseded calls.
type Controller struct {
	mu sync.Mutex

	root   context.Context
	cancel context.CancelFunc

	client    *backend.Client
	uploader  *orchestrator.Uploader
	processor *orchestrator.Processor
	media     MediaFactory
	cfg       Config
	logger    zerolog.Logger

	id         string
	machine    *Machine
	generation uint64
	seq        uint64
	closed     bool

	file     *orchestrator.File
	upload   *orchestrator.UploadResult
	result   *orchestrator.ProcessResult
	progress int
	failure  *orchestrator.Failure
	message  string

	canvas   *region.Canvas
	surface  region.Surface
	selector *region.Selector

	player   *compare.Player
	stopSync context.CancelFunc
}

// NewController creates an Idle session bound to client.
func NewController(client *backend.Client, cfg Config, opts ...Option) *Controller {
	root, cancel := context.WithCancel(context.Background())
	c := &Controller{
		root:      root,
		cancel:    cancel,
		client:    client,
		uploader:  orchestrator.NewUploader(client),
		processor: orchestrator.NewProcessor(client),
		media:     ClockMediaFactory,
		cfg:       cfg,
		id:        uuid.NewString(),
		machine:   NewMachine(),
		canvas:    region.NewCanvas(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.surface == nil {
		c.surface = c.canvas
	} else {
		c.surface = region.Tee(c.canvas, c.surface)
	}
	c.selector = region.NewSelector(c.surface)
	c.logger = c.sessionLogger()
	return c
}

func (c *Controller) sessionLogger() zerolog.Logger {
	return xlog.WithComponent("session").With().Str(xlog.FieldSessionID, c.id).Logger()
}

// ID returns the current session id. It changes on NewSession.
func (c *Controller) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.State()
}

// Closed reports whether Close has been called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Canvas returns the built-in overlay canvas.
func (c *Controller) Canvas() *region.Canvas { return c.canvas }

// ChooseFile records the user's file choice.
func (c *Controller) ChooseFile(f *orchestrator.File) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guardLocked("choose file", EvFileChosen); err != nil {
		return err
	}
	if f == nil {
		return c.rejectLocked(orchestrator.NewUserInput(orchestrator.ReasonNoFile, orchestrator.MsgSelectVideo))
	}
	if err := c.transitionLocked(EvFileChosen); err != nil {
		return err
	}
	c.file = f
	c.clearFailureLocked()
	c.logger.Info().Str(xlog.FieldEvent, "file.chosen").Str(xlog.FieldFilename, f.Name).Msg("file chosen")
	return nil
}

// StartUpload sends the chosen file. Without a chosen file it fails with a
// user input error and the state does not change.
func (c *Controller) StartUpload(ctx context.Context) (*Call, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guardLocked("upload", EvUploadStarted); err != nil {
		return nil, err
	}
	if c.file == nil {
		return nil, c.rejectLocked(orchestrator.NewUserInput(orchestrator.ReasonNoFile, orchestrator.MsgSelectVideo))
	}
	if err := c.transitionLocked(EvUploadStarted); err != nil {
		return nil, err
	}
	c.progress = 0
	c.clearFailureLocked()

	tk := c.ticketLocked(StateUploading, "upload")
	callCtx, done := c.callContext(ctx)
	if c.cfg.UploadTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, c.cfg.UploadTimeout)
		release := done
		done = func() {
			cancel()
			release()
		}
	}
	stream := c.uploader.Upload(callCtx, c.file)
	call := newCall("upload")
	go func() {
		defer done()
		var err error
		for ev := range stream.Events() {
			if !ev.Terminal() {
				c.onProgress(tk, ev.Percent)
				continue
			}
			err = c.finishUpload(tk, ev)
		}
		call.finish(err)
	}()
	return call, nil
}

// LoadMedia sets the native resolution of the uploaded media. A new
// resolution drops any drawn region; the size already loaded keeps it. Once
// processing starts the resolution is fixed until NewSession.
func (c *Controller) LoadMedia(nativeWidth, nativeHeight int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	switch s := c.machine.State(); s {
	case StateIdle, StateFileSelected, StateReady:
	default:
		return notAllowed("load media", s, ForbiddenMediaLocked)
	}
	if nativeWidth <= 0 || nativeHeight <= 0 {
		return fmt.Errorf("invalid native size %dx%d", nativeWidth, nativeHeight)
	}
	c.selector.LoadMedia(nativeWidth, nativeHeight)
	c.logger.Debug().
		Str(xlog.FieldEvent, "media.loaded").
		Int("native_width", nativeWidth).
		Int("native_height", nativeHeight).
		Msg("media metadata loaded")
	return nil
}

// Fit applies a layout change to the overlay.
func (c *Controller) Fit(displayWidth, displayHeight float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.selector.Fit(displayWidth, displayHeight)
	return nil
}

// PointerDown starts a drag. It fails with ErrNoMedia until both the native
// resolution and the display layout are known.
func (c *Controller) PointerDown(p geometry.Point) (started bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.regionGuardLocked(); err != nil {
		return false, err
	}
	if !c.selector.Metrics().Ready() {
		return false, ErrNoMedia
	}
	return c.selector.PointerDown(p), nil
}

// PointerMove updates the pending rectangle of an active drag.
func (c *Controller) PointerMove(p geometry.Point) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.regionGuardLocked(); err != nil {
		return false, err
	}
	return c.selector.PointerMove(p), nil
}

// PointerUp commits the drag.
func (c *Controller) PointerUp() (geometry.Region, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.regionGuardLocked(); err != nil {
		return geometry.Region{}, false, err
	}
	r, ok := c.selector.PointerUp()
	if ok {
		c.logger.Debug().Str(xlog.FieldEvent, "region.committed").Stringer(xlog.FieldRegion, r).Msg("region selected")
	}
	return r, ok, nil
}

// ClearRegion drops the selection. Clearing an empty selection is a no-op.
func (c *Controller) ClearRegion() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.regionGuardLocked(); err != nil {
		return err
	}
	c.selector.Clear()
	return nil
}

// StartProcess submits the upload with the committed region. A missing
// upload or region fails before any network call and leaves the state as is.
func (c *Controller) StartProcess(ctx context.Context) (*Call, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guardLocked("process", EvProcessStarted); err != nil {
		return nil, err
	}
	req := orchestrator.Request{
		RequireRegion: c.cfg.RequireRegion,
		Method:        c.cfg.Method,
		Quality:       c.cfg.Quality,
	}
	if c.upload != nil {
		req.Filename = c.upload.ServerFilename
	}
	if r, ok := c.selector.Region(); ok {
		req.Region = &r
	}
	if fail := req.Validate(); fail != nil {
		return nil, c.rejectLocked(fail)
	}
	if err := c.transitionLocked(EvProcessStarted); err != nil {
		return nil, err
	}
	c.clearFailureLocked()

	tk := c.ticketLocked(StateProcessing, "process")
	callCtx, done := c.callContext(ctx)
	stream := c.processor.Process(callCtx, req)
	call := newCall("process")
	go func() {
		defer done()
		var err error
		for ev := range stream.Events() {
			if ev.Terminal() {
				err = c.finishProcess(tk, ev)
			}
		}
		call.finish(err)
	}()
	return call, nil
}

// SetProcessOptions changes the method and quality used by later process
// calls. Empty values keep the current setting.
func (c *Controller) SetProcessOptions(method, quality string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if method != "" {
		c.cfg.Method = method
	}
	if quality != "" {
		c.cfg.Quality = quality
	}
}

// Toggle plays or pauses the comparison.
func (c *Controller) Toggle(ctx context.Context) error {
	p, err := c.armedPlayer("toggle playback")
	if err != nil {
		return err
	}
	return p.Toggle(ctx)
}

// SetReveal moves the reveal scrubber and returns the clamped value.
func (c *Controller) SetReveal(percent float64) (float64, error) {
	p, err := c.armedPlayer("reveal")
	if err != nil {
		return 0, err
	}
	return p.SetReveal(percent), nil
}

// Clip returns the processed layer clip for the current overlay size.
func (c *Controller) Clip() (geometry.Box, error) {
	p, err := c.armedPlayer("reveal")
	if err != nil {
		return geometry.Box{}, err
	}
	m := c.Metrics()
	return p.Clip(m.DisplayWidth, m.DisplayHeight), nil
}

// Metrics returns the overlay coordinate metrics.
func (c *Controller) Metrics() geometry.Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selector.Metrics()
}

// Player returns the armed comparison player, or nil.
func (c *Controller) Player() *compare.Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.player
}

// Download saves the processed file into the configured directory.
func (c *Controller) Download(ctx context.Context) (string, int64, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", 0, ErrClosed
	}
	if c.machine.State() != StateComplete || c.result == nil {
		s := c.machine.State()
		c.mu.Unlock()
		return "", 0, notAllowed("download", s, ForbiddenRequiresReady)
	}
	res := *c.result
	dir := c.cfg.DownloadDir
	c.mu.Unlock()

	return c.client.Download(ctx, res.DownloadURL, dir, res.DownloadFilename)
}

// NewSession discards all session data and returns to Idle. In-flight
// results that arrive later are discarded.
func (c *Controller) NewSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.resetLocked()
	err := c.transitionLocked(EvNewSession)
	c.id = uuid.NewString()
	c.logger = c.sessionLogger()
	c.logger.Info().Str(xlog.FieldEvent, "session.new").Uint64(xlog.FieldGeneration, c.generation).Msg("new session")
	return err
}

// Close tears the session down and cancels in-flight calls.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.resetLocked()
	c.closed = true
	c.cancel()
	c.logger.Debug().Str(xlog.FieldEvent, "session.closed").Msg("session closed")
	return nil
}

func (c *Controller) resetLocked() {
	c.generation++
	c.seq++
	c.disarmLocked()
	c.file = nil
	c.upload = nil
	c.result = nil
	c.progress = 0
	c.clearFailureLocked()
	c.selector.Reset()
}

func (c *Controller) disarmLocked() {
	if c.stopSync != nil {
		c.stopSync()
		c.stopSync = nil
	}
	if c.player != nil {
		c.player.Pause()
		c.player = nil
	}
}

func (c *Controller) armedPlayer(action string) (*compare.Player, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if c.machine.State() != StateComplete || c.player == nil {
		return nil, notAllowed(action, c.machine.State(), "requires_complete")
	}
	return c.player, nil
}

func (c *Controller) guardLocked(action string, ev EventKind) error {
	if c.closed {
		return ErrClosed
	}
	if !c.machine.Can(ev) {
		s := c.machine.State()
		return notAllowed(action, s, ForbiddenTransitionReason(s, ev))
	}
	return nil
}

func (c *Controller) regionGuardLocked() error {
	if c.closed {
		return ErrClosed
	}
	if s := c.machine.State(); s != StateReady {
		return notAllowed("select region", s, ForbiddenRequiresReady)
	}
	return nil
}

// rejectLocked surfaces a user input failure without a transition.
func (c *Controller) rejectLocked(fail *orchestrator.Failure) error {
	c.failure = fail
	c.message = fail.Message
	c.logger.Info().
		Str(xlog.FieldEvent, "input.rejected").
		Str(xlog.FieldReason, fail.Reason).
		Str(xlog.FieldStatus, string(c.machine.State())).
		Msg(fail.Message)
	return fail
}

func (c *Controller) clearFailureLocked() {
	c.failure = nil
	c.message = ""
}

func (c *Controller) transitionLocked(ev EventKind) error {
	from := c.machine.State()
	tr, err := c.machine.Dispatch(ev)
	if err != nil {
		metrics.RecordIllegalTransition(string(from), ev.String())
		metrics.RecordTransition(string(from), string(tr.To))
		c.disarmLocked()
		c.message = err.Error()
		c.logger.Error().
			Err(err).
			Str(xlog.FieldOldState, string(from)).
			Str(xlog.FieldNewState, string(tr.To)).
			Msg("illegal transition")
		return err
	}
	metrics.RecordTransition(string(tr.From), string(tr.To))
	c.logger.Debug().
		Str(xlog.FieldEvent, ev.String()).
		Str(xlog.FieldOldState, string(tr.From)).
		Str(xlog.FieldNewState, string(tr.To)).
		Msg("state transition")
	return nil
}

func (c *Controller) ticketLocked(want State, op string) ticket {
	c.seq++
	return ticket{generation: c.generation, seq: c.seq, want: want, op: op}
}

func (c *Controller) staleLocked(tk ticket) bool {
	return c.generation != tk.generation || c.seq != tk.seq || c.machine.State() != tk.want
}

// callContext detaches the call from the caller's cancellation so that it
// outlives a request handler, and binds it to the controller lifetime.
func (c *Controller) callContext(ctx context.Context) (context.Context, func()) {
	callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	callCtx = xlog.ContextWithSessionID(callCtx, c.id)
	stop := context.AfterFunc(c.root, cancel)
	return callCtx, func() {
		stop()
		cancel()
	}
}

func (c *Controller) discardLocked(tk ticket) error {
	metrics.RecordStaleResult(tk.op)
	c.logger.Info().
		Str(xlog.FieldEvent, tk.op+".stale").
		Uint64(xlog.FieldGeneration, tk.generation).
		Str(xlog.FieldStatus, string(c.machine.State())).
		Msg("discarded result of superseded call")
	return ErrStale
}

func (c *Controller) onProgress(tk ticket, pct int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.staleLocked(tk) {
		return
	}
	if pct > c.progress {
		c.progress = pct
	}
}

func (c *Controller) finishUpload(tk ticket, ev orchestrator.Event[orchestrator.UploadResult]) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.staleLocked(tk) {
		return c.discardLocked(tk)
	}
	if ev.Kind == orchestrator.EventFailure {
		if err := c.transitionLocked(EvUploadFailed); err != nil {
			return err
		}
		c.progress = 0
		c.failure = ev.Err
		c.message = ev.Err.Message
		return ev.Err
	}
	if err := c.transitionLocked(EvUploadSucceeded); err != nil {
		return err
	}
	res := ev.Result
	c.upload = &res
	c.progress = 100
	return nil
}

func (c *Controller) finishProcess(tk ticket, ev orchestrator.Event[orchestrator.ProcessResult]) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.staleLocked(tk) {
		return c.discardLocked(tk)
	}
	if ev.Kind == orchestrator.EventFailure {
		if err := c.transitionLocked(EvProcessFailed); err != nil {
			return err
		}
		c.failure = ev.Err
		c.message = ev.Err.Message
		return ev.Err
	}
	if err := c.transitionLocked(EvProcessSucceeded); err != nil {
		return err
	}
	res := ev.Result
	c.result = &res
	if err := c.armLocked(); err != nil {
		c.logger.Warn().Err(err).Str(xlog.FieldEvent, "compare.unavailable").Msg("comparison playback unavailable")
	}
	return nil
}

func (c *Controller) armLocked() error {
	if c.upload == nil || c.result == nil {
		return errors.New("missing media urls")
	}
	original, err := c.media(c.upload.PlayableURL)
	if err != nil {
		return fmt.Errorf("open original: %w", err)
	}
	processed, err := c.media(c.result.ResultPlayableURL)
	if err != nil {
		return fmt.Errorf("open processed: %w", err)
	}
	p, err := compare.NewPlayer(original, processed, compare.WithEpsilon(c.cfg.SyncEpsilon))
	if err != nil {
		return err
	}
	c.player = p
	if c.cfg.SyncInterval >= 0 {
		ctx, cancel := context.WithCancel(c.root)
		c.stopSync = cancel
		go p.Run(ctx, c.cfg.SyncInterval)
	}
	return nil
}
