package tutor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/paperlab/oshiete/internal/extract"
	"github.com/paperlab/oshiete/internal/models"
	"github.com/paperlab/oshiete/internal/prompt"
)

// maxReinitAttempts caps backend init retries before the paper text is
// discarded and a fresh upload is required. Without a cap a dead credential
// would hold stale text forever.
const maxReinitAttempts = 3

// PaperIndex receives the paper text for find-in-paper queries. Rebuilt on
// every successful upload, dropped when the paper is replaced or discarded.
type PaperIndex interface {
	Rebuild(text string) error
	Drop()
}

// Archive records sessions and transcript messages for later review. It is
// write-only from the controller's point of view: live state is never read
// back from it.
type Archive interface {
	RecordUpload(ctx context.Context, sessionID string, paper *models.Paper) error
	RecordMessage(ctx context.Context, sessionID string, msg models.Message) error
	ClearMessages(ctx context.Context, sessionID string) error
}

// Controller owns one user session: the paper text, the transcript, and the
// conversation session, and drives the transitions between them. It is not
// safe for concurrent use; callers serialize events per session.
type Controller struct {
	id        string
	extractor *extract.Extractor
	connect   ClientFactory
	maxChars  int
	warnChars int

	logger  *zap.Logger
	index   PaperIndex
	archive Archive

	state          State
	paper          *models.Paper
	systemPrompt   string
	session        *Session
	transcript     []models.Message
	reinitAttempts int
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets a logger for lifecycle events.
func WithLogger(l *zap.Logger) ControllerOption {
	return func(c *Controller) { c.logger = l }
}

// WithPaperIndex attaches a find-in-paper index kept in sync with the paper.
func WithPaperIndex(idx PaperIndex) ControllerOption {
	return func(c *Controller) { c.index = idx }
}

// WithArchive attaches a transcript archive. Archive failures are logged and
// never fail the user-facing operation.
func WithArchive(a Archive) ControllerOption {
	return func(c *Controller) { c.archive = a }
}

// NewController creates a controller in the empty state.
func NewController(id string, extractor *extract.Extractor, connect ClientFactory, maxChars, warnChars int, opts ...ControllerOption) *Controller {
	c := &Controller{
		id:        id,
		extractor: extractor,
		connect:   connect,
		maxChars:  maxChars,
		warnChars: warnChars,
		logger:    zap.NewNop(),
		state:     StateEmpty,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the session identifier.
func (c *Controller) ID() string { return c.id }

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// Paper returns the retained paper, or nil when none is loaded.
func (c *Controller) Paper() *models.Paper { return c.paper }

// Transcript returns a copy of the visible message sequence.
func (c *Controller) Transcript() []models.Message {
	out := make([]models.Message, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// Snapshot returns the read-only view of this session.
func (c *Controller) Snapshot() models.SessionView {
	return models.SessionView{
		ID:         c.id,
		State:      c.state.String(),
		Paper:      c.paper,
		Transcript: c.Transcript(),
	}
}

// Upload converts the document bytes to text and, when the size guard passes,
// builds a fresh conversation session for it. Any previously loaded paper,
// transcript, and session are discarded first: uploads replace, never merge.
func (c *Controller) Upload(ctx context.Context, content []byte, filename string) (*models.UploadResult, error) {
	if c.state == StateExtracting {
		// One upload at a time; callers serialize, this guards re-entry.
		return nil, fmt.Errorf("an upload is already being processed")
	}

	c.discard()
	c.state = StateExtracting
	c.logger.Debug("extracting paper", zap.String("session", c.id), zap.String("filename", filename))

	ext := strings.ToLower(filepath.Ext(filename))
	text, err := c.extractor.ExtractBytes(content, ext)
	if err != nil {
		c.state = StateExtractionFailed
		return nil, &ExtractionError{Filename: filename, Err: err}
	}

	chars := utf8.RuneCountInString(text)
	if chars > c.maxChars {
		// Oversized text is not retained: a stale paper must not block the
		// next upload.
		c.state = StateEmpty
		return nil, &SizeExceededError{Chars: chars, MaxChars: c.maxChars}
	}

	paper := &models.Paper{
		Filename:   filename,
		Text:       text,
		Chars:      chars,
		UploadedAt: time.Now().UTC(),
	}
	c.paper = paper
	c.systemPrompt = prompt.BuildSystemPrompt(text)

	session, err := NewSession(c.connect, c.systemPrompt)
	if err != nil {
		c.state = StateInitFailed
		c.reinitAttempts = 0
		return nil, err
	}
	c.session = session
	c.state = StateReady
	c.transcript = nil

	if c.index != nil {
		if err := c.index.Rebuild(text); err != nil {
			c.logger.Warn("paper index rebuild failed", zap.String("session", c.id), zap.Error(err))
		}
	}
	if c.archive != nil {
		if err := c.archive.RecordUpload(ctx, c.id, paper); err != nil {
			c.logger.Warn("archive upload record failed", zap.String("session", c.id), zap.Error(err))
		}
	}

	result := &models.UploadResult{Filename: filename, Chars: chars}
	if chars > c.warnChars {
		result.Warning = SizeWarning(chars, c.warnChars)
	}
	c.logger.Info("paper loaded",
		zap.String("session", c.id),
		zap.String("filename", filename),
		zap.Int("chars", chars),
		zap.Bool("size_warning", result.Warning != ""))
	return result, nil
}

// Send submits one user turn. The user message is always appended to the
// transcript; a backend failure becomes a visible assistant message rather
// than a hidden error, and the session remains usable. failed reports whether
// the returned assistant message is an error message.
func (c *Controller) Send(ctx context.Context, userText string) (reply models.Message, failed bool, err error) {
	if c.state != StateReady {
		return models.Message{}, false, fmt.Errorf("no paper loaded: upload a document first (state %s)", c.state)
	}

	userMsg := models.UserMessage(userText)
	c.transcript = append(c.transcript, userMsg)
	c.record(ctx, userMsg)

	text, sendErr := c.session.Send(ctx, userText)
	if sendErr != nil {
		c.logger.Warn("turn failed", zap.String("session", c.id), zap.Error(sendErr))
		errMsg := models.AssistantMessage(sendErr.Error())
		c.transcript = append(c.transcript, errMsg)
		c.record(ctx, errMsg)
		return errMsg, true, nil
	}

	assistantMsg := models.AssistantMessage(text)
	c.transcript = append(c.transcript, assistantMsg)
	c.record(ctx, assistantMsg)
	return assistantMsg, false, nil
}

// Clear empties the transcript and rebuilds the conversation session from the
// retained paper. A rebuild failure is treated exactly like an initial one:
// the state moves to init-failed and reinit applies.
func (c *Controller) Clear(ctx context.Context) error {
	if c.state != StateReady {
		return fmt.Errorf("nothing to clear (state %s)", c.state)
	}
	c.transcript = nil
	if c.archive != nil {
		if err := c.archive.ClearMessages(ctx, c.id); err != nil {
			c.logger.Warn("archive clear failed", zap.String("session", c.id), zap.Error(err))
		}
	}
	session, err := NewSession(c.connect, c.systemPrompt)
	if err != nil {
		c.session = nil
		c.state = StateInitFailed
		c.reinitAttempts = 0
		return err
	}
	c.session = session
	c.logger.Info("chat cleared", zap.String("session", c.id))
	return nil
}

// Reinit retries building the conversation session with the already-built
// system prompt, without re-extracting. After maxReinitAttempts consecutive
// failures the paper text is discarded and a fresh upload is required.
func (c *Controller) Reinit(ctx context.Context) error {
	if c.state != StateInitFailed {
		return fmt.Errorf("session does not need reinitialization (state %s)", c.state)
	}
	session, err := NewSession(c.connect, c.systemPrompt)
	if err != nil {
		c.reinitAttempts++
		if c.reinitAttempts >= maxReinitAttempts {
			c.logger.Warn("giving up on reinitialization, discarding paper",
				zap.String("session", c.id), zap.Int("attempts", c.reinitAttempts))
			c.discard()
			return fmt.Errorf("backend initialization failed %d times, paper discarded, please upload again: %w", maxReinitAttempts, err)
		}
		return err
	}
	c.session = session
	c.state = StateReady
	c.transcript = nil
	c.reinitAttempts = 0
	c.logger.Info("session reinitialized", zap.String("session", c.id))
	return nil
}

// discard drops the paper, transcript, and session, returning to empty.
func (c *Controller) discard() {
	c.paper = nil
	c.systemPrompt = ""
	c.session = nil
	c.transcript = nil
	c.reinitAttempts = 0
	c.state = StateEmpty
	if c.index != nil {
		c.index.Drop()
	}
}

func (c *Controller) record(ctx context.Context, msg models.Message) {
	if c.archive == nil {
		return
	}
	if err := c.archive.RecordMessage(ctx, c.id, msg); err != nil {
		c.logger.Warn("archive message record failed", zap.String("session", c.id), zap.Error(err))
	}
}
