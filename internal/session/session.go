package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/sqlmongo/internal/ids"
	"github.com/roach88/sqlmongo/internal/lastquery"
	"github.com/roach88/sqlmongo/internal/literal"
	"github.com/roach88/sqlmongo/internal/mql"
	"github.com/roach88/sqlmongo/internal/translator"
)

// User-facing messages.
const (
	MsgEmptyInput        = "Please enter an SQL query."
	MsgExtractionWarning = "Could not strictly parse query from output. Execution may fail."
	MsgNoTranslatedQuery = "No translated query available. Please translate first."
	MsgStoreUnavailable  = "Cannot connect to the document store. Please ensure the server is running."
	MsgConnected         = "Successfully connected to the document store!"
)

// Store is the document store capability a session executes against.
// Implemented by *store.Mongo and *store.Store.
type Store interface {
	Ping(ctx context.Context) error
	Find(ctx context.Context, collection string, filter, projection *literal.Mapping) ([]*literal.Mapping, error)
}

// Translation is the outcome of a successful Translate.
type Translation struct {
	// Seq orders the session's actions.
	Seq int64 `json:"seq"`

	// ID identifies the cached query.
	ID string `json:"id"`

	SQL string `json:"sql"`

	// Raw is the translator's standard output, unmodified.
	Raw string `json:"raw"`

	// Expression is the extracted call expression, or the whole trimmed
	// output when extraction fell back.
	Expression string `json:"expression"`

	// Text is the canonical query text stored in the last-query slot.
	Text string `json:"text"`

	// Warning is set when no call expression was found. Not fatal.
	Warning *mql.Error `json:"-"`
}

// Execution is the outcome of a successful Execute, Run or FindText.
type Execution struct {
	Seq         int64              `json:"seq"`
	QueryID     string             `json:"query_id,omitempty"`
	Query       mql.Query          `json:"query"`
	Fingerprint string             `json:"fingerprint"`
	Documents   []*literal.Mapping `json:"documents"`
}

// Session runs the translate and execute actions against one translator,
// one store and one last-query slot.
//
// Actions are expected one at a time, as a user drives them; the only
// shared state is the slot, which guards itself.
type Session struct {
	translator translator.Translator
	store      Store
	slot       lastquery.Slot
	ids        ids.Generator
	clock      *Clock
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithSlot sets the last-query slot. Default: an in-memory slot.
func WithSlot(slot lastquery.Slot) Option {
	return func(s *Session) {
		s.slot = slot
	}
}

// WithIDGenerator sets the generator for query ids. Default: UUIDv7.
func WithIDGenerator(gen ids.Generator) Option {
	return func(s *Session) {
		s.ids = gen
	}
}

// WithNow sets the wall clock used to stamp translations.
func WithNow(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New creates a Session.
func New(tr translator.Translator, st Store, opts ...Option) *Session {
	s := &Session{
		translator: tr,
		store:      st,
		slot:       &lastquery.Memory{},
		ids:        ids.UUIDv7Generator{},
		clock:      NewClock(),
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Translate sends sql to the translator, extracts the call expression from
// its output and caches the canonical text as the last query.
//
// A translator failure clears the slot. When no call expression is found
// the whole output is cached anyway and Translation.Warning is set.
func (s *Session) Translate(ctx context.Context, sql string) (Translation, error) {
	seq := s.clock.Next()
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return Translation{}, &mql.Error{Kind: mql.KindEmptyInput, Message: MsgEmptyInput}
	}

	raw, err := s.translator.Translate(ctx, sql)
	if err != nil {
		if kind := mql.KindOf(err); kind == mql.KindTranslatorFailure || kind == mql.KindTranslatorTimeout {
			if clearErr := s.slot.Clear(); clearErr != nil {
				s.logger.Error("failed to clear last query", "seq", seq, "error", clearErr)
			}
		}
		s.logger.Debug("translate failed", "seq", seq, "kind", mql.KindOf(err), "error", err)
		return Translation{}, err
	}

	expr, ok := mql.Extract(raw)
	t := Translation{
		Seq:        seq,
		ID:         s.ids.Generate(),
		SQL:        sql,
		Raw:        raw,
		Expression: expr,
		Text:       mql.Canonicalize(expr),
	}
	if !ok {
		t.Warning = &mql.Error{Kind: mql.KindExtractionWarning, Message: MsgExtractionWarning, Text: raw}
		s.logger.Warn("no call expression in translator output", "seq", seq, "output", raw)
	}

	entry := lastquery.Entry{ID: t.ID, Text: t.Text, TranslatedAt: s.now().UTC()}
	if err := s.slot.Store(entry); err != nil {
		return Translation{}, fmt.Errorf("cache translated query: %w", err)
	}

	s.logger.Debug("translated", "seq", seq, "id", t.ID, "text", t.Text)
	return t, nil
}

// Execute runs the last translated query. The store is pinged first; when
// it is unreachable nothing else happens.
func (s *Session) Execute(ctx context.Context) (Execution, error) {
	seq := s.clock.Next()
	if err := s.CheckConnection(ctx); err != nil {
		return Execution{}, err
	}

	entry, err := s.slot.Load()
	if errors.Is(err, lastquery.ErrNoLastQuery) {
		return Execution{}, &mql.Error{Kind: mql.KindNoTranslatedQuery, Message: MsgNoTranslatedQuery}
	}
	if err != nil {
		return Execution{}, fmt.Errorf("load translated query: %w", err)
	}

	q, err := mql.ParseCanonical(entry.Text)
	if err != nil {
		return Execution{}, err
	}
	return s.find(ctx, seq, entry.ID, q)
}

// Run translates sql and executes the result.
func (s *Session) Run(ctx context.Context, sql string) (Translation, Execution, error) {
	t, err := s.Translate(ctx, sql)
	if err != nil {
		return Translation{}, Execution{}, err
	}
	exec, err := s.Execute(ctx)
	return t, exec, err
}

// FindText executes a call expression such as db.students.find({"age": 22})
// directly, without the translator. The last-query slot is left alone.
func (s *Session) FindText(ctx context.Context, expr string) (Execution, error) {
	seq := s.clock.Next()
	if err := s.CheckConnection(ctx); err != nil {
		return Execution{}, err
	}

	q, err := mql.ParseQuery(expr)
	if err != nil {
		return Execution{}, err
	}
	return s.find(ctx, seq, "", q)
}

// Clear empties the last-query slot.
func (s *Session) Clear() error {
	if err := s.slot.Clear(); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}

// CheckConnection pings the store.
func (s *Session) CheckConnection(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Debug("store ping failed", "error", err)
		return &mql.Error{Kind: mql.KindStoreUnavailable, Message: MsgStoreUnavailable, Err: err}
	}
	return nil
}

// Last returns the cached query, or an error of kind NoTranslatedQuery.
func (s *Session) Last() (lastquery.Entry, error) {
	entry, err := s.slot.Load()
	if errors.Is(err, lastquery.ErrNoLastQuery) {
		return lastquery.Entry{}, &mql.Error{Kind: mql.KindNoTranslatedQuery, Message: MsgNoTranslatedQuery}
	}
	return entry, err
}

// Seq returns the sequence number of the most recent action.
func (s *Session) Seq() int64 {
	return s.clock.Current()
}

func (s *Session) find(ctx context.Context, seq int64, queryID string, q mql.Query) (Execution, error) {
	fp, err := q.Fingerprint()
	if err != nil {
		return Execution{}, fmt.Errorf("fingerprint query: %w", err)
	}
	log := s.logger.With("seq", seq, "collection", q.Collection, "fingerprint", shortHash(fp))

	docs, err := s.store.Find(ctx, q.Collection, q.Filter, q.Projection)
	if err != nil {
		log.Debug("find failed", "error", err)
		return Execution{}, &mql.Error{Kind: mql.KindQueryFailed, Message: "query failed", Text: mql.Format(q), Err: err}
	}

	log.Debug("find completed", "documents", len(docs))
	return Execution{
		Seq:         seq,
		QueryID:     queryID,
		Query:       q,
		Fingerprint: fp,
		Documents:   docs,
	}, nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
