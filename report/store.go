package report

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/dataexpect/reportstore"
	"github.com/cockroachdb/dataexpect/validate"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Envelope is the persisted form of a run's report.
type Envelope struct {
	RunID      uuid.UUID        `json:"run_id"`
	Suite      string           `json:"suite"`
	Query      string           `json:"query,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Report     *validate.Report `json:"report"`
}

// StoreReporter uploads each summary wrapped in an Envelope to Store. The
// outcome of the last upload is kept in Location and Err.
type StoreReporter struct {
	Store     reportstore.Store
	Logger    zerolog.Logger
	RunID     uuid.UUID
	Query     string
	StartedAt time.Time
	// Now defaults to time.Now.
	Now func() time.Time

	Location string
	Err      error
}

func NewStoreReporter(
	store reportstore.Store, logger zerolog.Logger, query string, startedAt time.Time,
) *StoreReporter {
	return &StoreReporter{
		Store:     store,
		Logger:    logger,
		RunID:     uuid.New(),
		Query:     query,
		StartedAt: startedAt,
		Now:       time.Now,
	}
}

func (s *StoreReporter) Report(obj ReportableObject) {
	summary, ok := obj.(Summary)
	if !ok {
		return
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	env := Envelope{
		RunID:      s.RunID,
		Suite:      summary.Suite,
		Query:      s.Query,
		StartedAt:  s.StartedAt.UTC(),
		FinishedAt: now().UTC(),
		Report:     summary.Report,
	}
	b, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		s.Err = errors.Wrapf(err, "error encoding report")
		return
	}
	key := reportstore.ReportKey(summary.Suite, s.RunID.String())
	res, err := s.Store.Put(context.Background(), key, bytes.NewReader(b))
	if err != nil {
		s.Err = errors.Wrapf(err, "error uploading report %s", key)
		s.Logger.Err(s.Err).Msgf("could not store report")
		return
	}
	s.Location = res.Location()
	s.Logger.Info().
		Str("run_id", s.RunID.String()).
		Str("location", s.Location).
		Msgf("stored report")
}

func (s *StoreReporter) Close() {
}
