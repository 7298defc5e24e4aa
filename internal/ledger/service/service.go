// Package service executes ledger instructions. Each mutating instruction runs
// inside one store transaction: it reads, checks every precondition, then writes
// the records and the outbox event together.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"credledger/internal/ledger/address"
	"credledger/internal/ledger/codec"
	"credledger/internal/ledger/metrics"
	"credledger/internal/ledger/models"
	"credledger/internal/ledger/status"
	"credledger/internal/ledger/store"
	"credledger/internal/ledger/tracer"
	"credledger/internal/ledger/zk"
	"credledger/pkg/domain"
	dErrors "credledger/pkg/domain-errors"
	"credledger/pkg/platform/middleware/requesttime"
	"credledger/pkg/platform/outbox"
	"credledger/pkg/platform/sentinel"
	"credledger/pkg/requestcontext"
)

// Instruction names label logs, spans and metrics.
const (
	InstructionInitialize         = "initialize"
	InstructionInitializeRegistry = "initialize_issuer_registry"
	InstructionRegisterIssuer     = "register_issuer"
	InstructionDeregisterIssuer   = "deregister_issuer"
	InstructionInitializeIssuer   = "initialize_issuer"
	InstructionDeactivateIssuer   = "deactivate_issuer"
	InstructionReactivateIssuer   = "reactivate_issuer"
	InstructionIssueCredential    = "issue_credential"
	InstructionRevokeCredential   = "revoke_credential"
)

// OutboxAppender receives domain events inside the instruction's transaction.
type OutboxAppender interface {
	Append(ctx context.Context, entry *outbox.Entry) error
}

// StatusCache mirrors credential status for polling verifiers.
type StatusCache interface {
	Get(ctx context.Context, addr domain.Pubkey) (status.Entry, bool, error)
	Put(ctx context.Context, addr domain.Pubkey, entry status.Entry) error
}

type Service struct {
	accounts store.Store
	tx       store.Tx
	deriver  *address.Deriver

	outbox   OutboxAppender
	verifier zk.Verifier
	cache    StatusCache
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   tracer.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithVerifier enables signature verification at issuance. Without it the
// signature is stored as given.
func WithVerifier(v zk.Verifier) Option {
	return func(s *Service) {
		s.verifier = v
	}
}

func WithOutbox(o OutboxAppender) Option {
	return func(s *Service) {
		s.outbox = o
	}
}

func WithStatusCache(c StatusCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func New(accounts store.Store, tx store.Tx, deriver *address.Deriver, opts ...Option) *Service {
	s := &Service{
		accounts: accounts,
		tx:       tx,
		deriver:  deriver,
		logger:   slog.New(slog.DiscardHandler),
		tracer:   tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Deriver exposes the address scheme so transports can show derived addresses.
func (s *Service) Deriver() *address.Deriver {
	return s.deriver
}

// execute runs fn as one atomic instruction and records its outcome.
func (s *Service) execute(ctx context.Context, instruction string, caller domain.Pubkey, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanPrefix+instruction,
		tracer.String(tracer.AttrInstruction, instruction),
		tracer.String(tracer.AttrCaller, caller.String()),
	)

	err := s.tx.RunInTx(ctx, fn)
	err = translateTxErr(err)

	if pe, ok := models.AsProgramError(err); ok {
		if s.metrics != nil {
			s.metrics.IncrementProgramError(pe.Name)
		}
		s.logger.WarnContext(ctx, "instruction rejected",
			"instruction", instruction,
			"caller", caller.String(),
			"error_code", pe.Code,
			"error_name", pe.Name,
			"request_id", requestcontext.RequestID(ctx),
		)
	} else if err != nil {
		s.logger.ErrorContext(ctx, "instruction failed",
			"instruction", instruction,
			"caller", caller.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	} else {
		span.AddEvent(tracer.EventCommitted)
	}

	span.End(err)
	if s.metrics != nil {
		s.metrics.ObserveInstruction(instruction, err, time.Since(start))
	}
	return err
}

// translateTxErr keeps program and domain errors, maps unreachable stores and
// expired deadlines to retryable codes and marks anything else internal.
func translateTxErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := models.AsProgramError(err); ok {
		return err
	}
	if errors.Is(err, sentinel.ErrUnavailable) {
		return &dErrors.Error{Code: dErrors.CodeUnavailable, Message: "ledger store unavailable", Err: err}
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "ledger transaction timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "ledger transaction failed")
}

// emit appends the event to the outbox and writes the audit log line. Runs
// inside the transaction so the event commits with the state it describes.
func (s *Service) emit(ctx context.Context, event models.Event, recordType string) error {
	s.logger.InfoContext(ctx, event.EventType(),
		"event", event.EventType(),
		"log_type", "audit",
		"record", event.RecordAddress().String(),
		"caller", callerString(ctx),
		"client", requestcontext.Client(ctx),
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.outbox == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode event")
	}
	entry := outbox.NewEntry(recordType, event.RecordAddress().String(), event.EventType(), payload, requesttime.Now(ctx))
	if err := s.outbox.Append(ctx, entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append event")
	}
	return nil
}

func callerString(ctx context.Context) string {
	if caller, ok := requestcontext.Caller(ctx); ok {
		return caller.String()
	}
	return ""
}

// checkExpected verifies a caller-supplied address against the seeds.
func (s *Service) checkExpected(expected *models.ExpectedAddress, seeds [][]byte) error {
	if expected == nil {
		return nil
	}
	if err := s.deriver.Verify(expected.Address, expected.Bump, seeds); err != nil {
		if errors.Is(err, address.ErrInvalidRecordAddress) {
			return models.ErrInvalidRecordAddress
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify record address")
	}
	return nil
}

func (s *Service) derive(fn func() (address.Derived, error)) (address.Derived, error) {
	d, err := fn()
	if err != nil {
		return address.Derived{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to derive record address")
	}
	return d, nil
}

type readFunc func(ctx context.Context, addr domain.Pubkey) (*store.Account, error)

// load reads and decodes the record at addr; an empty address yields missing.
func load[T codec.Record](ctx context.Context, read readFunc, addr domain.Pubkey, missing *models.Error) (*T, error) {
	acct, err := read(ctx, addr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, missing
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read record")
	}
	rec, err := codec.Decode[T](acct.Data)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("failed to decode record %s", addr))
	}
	return rec, nil
}

// exists reports whether addr already holds a record.
func (s *Service) exists(ctx context.Context, addr domain.Pubkey) (bool, error) {
	_, err := s.accounts.Get(ctx, addr)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read record")
	}
	return true, nil
}

// create writes a new record; an occupied address yields collision.
func (s *Service) create(ctx context.Context, addr domain.Pubkey, record any, collision *models.Error) error {
	acct, err := store.NewAccount(addr, record)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode record")
	}
	if err := s.accounts.Create(ctx, acct); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return collision
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create record")
	}
	return nil
}

func (s *Service) update(ctx context.Context, addr domain.Pubkey, record any) error {
	acct, err := store.NewAccount(addr, record)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode record")
	}
	if err := s.accounts.Update(ctx, acct); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update record")
	}
	return nil
}

// putStatus refreshes the status cache after commit. Failures are logged; the
// ledger remains authoritative and the query path falls back to it.
func (s *Service) putStatus(ctx context.Context, addr domain.Pubkey, entry status.Entry) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, addr, entry); err != nil {
		s.logger.WarnContext(ctx, "failed to update credential status cache",
			"credential", addr.String(),
			"error", err,
		)
	}
}
