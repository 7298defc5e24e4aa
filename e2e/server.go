package e2e

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"credledger/internal/ledger/address"
	"credledger/internal/ledger/handler"
	"credledger/internal/ledger/service"
	"credledger/internal/ledger/status"
	"credledger/internal/ledger/store"
	"credledger/internal/platform/config"
	"credledger/pkg/domain"
	"credledger/pkg/platform/middleware/auth"
	"credledger/pkg/platform/middleware/request"
	"credledger/pkg/platform/middleware/requesttime"
	outboxstore "credledger/pkg/platform/outbox/store"
)

// newLedgerServer assembles the ledger HTTP surface over in-memory stores,
// reading the ledger clock from clock.
func newLedgerServer(clock requesttime.Clock) http.Handler {
	logger := slog.New(slog.DiscardHandler)
	deriver := address.NewDeriver(domain.MustParsePubkey(config.DefaultProgramID))
	accounts := store.NewInMemory().WithTxTimeout(2 * time.Second)

	svc := service.New(accounts, accounts, deriver,
		service.WithLogger(logger),
		service.WithOutbox(outboxstore.NewInMemory()),
		service.WithStatusCache(status.NewInMemory()),
	)

	r := chi.NewRouter()
	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(requesttime.WithClock(clock))
	r.Use(request.ContentTypeJSON)
	handler.New(svc, deriver, logger).Register(r,
		auth.RequireCaller(auth.NewVerifier(5*time.Minute), auth.NewMemoryReplayGuard(), logger))
	return r
}
