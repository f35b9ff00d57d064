//go:build integration

package integration

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	catalogdomain "github.com/CodeKhoVL/DoAn-Store/internal/catalog/domain"
	pgdb "github.com/CodeKhoVL/DoAn-Store/internal/postgres"
	"github.com/CodeKhoVL/DoAn-Store/internal/reservation/domain"
	respg "github.com/CodeKhoVL/DoAn-Store/internal/reservation/infrastructure/postgres"
	"github.com/CodeKhoVL/DoAn-Store/pkg/outbox"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationFlow(t *testing.T) {
	ctx := context.Background()

	env, err := Setup(ctx)
	require.NoError(t, err)
	defer env.Teardown(ctx)

	pool, err := pgdb.Connect(ctx, env.PGURL)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, pgdb.Migrate(ctx, pool))

	_, err = pool.Exec(ctx, `
		INSERT INTO products (id, title, category, price_cents)
		VALUES ('prod-1', 'Đất Rừng Phương Nam', 'fiction', 5800)`)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := respg.NewRepository(log, pool)

	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return d
	}

	first, err := domain.NewReservation("user-1", "prod-1", day("2024-06-01"), day("2024-06-10"), "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first, domain.EventReservationCreated, []byte(`{}`), map[string]string{"source": "test"}, ""))

	// boundary-touching range must conflict
	touching, err := domain.NewReservation("user-2", "prod-1", day("2024-06-10"), day("2024-06-15"), "")
	require.NoError(t, err)
	err = repo.Create(ctx, touching, domain.EventReservationCreated, []byte(`{}`), nil, "")
	assert.ErrorIs(t, err, domain.ErrDateConflict)

	// the day after the return date is free
	free, err := domain.NewReservation("user-2", "prod-1", day("2024-06-11"), day("2024-06-15"), "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, free, domain.EventReservationCreated, []byte(`{}`), nil, ""))

	// unknown product resolves before any date logic
	ghost, err := domain.NewReservation("user-2", "prod-9", day("2024-06-01"), day("2024-06-02"), "")
	require.NoError(t, err)
	err = repo.Create(ctx, ghost, domain.EventReservationCreated, []byte(`{}`), nil, "")
	assert.ErrorIs(t, err, catalogdomain.ErrProductNotFound)

	listed, err := repo.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, first.ID, listed[0].ID)
	assert.Equal(t, "Đất Rừng Phương Nam", listed[0].Product.Title)

	updated, err := repo.UpdateStatus(ctx, first.ID, domain.StatusPending, domain.StatusApproved, domain.EventReservationStatusChanged, []byte(`{}`), nil, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, updated.Status)
	assert.True(t, updated.UpdatedAt.After(first.UpdatedAt))

	// a stale expected status loses to the committed transition
	_, err = repo.UpdateStatus(ctx, first.ID, domain.StatusPending, domain.StatusRejected, domain.EventReservationStatusChanged, []byte(`{}`), nil, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	var persisted string
	require.NoError(t, pool.QueryRow(ctx, `SELECT status FROM reservations WHERE id=$1`, first.ID).Scan(&persisted))
	assert.Equal(t, string(domain.StatusApproved), persisted)
}

func TestFindByUserDropsDeletedProducts(t *testing.T) {
	ctx := context.Background()

	env, err := Setup(ctx)
	require.NoError(t, err)
	defer env.Teardown(ctx)

	pool, err := pgdb.Connect(ctx, env.PGURL)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, pgdb.Migrate(ctx, pool))

	_, err = pool.Exec(ctx, `
		INSERT INTO products (id, title, category, price_cents)
		VALUES ('prod-1', 'Vợ Nhặt', 'fiction', 3900),
		       ('prod-2', 'Tắt Đèn', 'fiction', 3600)`)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := respg.NewRepository(log, pool)

	pickup, ret := time.Now(), time.Now().AddDate(0, 0, 3)

	kept, err := domain.NewReservation("user-1", "prod-1", pickup, ret, "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, kept, domain.EventReservationCreated, []byte(`{}`), nil, ""))

	orphaned, err := domain.NewReservation("user-1", "prod-2", pickup, ret, "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, orphaned, domain.EventReservationCreated, []byte(`{}`), nil, ""))

	_, err = pool.Exec(ctx, `DELETE FROM products WHERE id='prod-2'`)
	require.NoError(t, err)

	listed, err := repo.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, kept.ID, listed[0].ID)
}

func TestOutboxRelayDeliversToKafka(t *testing.T) {
	ctx := context.Background()

	env, err := Setup(ctx)
	require.NoError(t, err)
	defer env.Teardown(ctx)

	pool, err := pgdb.Connect(ctx, env.PGURL)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, pgdb.Migrate(ctx, pool))

	_, err = pool.Exec(ctx, `
		INSERT INTO products (id, title, category, price_cents)
		VALUES ('prod-1', 'Chí Phèo', 'fiction', 4100)`)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := respg.NewRepository(log, pool)

	res, err := domain.NewReservation("user-1", "prod-1", time.Now(), time.Now().AddDate(0, 0, 7), "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, res, domain.EventReservationCreated, []byte(`{"reservation_id":"`+res.ID+`"}`), map[string]string{"source": "test"}, ""))

	writer := &kafkago.Writer{
		Addr:                   kafkago.TCP(env.Brokers...),
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	defer writer.Close()

	relayCtx, cancelRelay := context.WithCancel(ctx)
	defer cancelRelay()
	relay := outbox.NewRelay(log, respg.NewOutboxStore(log, pool), outbox.NewDispatcher(log, writer, "reservation.events"), "test-relay")
	go func() { _ = relay.Run(relayCtx) }()

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: env.Brokers,
		Topic:   "reservation.events",
		GroupID: "integration-test",
	})
	defer reader.Close()

	readCtx, cancelRead := context.WithTimeout(ctx, 60*time.Second)
	defer cancelRead()
	msg, err := reader.FetchMessage(readCtx)
	require.NoError(t, err)

	assert.Equal(t, res.ID, string(msg.Key))
	assert.Contains(t, string(msg.Value), res.ID)

	assert.Eventually(t, func() bool {
		var sent int
		err := pool.QueryRow(ctx, `SELECT count(*) FROM outbox WHERE status='sent'`).Scan(&sent)
		return err == nil && sent == 1
	}, 10*time.Second, 200*time.Millisecond)
}
