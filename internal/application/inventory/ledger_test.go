package inventory_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger/internal/application/dto"
	appinv "github.com/jhoicas/stockledger/internal/application/inventory"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/inventory"
	"github.com/jhoicas/stockledger/internal/domain/repository"
	"github.com/jhoicas/stockledger/internal/infrastructure/memory"
)

type fixture struct {
	store   *memory.Store
	repos   memory.Repositories
	cache   *spyCache
	writer  *appinv.LedgerWriter
	batch   *appinv.BatchInboundUseCase
	reports *appinv.ReportUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	cache := newSpyCache()
	writer := appinv.NewLedgerWriter(store, repos.Products, repos.Merchants, cache, nil, nil)
	return &fixture{
		store:  store,
		repos:  repos,
		cache:  cache,
		writer: writer,
		batch:  appinv.NewBatchInboundUseCase(writer),
		reports: appinv.NewReportUseCase(repos.Reports, repos.Products, repos.Merchants, repos.Movements,
			cache, nil, inventory.DefaultAlertPolicy(), inventory.DefaultTrendPolicy(), nil),
	}
}

func (f *fixture) product(t *testing.T, id, name string, stock int64) {
	t.Helper()
	now := time.Now()
	require.NoError(t, f.repos.Products.Create(context.Background(), &entity.Product{
		ID: id, Name: name, Specification: name + " 500g", Unit: entity.DefaultUnit,
		CurrentStock: stock, CreatedAt: now, UpdatedAt: now,
	}))
}

func (f *fixture) merchant(t *testing.T, id, name string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, f.repos.Merchants.Create(context.Background(), &entity.Merchant{
		ID: id, Name: name, Contact: "Laura", Phone: "3001234567", CreatedAt: now, UpdatedAt: now,
	}))
}

func (f *fixture) stock(t *testing.T, id string) int64 {
	t.Helper()
	p, err := f.repos.Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.CurrentStock
}

func (f *fixture) movementCount(t *testing.T, productID string) int64 {
	t.Helper()
	n, err := f.repos.Movements.CountByProduct(context.Background(), productID)
	require.NoError(t, err)
	return n
}

// assertLedgerBalance verifica stock == stockInicial + entradas - salidas.
func (f *fixture) assertLedgerBalance(t *testing.T, productID string, initial int64) {
	t.Helper()
	totals, err := f.repos.Reports.SumMovements(context.Background(), repository.MovementQuery{ProductID: productID})
	require.NoError(t, err)
	assert.Equal(t, initial+totals.Inbound-totals.Outbound, f.stock(t, productID))
}

// spyCache caché en memoria que cuenta invalidaciones.
type spyCache struct {
	mu          sync.Mutex
	entries     map[string]any
	invalidated int
}

func newSpyCache() *spyCache { return &spyCache{entries: map[string]any{}} }

func (c *spyCache) Get(_ context.Context, key string, dst any) (appinv.CacheVersion, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ver := appinv.CacheVersion(c.invalidated)
	v, ok := c.entries[key]
	if !ok {
		return ver, false, nil
	}
	switch d := dst.(type) {
	case *dto.TrendResponse:
		*d = *v.(*dto.TrendResponse)
	case *dto.AlertReportResponse:
		*d = *v.(*dto.AlertReportResponse)
	}
	return ver, true, nil
}

func (c *spyCache) Set(_ context.Context, ver appinv.CacheVersion, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if int(ver) != c.invalidated {
		return nil
	}
	c.entries[key] = value
	return nil
}

func (c *spyCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]any{}
	c.invalidated++
	return nil
}

// ─── LedgerWriter ───────────────────────────────────────────────────────────

func TestLedgerWriter_EntradaSalidaYStockInsuficiente(t *testing.T) {
	f := newFixture(t)
	f.product(t, "A", "Arroz", 50)
	f.merchant(t, "M1", "Tienda Centro")
	ctx := context.Background()

	in, err := f.writer.RecordInbound(ctx, appinv.InboundInput{ProductID: "A", Quantity: 30, UserID: "u-1"})
	require.NoError(t, err)
	assert.Equal(t, "INBOUND", in.Type)
	assert.Equal(t, "Arroz", in.Product.Name)
	assert.Nil(t, in.Merchant)
	require.NotNil(t, in.CurrentStock)
	assert.Equal(t, int64(80), *in.CurrentStock)
	assert.Equal(t, int64(80), f.stock(t, "A"))

	out, err := f.writer.RecordOutbound(ctx, appinv.OutboundInput{ProductID: "A", MerchantID: "M1", Quantity: 80, UserID: "u-1"})
	require.NoError(t, err)
	require.NotNil(t, out.Merchant)
	assert.Equal(t, "Tienda Centro", out.Merchant.Name)
	assert.Equal(t, int64(0), f.stock(t, "A"))

	_, err = f.writer.RecordOutbound(ctx, appinv.OutboundInput{ProductID: "A", MerchantID: "M1", Quantity: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, int64(0), ise.Current)
	assert.Equal(t, int64(1), ise.Requested)

	assert.Equal(t, int64(0), f.stock(t, "A"))
	assert.Equal(t, int64(2), f.movementCount(t, "A"), "el rechazo no deja asiento")
	f.assertLedgerBalance(t, "A", 50)
	assert.Equal(t, 2, f.cache.invalidated)
}

func TestLedgerWriter_Validaciones(t *testing.T) {
	f := newFixture(t)
	f.product(t, "A", "Arroz", 5)
	f.merchant(t, "M1", "Tienda Centro")
	ctx := context.Background()

	_, err := f.writer.RecordInbound(ctx, appinv.InboundInput{ProductID: "A", Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.writer.RecordInbound(ctx, appinv.InboundInput{ProductID: "A", Quantity: -3})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.writer.RecordInbound(ctx, appinv.InboundInput{ProductID: "X", Quantity: 3})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.writer.RecordOutbound(ctx, appinv.OutboundInput{ProductID: "A", Quantity: 1})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "merchantId", ve.Fields[0].Field)

	_, err = f.writer.RecordOutbound(ctx, appinv.OutboundInput{ProductID: "A", MerchantID: "NOPE", Quantity: 1})
	var missing *domain.MissingReferencesError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"NOPE"}, missing.IDs)

	assert.Equal(t, int64(5), f.stock(t, "A"))
	assert.Zero(t, f.movementCount(t, "A"))
	assert.Zero(t, f.cache.invalidated)
}

func TestLedgerWriter_FechaYNotas(t *testing.T) {
	f := newFixture(t)
	f.product(t, "A", "Arroz", 0)
	date := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	notes := "  factura 123 "
	blank := "   "

	resp, err := f.writer.RecordInbound(context.Background(), appinv.InboundInput{ProductID: "A", Quantity: 4, Date: &date, Notes: &notes})
	require.NoError(t, err)
	assert.True(t, resp.Date.Equal(date))
	require.NotNil(t, resp.Notes)
	assert.Equal(t, "factura 123", *resp.Notes)

	resp, err = f.writer.RecordInbound(context.Background(), appinv.InboundInput{ProductID: "A", Quantity: 1, Notes: &blank})
	require.NoError(t, err)
	assert.Nil(t, resp.Notes)
}

func TestLedgerWriter_SalidasConcurrentesNoSobregiran(t *testing.T) {
	f := newFixture(t)
	f.product(t, "A", "Arroz", 10)
	f.merchant(t, "M1", "Tienda Centro")

	var ok, rejected atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.writer.RecordOutbound(context.Background(), appinv.OutboundInput{ProductID: "A", MerchantID: "M1", Quantity: 3})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected.Add(1)
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(3), ok.Load())
	assert.Equal(t, int64(17), rejected.Load())
	assert.Equal(t, int64(1), f.stock(t, "A"))
	f.assertLedgerBalance(t, "A", 10)
}

func TestLedgerWriter_ContextoCancelado(t *testing.T) {
	f := newFixture(t)
	f.product(t, "A", "Arroz", 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.writer.RecordInbound(ctx, appinv.InboundInput{ProductID: "A", Quantity: 5})
	require.Error(t, err)
	assert.True(t, domain.IsRetryable(err))
	assert.Equal(t, int64(10), f.stock(t, "A"))
	assert.Zero(t, f.movementCount(t, "A"))
}

func TestLedgerWriter_FromRequestFechaInvalida(t *testing.T) {
	f := newFixture(t)
	f.product(t, "A", "Arroz", 0)

	_, err := f.writer.RecordInboundFromRequest(context.Background(), "u-1", dto.StockInRequest{ProductID: "A", Quantity: 1, Date: "ayer"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	resp, err := f.writer.RecordInboundFromRequest(context.Background(), "u-1", dto.StockInRequest{ProductID: "A", Quantity: 1, Date: "2026-05-01"})
	require.NoError(t, err)
	assert.Equal(t, 2026, resp.Date.Year())
	require.NotNil(t, resp.CreatedBy)
	assert.Equal(t, "u-1", *resp.CreatedBy)
}

// ─── BatchInboundUseCase ────────────────────────────────────────────────────

func TestBatchInbound_ItemInvalidoRevierteTodo(t *testing.T) {
	f := newFixture(t)
	f.product(t, "A", "Arroz", 7)
	f.product(t, "B", "Frijol", 3)

	_, err := f.batch.RecordBatchInbound(context.Background(), appinv.BatchInboundInput{
		Items: []appinv.BatchItem{{ProductID: "A", Quantity: 10}, {ProductID: "B", Quantity: -5}},
	})
	require.Error(t, err)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, 1, ve.Fields[0].Index)
	assert.Equal(t, "quantity", ve.Fields[0].Field)

	assert.Equal(t, int64(7), f.stock(t, "A"))
	assert.Equal(t, int64(3), f.stock(t, "B"))
	assert.Zero(t, f.movementCount(t, "A"))
}

func TestBatchInbound_EnumeraTodosLosErrores(t *testing.T) {
	f := newFixture(t)
	f.product(t, "A", "Arroz", 0)

	_, err := f.batch.RecordBatchInbound(context.Background(), appinv.BatchInboundInput{
		Items: []appinv.BatchItem{{ProductID: "", Quantity: 1}, {ProductID: "A", Quantity: 0}, {ProductID: "A", Quantity: 2}},
	})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Fields, 2)
	assert.Equal(t, 0, ve.Fields[0].Index)
	assert.Equal(t, 1, ve.Fields[1].Index)

	_, err = f.batch.RecordBatchInbound(context.Background(), appinv.BatchInboundInput{
		Items: []appinv.BatchItem{{ProductID: "X", Quantity: 1}, {ProductID: "A", Quantity: 1}, {ProductID: "Y", Quantity: 1}},
	})
	var missing *domain.MissingReferencesError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"X", "Y"}, missing.IDs)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.batch.RecordBatchInbound(context.Background(), appinv.BatchInboundInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Zero(t, f.movementCount(t, "A"))
}

func TestBatchInbound_Aplica(t *testing.T) {
	f := newFixture(t)
	f.product(t, "A", "Arroz", 1)
	f.product(t, "B", "Frijol", 0)
	itemNotes := "caja dañada"
	shared := "compra semanal"

	resp, err := f.batch.RecordBatchInbound(context.Background(), appinv.BatchInboundInput{
		Items: []appinv.BatchItem{
			{ProductID: "B", Quantity: 4, Notes: &itemNotes},
			{ProductID: "A", Quantity: 6},
			{ProductID: "B", Quantity: 1},
		},
		UserID: "u-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Summary.TotalItems)
	assert.Equal(t, int64(11), resp.Summary.TotalQuantity)
	require.Len(t, resp.Movements, 3)
	assert.Equal(t, "Frijol", resp.Movements[0].Product.Name)
	require.NotNil(t, resp.Movements[0].Notes)
	assert.Equal(t, itemNotes, *resp.Movements[0].Notes)
	assert.Nil(t, resp.Movements[1].Notes)

	assert.Equal(t, int64(7), f.stock(t, "A"))
	assert.Equal(t, int64(5), f.stock(t, "B"))
	f.assertLedgerBalance(t, "B", 0)

	// Las notas del lote tienen prioridad sobre las del ítem.
	resp, err = f.batch.RecordBatchInbound(context.Background(), appinv.BatchInboundInput{
		Items: []appinv.BatchItem{{ProductID: "A", Quantity: 1, Notes: &itemNotes}},
		Notes: &shared,
	})
	require.NoError(t, err)
	assert.Equal(t, shared, *resp.Movements[0].Notes)
}

var errDiskFull = errors.New("disco lleno")

// failingMovements falla el n-ésimo Create con err; los anteriores llegan a la copia de trabajo.
type failingMovements struct {
	repository.MovementRepository
	failAt int
	err    error
	calls  int
}

func (m *failingMovements) Create(ctx context.Context, mov *entity.Movement) error {
	m.calls++
	if m.calls == m.failAt {
		return m.err
	}
	return m.MovementRepository.Create(ctx, mov)
}

// faultyTx corre sobre memory.Store e inyecta la falla dentro de la transacción.
type faultyTx struct {
	store  *memory.Store
	failAt int
	err    error
}

func (r faultyTx) Run(ctx context.Context, fn func(
	ctx context.Context,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.store.Run(ctx, func(ctx context.Context, movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		return fn(ctx, &failingMovements{MovementRepository: movRepo, failAt: r.failAt, err: r.err}, productRepo)
	})
}

func TestBatchInbound_FallaAMitadRevierteTodo(t *testing.T) {
	f := newFixture(t)
	f.product(t, "A", "Arroz", 7)
	f.product(t, "B", "Frijol", 3)
	writer := appinv.NewLedgerWriter(faultyTx{store: f.store, failAt: 2, err: errDiskFull}, f.repos.Products, f.repos.Merchants, f.cache, nil, nil)
	batch := appinv.NewBatchInboundUseCase(writer)

	_, err := batch.RecordBatchInbound(context.Background(), appinv.BatchInboundInput{
		Items: []appinv.BatchItem{{ProductID: "A", Quantity: 10}, {ProductID: "B", Quantity: 5}, {ProductID: "A", Quantity: 1}},
	})
	require.ErrorIs(t, err, errDiskFull)

	assert.Equal(t, int64(7), f.stock(t, "A"))
	assert.Equal(t, int64(3), f.stock(t, "B"))
	assert.Zero(t, f.movementCount(t, "A"))
	assert.Zero(t, f.movementCount(t, "B"))
	assert.Zero(t, f.cache.invalidated, "sin commit no se invalida la caché")
}

func TestLedgerWriter_FallaTrasAjustarStockRevierte(t *testing.T) {
	f := newFixture(t)
	f.product(t, "A", "Arroz", 10)
	f.merchant(t, "M", "Tienda")
	writer := appinv.NewLedgerWriter(faultyTx{store: f.store, failAt: 1, err: errDiskFull}, f.repos.Products, f.repos.Merchants, nil, nil, nil)

	_, err := writer.RecordOutbound(context.Background(), appinv.OutboundInput{ProductID: "A", MerchantID: "M", Quantity: 4})
	require.ErrorIs(t, err, errDiskFull)
	assert.False(t, domain.IsRetryable(err))
	assert.Equal(t, int64(10), f.stock(t, "A"))
	assert.Zero(t, f.movementCount(t, "A"))
}

func TestLedgerWriter_CancelacionDentroDeLaTransaccionEsReintentable(t *testing.T) {
	f := newFixture(t)
	f.product(t, "A", "Arroz", 10)
	writer := appinv.NewLedgerWriter(faultyTx{store: f.store, failAt: 1, err: context.DeadlineExceeded}, f.repos.Products, f.repos.Merchants, nil, nil, nil)

	_, err := writer.RecordInbound(context.Background(), appinv.InboundInput{ProductID: "A", Quantity: 5})
	require.Error(t, err)
	assert.True(t, domain.IsRetryable(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(10), f.stock(t, "A"))
}
