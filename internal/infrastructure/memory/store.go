// Package memory implementa los puertos de persistencia en memoria: driver "memory"
// para desarrollo local y pruebas de los casos de uso.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
)

// dataset estado completo del almacenamiento.
type dataset struct {
	products  map[string]entity.Product
	merchants map[string]entity.Merchant
	movements []entity.Movement // solo anexado, en orden de inserción
	users     map[string]entity.User
}

func newDataset() *dataset {
	return &dataset{
		products:  make(map[string]entity.Product),
		merchants: make(map[string]entity.Merchant),
		users:     make(map[string]entity.User),
	}
}

func (d *dataset) clone() *dataset {
	c := &dataset{
		products:  make(map[string]entity.Product, len(d.products)),
		merchants: make(map[string]entity.Merchant, len(d.merchants)),
		movements: append([]entity.Movement(nil), d.movements...),
		users:     make(map[string]entity.User, len(d.users)),
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.merchants {
		c.merchants[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	return c
}

// scope abstrae dónde operan los repositorios: el estado confirmado o la copia de una transacción.
type scope interface {
	view(fn func(d *dataset))
	update(fn func(d *dataset) error) error
}

// Store estado en memoria con transacciones de copia: Run trabaja sobre un clon y lo
// publica solo si fn termina sin error. Las escrituras se serializan con writeMu.
type Store struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	data    *dataset
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

func (s *Store) view(fn func(d *dataset)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

func (s *Store) update(fn func(d *dataset) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// txScope copia de trabajo exclusiva de una transacción en curso.
type txScope struct {
	d *dataset
}

func (t txScope) view(fn func(d *dataset))               { fn(t.d) }
func (t txScope) update(fn func(d *dataset) error) error { return fn(t.d) }

// Run ejecuta fn en una transacción: Commit publica la copia de trabajo; cualquier error
// o cancelación de ctx la descarta sin efectos visibles.
func (s *Store) Run(ctx context.Context, fn func(
	ctx context.Context,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return &domain.TransactionError{Op: "begin", Err: err}
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	work := s.data.clone()
	s.mu.RUnlock()

	tx := txScope{d: work}
	if err := fn(ctx, &MovementRepository{sc: tx}, &ProductRepository{sc: tx}); err != nil {
		// Igual que el driver postgres: una cancelación a mitad de la transacción es reintentable.
		var te *domain.TransactionError
		if !errors.As(err, &te) && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return &domain.TransactionError{Op: "transaction", Err: err}
		}
		return err
	}
	if err := ctx.Err(); err != nil {
		return &domain.TransactionError{Op: "commit", Err: err}
	}

	s.mu.Lock()
	s.data = work
	s.mu.Unlock()
	return nil
}

// Repositories agrupa los adaptadores sobre el estado confirmado.
type Repositories struct {
	Products  *ProductRepository
	Merchants *MerchantRepository
	Movements *MovementRepository
	Reports   *ReportRepository
	Users     *UserRepository
}

// Repositories devuelve los repositorios fuera de transacción.
func (s *Store) Repositories() Repositories {
	return Repositories{
		Products:  &ProductRepository{sc: s},
		Merchants: &MerchantRepository{sc: s},
		Movements: &MovementRepository{sc: s},
		Reports:   &ReportRepository{sc: s},
		Users:     &UserRepository{sc: s},
	}
}
