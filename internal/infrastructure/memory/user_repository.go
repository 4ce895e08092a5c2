package memory

import (
	"context"

	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
)

// UserRepository usuarios en memoria.
type UserRepository struct {
	sc scope
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	return r.sc.update(func(d *dataset) error {
		for _, other := range d.users {
			if other.Username == u.Username {
				return domain.ErrDuplicate
			}
		}
		d.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	r.sc.view(func(d *dataset) {
		if u, ok := d.users[id]; ok {
			out = &u
		}
	})
	return out, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	var out *entity.User
	r.sc.view(func(d *dataset) {
		for _, u := range d.users {
			if u.Username == username {
				u := u
				out = &u
				return
			}
		}
	})
	return out, nil
}
