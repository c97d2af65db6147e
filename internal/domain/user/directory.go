package user

import (
	"context"

	"github.com/google/uuid"
)

// Directory adapts the repository for consumers that only resolve wallet
// owners (the wallet transfer path and webhook reconciliation).
type Directory struct {
	repo Repository
}

func NewDirectory(repo Repository) *Directory {
	return &Directory{repo: repo}
}

// OwnerIDByEmail returns the id of the user registered under email, or
// uuid.Nil when the email is unknown.
func (d *Directory) OwnerIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	u, err := d.repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return uuid.Nil, err
	}
	return u.ID, nil
}
