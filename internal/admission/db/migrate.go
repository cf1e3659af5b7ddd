package db

import (
	"context"

	"github.com/uptrace/bun"

	"ms-admission/internal/models"
)

// InitSchema creates the tickets and menu tables when they do not exist.
// Schema migration beyond that is out of scope; the tables are replaced
// wholesale on every write anyway.
func InitSchema(bunDB *bun.DB) error {
	ctx := context.Background()

	if _, err := bunDB.NewCreateTable().Model((*models.Ticket)(nil)).IfNotExists().Exec(ctx); err != nil {
		return err
	}
	if _, err := bunDB.NewCreateTable().Model((*models.MenuEntry)(nil)).IfNotExists().Exec(ctx); err != nil {
		return err
	}
	return nil
}
