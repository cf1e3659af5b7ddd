package db

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"

	"ms-admission/internal/models"
)

// DB persists the tickets and menu tables with replace-the-contents writes.
// Each write runs in one transaction: delete everything, insert the new
// snapshot. Concurrent sessions therefore resolve as last-full-write-wins.
type DB struct {
	Bun *bun.DB
}

func (d *DB) LoadTickets() ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Order("ticket_id").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	// Legacy rows may hold unpadded numeric IDs.
	for i := range tickets {
		tickets[i].TicketID = models.NormalizeTicketID(tickets[i].TicketID)
	}
	return tickets, nil
}

func (d *DB) LoadMenu() ([]models.MenuEntry, error) {
	var menu []models.MenuEntry
	err := d.Bun.NewSelect().
		Model(&menu).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return menu, nil
}

func (d *DB) ReplaceTickets(tickets []models.Ticket) error {
	return d.Bun.RunInTx(context.Background(), &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return replaceTickets(ctx, tx, tickets)
	})
}

func (d *DB) ReplaceMenu(menu []models.MenuEntry) error {
	return d.Bun.RunInTx(context.Background(), &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return replaceMenu(ctx, tx, menu)
	})
}

// ReplaceAll writes both tables in a single transaction so a menu sync either
// lands completely or not at all.
func (d *DB) ReplaceAll(tickets []models.Ticket, menu []models.MenuEntry) error {
	return d.Bun.RunInTx(context.Background(), &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := replaceTickets(ctx, tx, tickets); err != nil {
			return err
		}
		return replaceMenu(ctx, tx, menu)
	})
}

func replaceTickets(ctx context.Context, tx bun.Tx, tickets []models.Ticket) error {
	if _, err := tx.NewDelete().Model((*models.Ticket)(nil)).Where("1 = 1").Exec(ctx); err != nil {
		return err
	}
	if len(tickets) == 0 {
		return nil
	}
	_, err := tx.NewInsert().Model(&tickets).Exec(ctx)
	return err
}

func replaceMenu(ctx context.Context, tx bun.Tx, menu []models.MenuEntry) error {
	if _, err := tx.NewDelete().Model((*models.MenuEntry)(nil)).Where("1 = 1").Exec(ctx); err != nil {
		return err
	}
	if len(menu) == 0 {
		return nil
	}
	_, err := tx.NewInsert().Model(&menu).Exec(ctx)
	return err
}
