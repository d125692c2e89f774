package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/connecta/collabo-backend/internal/collabo/domain"
)

func (q *Queries) InsertPayment(ctx context.Context, p *domain.Payment) error {
	const stmt = `
insert into payments (
  id, collabo_project_id, payer_id, payee_id, amount, currency, platform_fee, net_amount,
  payment_type, description, status, escrow_status, gateway_reference, created_at, updated_at
) values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, nullif($13, ''), $14, $15)`

	_, err := q.db.Exec(ctx, stmt,
		p.ID, p.CollaboProjectID, p.PayerID, p.PayeeID, p.Amount, p.Currency, p.PlatformFee, p.NetAmount,
		p.PaymentType, p.Description, p.Status, p.EscrowStatus, p.GatewayReference, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (q *Queries) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	const stmt = `
select id, collabo_project_id, payer_id, payee_id, amount::float8, currency, platform_fee::float8, net_amount::float8,
       payment_type, description, status, escrow_status, coalesce(gateway_reference, ''), created_at, updated_at
from payments
where id = $1`

	var p domain.Payment
	err := q.db.QueryRow(ctx, stmt, id).Scan(
		&p.ID, &p.CollaboProjectID, &p.PayerID, &p.PayeeID, &p.Amount, &p.Currency, &p.PlatformFee, &p.NetAmount,
		&p.PaymentType, &p.Description, &p.Status, &p.EscrowStatus, &p.GatewayReference, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

func (q *Queries) SetPaymentReference(ctx context.Context, id, reference string) error {
	return q.updatePayment(ctx, `update payments set gateway_reference = $2, updated_at = now() where id = $1`, id, reference)
}

func (q *Queries) SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	return q.updatePayment(ctx, `update payments set status = $2, updated_at = now() where id = $1`, id, string(status))
}

func (q *Queries) updatePayment(ctx context.Context, stmt, id, value string) error {
	ct, err := q.db.Exec(ctx, stmt, id, value)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

func (q *Queries) HasSuccessfulPayment(ctx context.Context, projectID string) (bool, error) {
	const stmt = `select exists(select 1 from payments where collabo_project_id = $1 and status = 'successful')`
	var ok bool
	if err := q.db.QueryRow(ctx, stmt, projectID).Scan(&ok); err != nil {
		return false, fmt.Errorf("check payment: %w", err)
	}
	return ok, nil
}
