package ledger

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// ApplyMovementFromRequest adapta el request HTTP al caso de uso ApplyMovement.
func (e *Engine) ApplyMovementFromRequest(ctx context.Context, userID string, in dto.CreateMovementRequest) (*entity.Batch, *entity.Movement, error) {
	return e.ApplyMovement(ctx, MovementInput{
		BatchID:   in.BatchID,
		Type:      in.MovementType,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		Reference: in.Reference,
		UserID:    userID,
	})
}

// TransferFromRequest adapta el request HTTP al caso de uso Transfer.
func (e *Engine) TransferFromRequest(ctx context.Context, userID string, in dto.TransferRequest) (*TransferResult, error) {
	return e.Transfer(ctx, TransferInput{
		FromBatchID: in.FromBatchID,
		ToBatchID:   in.ToBatchID,
		Quantity:    in.Quantity,
		Reason:      in.Reason,
		Reference:   in.Reference,
		UserID:      userID,
	})
}

// ReceiveBatchFromRequest adapta el request HTTP al caso de uso ReceiveBatch.
func (e *Engine) ReceiveBatchFromRequest(ctx context.Context, userID string, in dto.CreateBatchRequest) (*entity.Batch, *entity.Movement, error) {
	return e.ReceiveBatch(ctx, ReceiveBatchInput{
		ProductID:    in.ProductID,
		ShopID:       in.ShopID,
		BatchNumber:  in.BatchNumber,
		Quantity:     in.Quantity,
		ExpiryDate:   in.ExpiryDate,
		ReceivedDate: in.ReceivedDate,
		SupplierID:   in.SupplierID,
		UserID:       userID,
	})
}
