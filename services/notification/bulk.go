package notification

import (
	"context"
	"errors"

	"easybook/utils"
	"easybook/validation"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const bulkConcurrency = 8

func (s *DefaultNotificationService) SendBulk(ctx context.Context, req BulkRequest) (*BulkResult, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	outcomes := make([]BulkOutcome, len(req.UserIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkConcurrency)
	for i, userID := range req.UserIDs {
		i, userID := i, userID
		g.Go(func() error {
			outcomes[i] = BulkOutcome{UserID: userID}
			result, err := s.Send(gctx, SendRequest{UserID: userID, Title: req.Title, Body: req.Body, Type: req.Type, Data: req.Data})
			switch {
			case err != nil:
				outcomes[i].Error = err.Error()
				var appErr *utils.AppError
				if errors.As(err, &appErr) {
					outcomes[i].Error = appErr.Message
				}
			case !result.Success:
				outcomes[i].Error = result.Error
			default:
				outcomes[i].Success = true
			}
			return nil
		})
	}
	_ = g.Wait()

	out := &BulkResult{Results: outcomes}
	for _, o := range outcomes {
		if o.Success {
			out.Successful++
		} else {
			out.Failed++
		}
	}
	utils.GetLogger().Info("Bulk notification sent",
		zap.Int("recipients", len(outcomes)), zap.Int("successful", out.Successful), zap.Int("failed", out.Failed))
	return out, nil
}
