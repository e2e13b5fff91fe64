package workflow

import "context"

// BatchDecide applies one decision across many instances on behalf of a
// single approver. Each item runs through the full single-instance engine;
// an item failure is recorded and never aborts the rest of the batch. The
// only whole-batch error is an empty ID list.
func (s *Service) BatchDecide(ctx context.Context, tenantID string, instanceIDs []string, slotIndex int, approverID, decision, comments, requestID string) (BatchResult, error) {
	if len(instanceIDs) == 0 {
		return BatchResult{}, ErrEmptyBatch
	}

	var result BatchResult
	for _, id := range instanceIDs {
		_, err := s.Decide(ctx, tenantID, Action{
			InstanceID: id,
			SlotIndex:  slotIndex,
			ApproverID: approverID,
			Decision:   decision,
			Comments:   comments,
		}, requestID)
		if err != nil {
			result.Failures = append(result.Failures, BatchFailure{InstanceID: id, Reason: err.Error()})
			continue
		}
		result.SucceededIDs = append(result.SucceededIDs, id)
	}
	return result, nil
}

func (s *Service) BatchApprove(ctx context.Context, tenantID string, instanceIDs []string, slotIndex int, approverID, comments, requestID string) (BatchResult, error) {
	return s.BatchDecide(ctx, tenantID, instanceIDs, slotIndex, approverID, DecisionApprove, comments, requestID)
}

func (s *Service) BatchReject(ctx context.Context, tenantID string, instanceIDs []string, slotIndex int, approverID, reason, requestID string) (BatchResult, error) {
	return s.BatchDecide(ctx, tenantID, instanceIDs, slotIndex, approverID, DecisionReject, reason, requestID)
}
