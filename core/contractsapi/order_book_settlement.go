package contractsapi

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	kwilClientType "github.com/trufnetwork/kwil-db/core/client/types"
	kwiltypes "github.com/trufnetwork/kwil-db/core/types"
	"go.uber.org/zap"

	"github.com/trufnetwork/orderbook-go/core/types"
)

// ═══════════════════════════════════════════════════════════════
// SETTLEMENT & REWARDS
// ═══════════════════════════════════════════════════════════════

// SettleMarket asks the node to resolve a market from its signed attestation.
// The node checks the settle time, the attestation and the collateral, then
// pays out winners and distributes fees.
//
// A scheduler on the node may settle the market first. Either way a second
// settlement fails with an error matching types.ErrAlreadySettled, whether the
// CheckSettleable pre-read refused it or the node did.
func (o *OrderBook) SettleMarket(ctx context.Context, input types.SettleMarketInput,
	opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error) {
	const action = "settle_market"
	if err := input.Validate(); err != nil {
		return kwiltypes.Hash{}, o.invalid(action, err)
	}

	if input.CheckSettleable {
		info, err := o.GetMarketInfo(ctx, types.GetMarketInfoInput{QueryID: input.QueryID})
		if err != nil {
			return kwiltypes.Hash{}, err
		}
		if err := info.Data.Settleable(o.now()); err != nil {
			o.logger.Debug("settlement refused locally", zap.Int("query_id", input.QueryID), zap.Error(err))
			return kwiltypes.Hash{}, o.invalid(action, errors.Wrapf(err, "query_id=%d", input.QueryID))
		}
	}

	return o.execute(ctx, action, [][]any{{input.QueryID}}, opts...)
}

// SampleLPRewards scores the paired YES/NO bids resting inside the reward
// spread at block and stores each provider's share. The node expects to be
// sampled periodically; rewards are paid from fees at settlement.
func (o *OrderBook) SampleLPRewards(ctx context.Context, input types.SampleLPRewardsInput,
	opts ...kwilClientType.TxOpt) (kwiltypes.Hash, error) {
	const action = "sample_lp_rewards"
	if err := input.Validate(); err != nil {
		return kwiltypes.Hash{}, o.invalid(action, err)
	}
	return o.execute(ctx, action, [][]any{{input.QueryID, input.Block}}, opts...)
}

// GetDistributionSummary reports how a settled market's fees were paid out.
// Markets not yet distributed give a *types.NotFoundError.
func (o *OrderBook) GetDistributionSummary(ctx context.Context,
	input types.GetDistributionSummaryInput) (types.QueryResponse[*types.DistributionSummary], error) {
	var zero types.QueryResponse[*types.DistributionSummary]
	if err := input.Validate(); err != nil {
		return zero, errors.WithStack(err)
	}

	result, md, err := o.call(ctx, "get_distribution_summary", []any{input.QueryID})
	if err != nil {
		return zero, errors.WithStack(err)
	}
	if len(result.Values) == 0 {
		return zero, errors.WithStack(
			&types.NotFoundError{Resource: "distribution", Key: "query_id=" + strconv.Itoa(input.QueryID)})
	}

	summary, err := parseDistributionSummaryRow(result.Values[0])
	if err != nil {
		return zero, errors.WithStack(err)
	}
	return respond(summary, md), nil
}

// GetDistributionDetails lists the per-provider rewards of one distribution.
func (o *OrderBook) GetDistributionDetails(ctx context.Context,
	input types.GetDistributionDetailsInput) (types.QueryResponse[[]types.LPRewardDetail], error) {
	if err := input.Validate(); err != nil {
		return types.QueryResponse[[]types.LPRewardDetail]{}, errors.WithStack(err)
	}
	return collectRows(ctx, &o.actionRunner, "get_distribution_details", []any{input.DistributionID}, parseLPRewardDetailRow)
}

// GetParticipantRewardHistory lists every reward a wallet received.
func (o *OrderBook) GetParticipantRewardHistory(ctx context.Context,
	input types.GetParticipantRewardHistoryInput) (types.QueryResponse[[]types.RewardHistory], error) {
	if err := input.Validate(); err != nil {
		return types.QueryResponse[[]types.RewardHistory]{}, errors.WithStack(err)
	}
	return collectRows(ctx, &o.actionRunner, "get_participant_reward_history", []any{input.WalletHex}, parseRewardHistoryRow)
}

// ═══════════════════════════════════════════════════════════════
// ROW PARSERS
// ═══════════════════════════════════════════════════════════════

// distribution_id, total_fees_distributed, total_lp_count, block_count, distributed_at
func parseDistributionSummaryRow(row []any) (*types.DistributionSummary, error) {
	summary := &types.DistributionSummary{}
	s := newRowScanner(row, 5, "get_distribution_summary")
	s.intCol("distribution_id", &summary.DistributionID)
	s.stringCol("total_fees_distributed", &summary.TotalFeesDistributed)
	s.int64Col("total_lp_count", &summary.TotalLPCount)
	s.int64Col("block_count", &summary.BlockCount)
	s.int64Col("distributed_at", &summary.DistributedAt)
	if err := s.Err(); err != nil {
		return nil, err
	}
	return summary, nil
}

// wallet_address, reward_amount, total_reward_percent
func parseLPRewardDetailRow(row []any) (types.LPRewardDetail, error) {
	var detail types.LPRewardDetail
	s := newRowScanner(row, 3, "get_distribution_details")
	s.bytesCol("wallet_address", &detail.WalletAddress)
	s.stringCol("reward_amount", &detail.RewardAmount)
	s.stringCol("total_reward_percent", &detail.TotalRewardPercent)
	return detail, s.Err()
}

// distribution_id, query_id, reward_amount, total_reward_percent, distributed_at
func parseRewardHistoryRow(row []any) (types.RewardHistory, error) {
	var entry types.RewardHistory
	s := newRowScanner(row, 5, "get_participant_reward_history")
	s.intCol("distribution_id", &entry.DistributionID)
	s.intCol("query_id", &entry.QueryID)
	s.stringCol("reward_amount", &entry.RewardAmount)
	s.stringCol("total_reward_percent", &entry.TotalRewardPercent)
	s.int64Col("distributed_at", &entry.DistributedAt)
	return entry, s.Err()
}
