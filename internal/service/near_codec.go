package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/goodnatureofminers/multichain-tx/internal/near"
	"github.com/goodnatureofminers/multichain-tx/pkg/workerpool"
	"go.uber.org/zap"
)

const defaultWorkerCount = 8

// NearCodec encodes and decodes NEAR actions and prepares delegate actions for
// an external signer.
type NearCodec struct {
	workerCount int
	metrics     Metrics
	logger      *zap.Logger
}

// NewNearCodec constructs the codec. A non-positive workerCount uses the default.
func NewNearCodec(workerCount int, metrics Metrics, logger *zap.Logger) *NearCodec {
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NearCodec{workerCount: workerCount, metrics: metrics, logger: logger}
}

// EncodeActions returns the borsh encoding of every action, in input order.
func (c *NearCodec) EncodeActions(ctx context.Context, actions []near.Action) (encoded [][]byte, err error) {
	started := time.Now()
	defer func() {
		c.observeBatch("encode_actions", err, len(actions), started)
	}()

	encoded, err = workerpool.Map(ctx, c.workerCount, indexed(actions), func(_ context.Context, item indexedItem[near.Action]) ([]byte, error) {
		b, err := near.EncodeAction(item.value)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", item.index, err)
		}
		return b, nil
	})
	if err != nil {
		c.logger.Error("encode actions failed", zap.Int("count", len(actions)), zap.Error(err))
		return nil, fmt.Errorf("encode actions: %w", err)
	}

	c.logger.Debug("encoded actions", zap.Int("count", len(encoded)))
	return encoded, nil
}

// DecodeActions decodes every borsh-encoded action, in input order.
func (c *NearCodec) DecodeActions(ctx context.Context, encoded [][]byte) (actions []near.Action, err error) {
	started := time.Now()
	defer func() {
		c.observeBatch("decode_actions", err, len(encoded), started)
	}()

	actions, err = workerpool.Map(ctx, c.workerCount, indexed(encoded), func(_ context.Context, item indexedItem[[]byte]) (near.Action, error) {
		a, err := near.DecodeAction(item.value)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", item.index, err)
		}
		return a, nil
	})
	if err != nil {
		c.logger.Error("decode actions failed", zap.Int("count", len(encoded)), zap.Error(err))
		return nil, fmt.Errorf("decode actions: %w", err)
	}

	c.logger.Debug("decoded actions", zap.Int("count", len(actions)))
	return actions, nil
}

// DecodeAction decodes a single borsh-encoded action.
func (c *NearCodec) DecodeAction(data []byte) (a near.Action, err error) {
	started := time.Now()
	defer func() {
		c.observe("decode_action", err, started)
	}()

	a, err = near.DecodeAction(data)
	if err != nil {
		c.logger.Error("decode action failed", zap.Int("bytes", len(data)), zap.Error(err))
		return nil, fmt.Errorf("decode action: %w", err)
	}
	return a, nil
}

// ActionFromJSON parses a single tagged action.
func (c *NearCodec) ActionFromJSON(data []byte) (a near.Action, err error) {
	started := time.Now()
	defer func() {
		c.observe("action_from_json", err, started)
	}()

	a, err = near.UnmarshalActionJSON(data)
	if err != nil {
		c.logger.Error("parse action failed", zap.Error(err))
		return nil, err
	}
	return a, nil
}

// ActionsFromJSON parses a JSON array of tagged actions.
func (c *NearCodec) ActionsFromJSON(data []byte) (actions []near.Action, err error) {
	started := time.Now()
	defer func() {
		c.observe("actions_from_json", err, started)
	}()

	actions, err = near.UnmarshalActionsJSON(data)
	if err != nil {
		c.logger.Error("parse actions failed", zap.Error(err))
		return nil, err
	}
	return actions, nil
}

// ActionsToJSON writes actions as a JSON array of tagged actions.
func (c *NearCodec) ActionsToJSON(actions []near.Action) (data []byte, err error) {
	started := time.Now()
	defer func() {
		c.observe("actions_to_json", err, started)
	}()

	data, err = near.MarshalActionsJSON(actions)
	if err != nil {
		c.logger.Error("format actions failed", zap.Error(err))
		return nil, err
	}
	return data, nil
}

// DelegateFromJSON parses a DelegateAction.
func (c *NearCodec) DelegateFromJSON(data []byte) (d near.DelegateAction, err error) {
	started := time.Now()
	defer func() {
		c.observe("delegate_from_json", err, started)
	}()

	if err = json.Unmarshal(data, &d); err != nil {
		c.logger.Error("parse delegate action failed", zap.Error(err))
		return near.DelegateAction{}, fmt.Errorf("parse delegate action: %w", err)
	}
	return d, nil
}

// DelegatePayload returns the bytes a delegate signature commits to and their
// SHA-256 hash.
func (c *NearCodec) DelegatePayload(d near.DelegateAction) (payload []byte, hash near.CryptoHash, err error) {
	started := time.Now()
	defer func() {
		c.observe("delegate_payload", err, started)
	}()

	payload, err = d.SigningPayload()
	if err != nil {
		c.logger.Error("delegate payload failed", zap.String("sender", d.SenderID.String()), zap.Error(err))
		return nil, near.CryptoHash{}, fmt.Errorf("delegate payload: %w", err)
	}
	hash, err = d.Hash()
	if err != nil {
		return nil, near.CryptoHash{}, fmt.Errorf("delegate hash: %w", err)
	}

	c.logger.Debug("delegate payload",
		zap.String("sender", d.SenderID.String()),
		zap.String("receiver", d.ReceiverID.String()),
		zap.Int("actions", len(d.Actions)),
		zap.Stringer("hash", hash))
	return payload, hash, nil
}

// SignDelegate asks signer to sign d and returns the signed action.
func (c *NearCodec) SignDelegate(ctx context.Context, signer Signer, d near.DelegateAction) (signed near.SignedDelegateAction, err error) {
	started := time.Now()
	defer func() {
		c.observe("sign_delegate", err, started)
	}()

	signed, err = near.Sign(ctx, signer, d)
	if err != nil {
		c.logger.Error("sign delegate action failed", zap.String("sender", d.SenderID.String()), zap.Error(err))
		return near.SignedDelegateAction{}, err
	}
	return signed, nil
}

func (c *NearCodec) observe(operation string, err error, started time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.Observe(operation, err, started)
}

func (c *NearCodec) observeBatch(operation string, err error, items int, started time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveBatch(operation, err, items, started)
}

type indexedItem[T any] struct {
	index int
	value T
}

func indexed[T any](items []T) []indexedItem[T] {
	out := make([]indexedItem[T], len(items))
	for i, item := range items {
		out[i] = indexedItem[T]{index: i, value: item}
	}
	return out
}
