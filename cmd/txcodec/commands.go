package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/multichain-tx/internal/near"
	"github.com/goodnatureofminers/multichain-tx/internal/service"
	"github.com/goodnatureofminers/multichain-tx/pkg/batcher"
)

type inputOption struct {
	Input string `long:"input" short:"i" description:"input file, stdin when empty or -"`
}

func (o inputOption) open(a *app) (io.ReadCloser, error) {
	if o.Input == "" || o.Input == "-" {
		return io.NopCloser(a.in), nil
	}
	f, err := os.Open(o.Input)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

func (o inputOption) read(a *app) ([]byte, error) {
	rc, err := o.open(a)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

type nearEncodeCommand struct {
	inputOption
	Stream              bool          `long:"stream" description:"read one JSON action per line and encode in batches"`
	BatchSize           int           `long:"batch-size" description:"actions per batch in stream mode" default:"100"`
	FlushInterval       time.Duration `long:"flush-interval" description:"flush a partial batch after this long in stream mode" default:"1s"`
	MaxBatchesPerSecond int           `long:"max-batches-per-second" description:"batch rate limit in stream mode, 0 for none" default:"0"`

	app *app
}

func (c *nearEncodeCommand) Execute([]string) error {
	codec := c.app.nearCodec()
	if c.Stream {
		return c.stream(codec)
	}

	data, err := c.read(c.app)
	if err != nil {
		return err
	}
	actions, err := codec.ActionsFromJSON(data)
	if err != nil {
		return err
	}
	encoded, err := codec.EncodeActions(c.app.ctx, actions)
	if err != nil {
		return err
	}
	return writeHexLines(c.app.out, encoded)
}

func (c *nearEncodeCommand) stream(codec *service.NearCodec) error {
	rc, err := c.open(c.app)
	if err != nil {
		return err
	}
	defer rc.Close()

	b := batcher.New(c.app.logger.Named("near-encode"), func(ctx context.Context, actions []near.Action) error {
		encoded, err := codec.EncodeActions(ctx, actions)
		if err != nil {
			return err
		}
		return writeHexLines(c.app.out, encoded)
	}, c.BatchSize, c.FlushInterval, c.MaxBatchesPerSecond)
	b.Start(c.app.ctx)

	lines := 0
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		lines++
		action, err := codec.ActionFromJSON(line)
		if err != nil {
			_ = b.Stop()
			return fmt.Errorf("line %d: %w", lines, err)
		}
		if err := b.Add(c.app.ctx, action); err != nil {
			_ = b.Stop()
			return fmt.Errorf("line %d: %w", lines, err)
		}
	}
	if err := scanner.Err(); err != nil {
		_ = b.Stop()
		return fmt.Errorf("read input: %w", err)
	}
	if err := b.Stop(); err != nil {
		return err
	}
	c.app.logger.Debug("stream encoded", zap.Int("actions", lines))
	return nil
}

type nearDecodeCommand struct {
	inputOption

	app *app
}

func (c *nearDecodeCommand) Execute([]string) error {
	data, err := c.read(c.app)
	if err != nil {
		return err
	}
	var encoded [][]byte
	for i, field := range strings.Fields(string(data)) {
		b, err := hex.DecodeString(field)
		if err != nil {
			return fmt.Errorf("value %d: %w", i, err)
		}
		encoded = append(encoded, b)
	}

	codec := c.app.nearCodec()
	actions, err := codec.DecodeActions(c.app.ctx, encoded)
	if err != nil {
		return err
	}
	out, err := codec.ActionsToJSON(actions)
	if err != nil {
		return err
	}
	return writeLine(c.app.out, out)
}

type nearDelegatePayloadCommand struct {
	inputOption

	app *app
}

type delegatePayloadOutput struct {
	Payload string          `json:"payload"`
	Hash    string          `json:"hash"`
	HashB58 near.CryptoHash `json:"hash_base58"`
}

func (c *nearDelegatePayloadCommand) Execute([]string) error {
	data, err := c.read(c.app)
	if err != nil {
		return err
	}
	codec := c.app.nearCodec()
	d, err := codec.DelegateFromJSON(data)
	if err != nil {
		return err
	}
	payload, hash, err := codec.DelegatePayload(d)
	if err != nil {
		return err
	}
	return writeJSON(c.app.out, delegatePayloadOutput{
		Payload: hex.EncodeToString(payload),
		Hash:    hex.EncodeToString(hash[:]),
		HashB58: hash,
	})
}

type btcBuildCommand struct {
	inputOption

	app *app
}

func (c *btcBuildCommand) Execute([]string) error {
	data, err := c.read(c.app)
	if err != nil {
		return err
	}
	var tmpl service.TransactionTemplate
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return fmt.Errorf("parse transaction template: %w", err)
	}
	codec, err := c.app.bitcoinCodec()
	if err != nil {
		return err
	}
	built, err := codec.Build(tmpl)
	if err != nil {
		return err
	}
	return writeJSON(c.app.out, built)
}

type btcDecodeCommand struct {
	inputOption

	app *app
}

type decodedTransaction struct {
	service.BuiltTransaction
	Addresses [][]string `json:"addresses"`
}

func (c *btcDecodeCommand) Execute([]string) error {
	data, err := c.read(c.app)
	if err != nil {
		return err
	}
	codec, err := c.app.bitcoinCodec()
	if err != nil {
		return err
	}
	built, err := codec.Decode(strings.TrimSpace(string(data)))
	if err != nil {
		return err
	}
	addrs, err := codec.OutputAddresses(built.Transaction)
	if err != nil {
		return err
	}
	return writeJSON(c.app.out, decodedTransaction{BuiltTransaction: built, Addresses: addrs})
}

func writeHexLines(w io.Writer, values [][]byte) error {
	for _, v := range values {
		if err := writeLine(w, []byte(hex.EncodeToString(v))); err != nil {
			return err
		}
	}
	return nil
}

func writeLine(w io.Writer, b []byte) error {
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("format output: %w", err)
	}
	return writeLine(w, out)
}
