package service

import (
	"context"
	"time"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Metrics interface {
		Observe(operation string, err error, started time.Time)
		ObserveBatch(operation string, err error, items int, started time.Time)
	}
	Signer interface {
		Sign(ctx context.Context, hash []byte) ([]byte, error)
	}
)
