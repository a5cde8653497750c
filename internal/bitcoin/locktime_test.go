package bitcoin

import (
	"bytes"
	"errors"
	"testing"
)

func TestLockTimeFromHeight(t *testing.T) {
	tests := []struct {
		name    string
		height  uint32
		want    LockTime
		wantErr bool
	}{
		{name: "zero", height: 0, want: 0},
		{name: "height", height: 10000, want: 10000},
		{name: "last height", height: LockTimeThreshold - 1, want: LockTimeThreshold - 1},
		{name: "threshold is a time", height: LockTimeThreshold, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LockTimeFromHeight(tt.height)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LockTimeFromHeight() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLockTime) {
					t.Fatalf("LockTimeFromHeight() error = %v, want ErrInvalidLockTime", err)
				}
				return
			}
			if got != tt.want || !got.IsBlockHeight() {
				t.Fatalf("LockTimeFromHeight() got = %v, want height %d", got, tt.want)
			}
		})
	}
}

func TestLockTimeFromTime(t *testing.T) {
	tests := []struct {
		name    string
		unix    uint32
		wantErr bool
	}{
		{name: "threshold", unix: LockTimeThreshold},
		{name: "recent timestamp", unix: 1_700_000_000},
		{name: "height range", unix: 10000, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LockTimeFromTime(tt.unix)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LockTimeFromTime() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			unix, ok := got.Time()
			if !ok || unix != tt.unix {
				t.Fatalf("LockTimeFromTime() got = %v, want time %d", got, tt.unix)
			}
			if _, ok := got.Height(); ok {
				t.Fatalf("time lock must not report a height")
			}
		})
	}
}

func TestLockTime_RoundTrip(t *testing.T) {
	lock, err := LockTimeFromHeight(10000)
	if err != nil {
		t.Fatalf("LockTimeFromHeight() error = %v", err)
	}

	var buf bytes.Buffer
	if err := lock.Encode(&buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if got := buf.Bytes(); !bytes.Equal(got, []byte{0x10, 0x27, 0, 0}) {
		t.Fatalf("Encode() got = %x", got)
	}

	got, err := DecodeLockTime(&buf)
	if err != nil {
		t.Fatalf("DecodeLockTime() error = %v", err)
	}
	if got != lock {
		t.Fatalf("DecodeLockTime() got = %v, want %v", got, lock)
	}

	if _, err := DecodeLockTime(bytes.NewReader([]byte{1})); err == nil {
		t.Fatalf("DecodeLockTime() expected truncation error")
	}
}
