package models

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zlib"
	"github.com/shopspring/decimal"
)

// Tally is the persisted record of one generated direct-debit batch.
// The serialized payment message is stored zlib-compressed; Contents
// and SetContents convert transparently. Tally rows are append-only.
type Tally struct {
	ID                 int64
	CreationTime       time.Time
	CollectionDate     time.Time
	TotalAmount        decimal.Decimal
	CompressedContents []byte
}

// SetContents stores the serialized message in compressed form.
func (t *Tally) SetContents(contents string) error {
	const op = "models.Tally.SetContents"
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write([]byte(contents)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	t.CompressedContents = buf.Bytes()
	return nil
}

// Contents returns the decompressed serialized message.
func (t *Tally) Contents() (string, error) {
	const op = "models.Tally.Contents"
	r, err := zlib.NewReader(bytes.NewReader(t.CompressedContents))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(raw), nil
}

// Asset is one member's payable amount inside a tally: the debit
// instruction before serialization. E2EID still carries the unexpanded
// template; the member id is substituted during serialization.
type Asset struct {
	Debitor Member
	Purpose string
	Amount  decimal.Decimal
	E2EID   string
}
