package stores

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"time"

	"github.com/MrEthical07/permflow/catalog"
)

// ErrUndoNotFound is returned when an undo entry is missing, expired, or
// already consumed. All three are indistinguishable by design: a token is
// valid at most once.
var ErrUndoNotFound = errors.New("undo entry not found")

// ErrUndoUnavailable wraps backend failures of the undo cache.
var ErrUndoUnavailable = errors.New("undo cache unavailable")

// Undo entry kinds. The engine interprets the record to reverse the
// mutation through the entity gateway; no callable state is persisted.
const (
	UndoSubject uint8 = iota + 1
	UndoOverwrite
)

const undoRecordVersionV1 = 1

var errUndoRecordCorrupt = errors.New("undo record corrupt")

// UndoRecord is the captured pre-mutation state of one applied edit.
type UndoRecord struct {
	Kind          uint8
	SubjectID     string
	ScopeID       string
	ScopeTargetID string
	Before        catalog.Mask128
	BeforeAllow   catalog.Mask128
	BeforeDeny    catalog.Mask128
	CreatedAt     int64
	ExpiresAt     int64
}

// UndoStore is the one-shot undo cache. Consume must be atomic: two racing
// consumers of the same id see at most one success.
type UndoStore interface {
	Save(ctx context.Context, id string, rec *UndoRecord, ttl time.Duration) error
	Consume(ctx context.Context, id string) (*UndoRecord, error)
	Close() error
}

func encodeUndoRecord(rec *UndoRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(undoRecordVersionV1)
	buf.WriteByte(rec.Kind)

	if err := binary.Write(&buf, binary.BigEndian, rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, rec.ExpiresAt); err != nil {
		return nil, err
	}

	for _, field := range []string{rec.SubjectID, rec.ScopeID, rec.ScopeTargetID} {
		if err := writeString(&buf, field); err != nil {
			return nil, err
		}
	}

	buf.Write(catalog.EncodeMask128(rec.Before))
	buf.Write(catalog.EncodeMask128(rec.BeforeAllow))
	buf.Write(catalog.EncodeMask128(rec.BeforeDeny))

	return buf.Bytes(), nil
}

func decodeUndoRecord(data []byte) (*UndoRecord, error) {
	r := bytes.NewReader(data)

	version, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != undoRecordVersionV1 {
		return nil, errUndoRecordCorrupt
	}

	rec := &UndoRecord{}
	rec.Kind, err = r.ReadByte()
	if err != nil {
		return nil, err
	}

	if err := binary.Read(r, binary.BigEndian, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &rec.ExpiresAt); err != nil {
		return nil, err
	}

	for _, field := range []*string{&rec.SubjectID, &rec.ScopeID, &rec.ScopeTargetID} {
		v, err := readString(r)
		if err != nil {
			return nil, err
		}
		*field = v
	}

	for _, mask := range []*catalog.Mask128{&rec.Before, &rec.BeforeAllow, &rec.BeforeDeny} {
		raw := make([]byte, 16)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, err
		}
		m, err := catalog.DecodeMask128(raw)
		if err != nil {
			return nil, err
		}
		*mask = m
	}

	return rec, nil
}
