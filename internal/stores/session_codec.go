package stores

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/MrEthical07/permflow/catalog"
)

const sessionRecordVersionV1 = 1

var errSessionRecordCorrupt = errors.New("edit session record corrupt")

func writeString(buf *bytes.Buffer, s string) error {
	if len(s) > 65535 {
		return errSessionRecordCorrupt
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(s))); err != nil {
		return err
	}
	buf.WriteString(s)
	return nil
}

func readString(r *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(r, raw); err != nil {
		return "", err
	}
	return string(raw), nil
}

func writeKeyList(buf *bytes.Buffer, keys []string) error {
	if len(keys) > 255 {
		return errSessionRecordCorrupt
	}
	buf.WriteByte(byte(len(keys)))
	for _, k := range keys {
		if err := writeString(buf, k); err != nil {
			return err
		}
	}
	return nil
}

func readKeyList(r *bytes.Reader) ([]string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	keys := make([]string, 0, n)
	for i := 0; i < int(n); i++ {
		k, err := readString(r)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func encodeEditSession(s *EditSession) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(sessionRecordVersionV1)
	buf.WriteByte(byte(s.Context))
	buf.WriteByte(s.Mode)

	var flags byte
	if s.AllSelected {
		flags |= 1
	}
	buf.WriteByte(flags)

	if err := binary.Write(&buf, binary.BigEndian, s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.ExpiresAt); err != nil {
		return nil, err
	}

	for _, field := range []string{s.ID, s.AgentID, s.TargetID, s.ScopeID} {
		if err := writeString(&buf, field); err != nil {
			return nil, err
		}
	}

	if len(s.Pages) > 255 {
		return nil, errSessionRecordCorrupt
	}
	buf.WriteByte(byte(len(s.Pages)))
	for idx, sel := range s.Pages {
		if idx < 0 || idx > 255 {
			return nil, errSessionRecordCorrupt
		}
		buf.WriteByte(byte(idx))
		for _, list := range [][]string{sel.Keys, sel.Allow, sel.Deny, sel.Clear} {
			if err := writeKeyList(&buf, list); err != nil {
				return nil, err
			}
		}
	}

	return buf.Bytes(), nil
}

func decodeEditSession(data []byte) (*EditSession, error) {
	r := bytes.NewReader(data)

	version, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != sessionRecordVersionV1 {
		return nil, errSessionRecordCorrupt
	}

	ctxByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	mode, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	flags, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	s := &EditSession{
		Context:     catalog.Context(ctxByte),
		Mode:        mode,
		AllSelected: flags&1 != 0,
		Pages:       make(map[int]PageSelection),
	}

	if err := binary.Read(r, binary.BigEndian, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &s.ExpiresAt); err != nil {
		return nil, err
	}

	for _, field := range []*string{&s.ID, &s.AgentID, &s.TargetID, &s.ScopeID} {
		v, err := readString(r)
		if err != nil {
			return nil, err
		}
		*field = v
	}

	pageCount, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(pageCount); i++ {
		idx, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		var sel PageSelection
		for _, list := range []*[]string{&sel.Keys, &sel.Allow, &sel.Deny, &sel.Clear} {
			v, err := readKeyList(r)
			if err != nil {
				return nil, err
			}
			*list = v
		}
		s.Pages[int(idx)] = sel
	}

	return s, nil
}
