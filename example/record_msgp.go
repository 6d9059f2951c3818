package example

import (
	"sort"

	"github.com/tinylib/msgp/msgp"
)

// MarshalMsg implements msgp.Marshaler.
func (r *Record) MarshalMsg(b []byte) ([]byte, error) {
	o := msgp.Require(b, r.Msgsize())
	o = msgp.AppendMapHeader(o, 2)
	o = msgp.AppendString(o, "context")
	o = r.Context.appendMsg(o)
	o = msgp.AppendString(o, "sequence")
	o = r.Sequence.appendMsg(o)
	return o, nil
}

// UnmarshalMsg implements msgp.Unmarshaler.
func (r *Record) UnmarshalMsg(bts []byte) ([]byte, error) {
	sz, bts, err := msgp.ReadMapHeaderBytes(bts)
	if err != nil {
		return bts, msgp.WrapError(err)
	}

	for ; sz > 0; sz-- {
		var field string
		field, bts, err = msgp.ReadStringBytes(bts)
		if err != nil {
			return bts, msgp.WrapError(err)
		}

		switch field {
		case "context":
			r.Context, bts, err = readFieldsMsg(bts)
			if err != nil {
				return bts, msgp.WrapError(err, "Context")
			}
		case "sequence":
			r.Sequence, bts, err = readFieldsMsg(bts)
			if err != nil {
				return bts, msgp.WrapError(err, "Sequence")
			}
		default:
			bts, err = msgp.Skip(bts)
			if err != nil {
				return bts, msgp.WrapError(err)
			}
		}
	}

	return bts, nil
}

// Msgsize returns an upper bound on the number of bytes MarshalMsg appends.
func (r *Record) Msgsize() int {
	return msgp.MapHeaderSize +
		msgp.StringPrefixSize + len("context") + r.Context.msgsize() +
		msgp.StringPrefixSize + len("sequence") + r.Sequence.msgsize()
}

func (f Fields) appendMsg(o []byte) []byte {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	// Sorted keys keep the encoding deterministic.
	sort.Strings(keys)

	o = msgp.AppendMapHeader(o, uint32(len(keys)))
	for _, k := range keys {
		o = msgp.AppendString(o, k)
		o = msgp.AppendArrayHeader(o, uint32(len(f[k])))
		for _, v := range f[k] {
			o = msgp.AppendInt64(o, v)
		}
	}
	return o
}

func (f Fields) msgsize() int {
	s := msgp.MapHeaderSize
	for k, v := range f {
		s += msgp.StringPrefixSize + len(k) + msgp.ArrayHeaderSize + len(v)*msgp.Int64Size
	}
	return s
}

func readFieldsMsg(bts []byte) (Fields, []byte, error) {
	sz, bts, err := msgp.ReadMapHeaderBytes(bts)
	if err != nil {
		return nil, bts, err
	}

	f := make(Fields, sz)
	for ; sz > 0; sz-- {
		var key string
		key, bts, err = msgp.ReadStringBytes(bts)
		if err != nil {
			return nil, bts, err
		}

		var n uint32
		n, bts, err = msgp.ReadArrayHeaderBytes(bts)
		if err != nil {
			return nil, bts, msgp.WrapError(err, key)
		}

		values := make([]int64, n)
		for i := range values {
			values[i], bts, err = msgp.ReadInt64Bytes(bts)
			if err != nil {
				return nil, bts, msgp.WrapError(err, key, i)
			}
		}
		f[key] = values
	}
	return f, bts, nil
}
