// Package codec 实现注册记录的二进制编码（protobuf 线格式）。
//
//	Record:  1 hostname(string) 2 port(varint) 3 machine_function(string)
//	         4 datacenter(string) 5 counters(repeated Counter)
//	Counter: 1 name(string) 2 type(string) 3 dimensions(repeated string)
//	         4 start_time(varint, ms) 5 end_time(varint, ms)
package codec

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/registration-agent/pkg/catalog"
	"github.com/registration-agent/pkg/registration"
)

const (
	recordHostname        protowire.Number = 1
	recordPort            protowire.Number = 2
	recordMachineFunction protowire.Number = 3
	recordDatacenter      protowire.Number = 4
	recordCounters        protowire.Number = 5

	counterName       protowire.Number = 1
	counterType       protowire.Number = 2
	counterDimensions protowire.Number = 3
	counterStartTime  protowire.Number = 4
	counterEndTime    protowire.Number = 5
)

var ErrMalformed = errors.New("codec: malformed registration record")

// Binary 注册记录序列化器
type Binary struct{}

var _ registration.Serializer = Binary{}

// Marshal 编码注册记录
func (Binary) Marshal(r *registration.Record) ([]byte, error) {
	if r == nil {
		return nil, errors.New("codec: nil record")
	}
	b := make([]byte, 0, 64+len(r.Counters)*48)
	b = appendString(b, recordHostname, r.Hostname)
	if r.Port != 0 {
		b = protowire.AppendTag(b, recordPort, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(r.Port))
	}
	b = appendString(b, recordMachineFunction, r.MachineFunction)
	b = appendString(b, recordDatacenter, r.Datacenter)
	for _, c := range r.Counters {
		b = protowire.AppendTag(b, recordCounters, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalCounter(c))
	}
	return b, nil
}

func marshalCounter(c catalog.Counter) []byte {
	var b []byte
	b = appendString(b, counterName, c.Name)
	b = appendString(b, counterType, c.Type)
	for _, d := range c.Dimensions {
		// 重复字段即使为空字符串也要保留位置
		b = protowire.AppendTag(b, counterDimensions, protowire.BytesType)
		b = protowire.AppendString(b, d)
	}
	if c.StartTime != 0 {
		b = protowire.AppendTag(b, counterStartTime, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(c.StartTime))
	}
	if c.EndTime != 0 {
		b = protowire.AppendTag(b, counterEndTime, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(c.EndTime))
	}
	return b
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// Decode 解码注册记录，未知字段跳过
func Decode(b []byte) (*registration.Record, error) {
	r := &registration.Record{}
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch {
		case num == recordHostname && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(v)
			r.Hostname = s
			return n, nil
		case num == recordPort && typ == protowire.VarintType:
			x, n := protowire.ConsumeVarint(v)
			r.Port = int(x)
			return n, nil
		case num == recordMachineFunction && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(v)
			r.MachineFunction = s
			return n, nil
		case num == recordDatacenter && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(v)
			r.Datacenter = s
			return n, nil
		case num == recordCounters && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(v)
			if n < 0 {
				return n, nil
			}
			c, err := decodeCounter(raw)
			if err != nil {
				return 0, err
			}
			r.Counters = append(r.Counters, c)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, v), nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func decodeCounter(b []byte) (catalog.Counter, error) {
	var c catalog.Counter
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch {
		case num == counterName && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(v)
			c.Name = s
			return n, nil
		case num == counterType && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(v)
			c.Type = s
			return n, nil
		case num == counterDimensions && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(v)
			if n >= 0 {
				c.Dimensions = append(c.Dimensions, s)
			}
			return n, nil
		case num == counterStartTime && typ == protowire.VarintType:
			x, n := protowire.ConsumeVarint(v)
			c.StartTime = int64(x)
			return n, nil
		case num == counterEndTime && typ == protowire.VarintType:
			x, n := protowire.ConsumeVarint(v)
			c.EndTime = int64(x)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, v), nil
	})
	return c, err
}

// walk 逐个字段遍历，fn 返回消费的字节数（负数表示解析错误）
func walk(b []byte, fn func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]
		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if m < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(m))
		}
		b = b[m:]
	}
	return nil
}
