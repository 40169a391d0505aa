package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/registration-agent/pkg/catalog"
	"github.com/registration-agent/pkg/registration"
)

func sampleRecord() *registration.Record {
	return &registration.Record{
		Hostname:        "web-01.example.com",
		Port:            8080,
		MachineFunction: "frontend",
		Datacenter:      "ams1",
		Counters: []catalog.Counter{
			{Name: "requests_total", Type: "counter", Dimensions: []string{"method", "", "code"}, StartTime: 1700000000000, EndTime: 1700000060000},
			{Name: "up", Type: "gauge"},
		},
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	in := sampleRecord()
	b, err := Binary{}.Marshal(in)
	require.NoError(t, err)

	out, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestBinaryMarshalIsDeterministic(t *testing.T) {
	a, err := Binary{}.Marshal(sampleRecord())
	require.NoError(t, err)
	b, err := Binary{}.Marshal(sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBinaryMarshalNil(t *testing.T) {
	_, err := Binary{}.Marshal(nil)
	assert.Error(t, err)
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	b, err := Binary{}.Marshal(sampleRecord())
	require.NoError(t, err)

	b = protowire.AppendTag(b, 99, protowire.BytesType)
	b = protowire.AppendString(b, "future")
	b = protowire.AppendTag(b, 100, protowire.VarintType)
	b = protowire.AppendVarint(b, 7)

	out, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, "web-01.example.com", out.Hostname)
	assert.Len(t, out.Counters, 2)
}

func TestDecodeTruncated(t *testing.T) {
	b, err := Binary{}.Marshal(sampleRecord())
	require.NoError(t, err)

	_, err = Decode(b[:len(b)-3])
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeEmpty(t *testing.T) {
	out, err := Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, &registration.Record{}, out)
}
