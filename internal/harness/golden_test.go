package harness

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/atomstore/internal/atoms"
	"github.com/roach88/atomstore/internal/wire"
)

func TestMarshalTranscript_Shape(t *testing.T) {
	r := NewResult()
	r.AddPull(3, atoms.KindGbaEvent, "success", []wire.Event{
		wire.NewEvent(atoms.KindGbaEvent, wire.F("carrier_id", wire.Int32(1)), wire.F("count", wire.Int32(2))),
	})
	r.AddPull(4, atoms.KindGbaEvent, "skip", []wire.Event{})

	data, err := MarshalTranscript("shape", r)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "}\n"))

	var decoded struct {
		Scenario string `json:"scenario"`
		Pulls    []struct {
			Step   int               `json:"step"`
			Result string            `json:"result"`
			Events []json.RawMessage `json:"events"`
		} `json:"pulls"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "shape", decoded.Scenario)
	require.Len(t, decoded.Pulls, 2)
	assert.Equal(t, 3, decoded.Pulls[0].Step)
	assert.Len(t, decoded.Pulls[0].Events, 1)
	assert.Equal(t, "skip", decoded.Pulls[1].Result)
	assert.NotNil(t, decoded.Pulls[1].Events)
	assert.Contains(t, string(data), `"events": []`)
}

func TestMarshalTranscript_Stable(t *testing.T) {
	r := NewResult()
	r.AddPull(0, atoms.KindNetworkRequests, "success", []wire.Event{
		wire.NewEvent(atoms.KindNetworkRequests, wire.F("carrier_id", wire.Int32(1))),
	})

	a, err := MarshalTranscript("stable", r)
	require.NoError(t, err)
	b, err := MarshalTranscript("stable", r)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
