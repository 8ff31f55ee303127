package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_IsHighRisk(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"explicit high", `{"riskLevel":"high","score":10}`, true},
		{"score above threshold", `{"riskLevel":"medium","score":71}`, true},
		{"score at threshold", `{"riskLevel":"medium","score":70}`, false},
		{"numeric string score", `{"score":"82"}`, true},
		{"low", `{"riskLevel":"low","score":12}`, false},
		{"finance shape", `{"documentType":"invoice","fields":[],"redFlags":[],"compliance":{}}`, false},
		{"score wrong type", `{"score":{"x":1},"riskLevel":"high"}`, true},
		{"null", `null`, false},
		{"array", `[1,2]`, false},
		{"empty", ``, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Result(tc.raw).IsHighRisk())
		})
	}
}

func TestResult_JSONPassthrough(t *testing.T) {
	type wrap struct {
		Result Result `json:"result"`
	}
	var w wrap
	require.NoError(t, json.Unmarshal([]byte(`{"result":{"score":82,"riskLevel":"high"}}`), &w))
	assert.JSONEq(t, `{"score":82,"riskLevel":"high"}`, string(w.Result))

	out, err := json.Marshal(wrap{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":null}`, string(out))
}

func TestResult_TypedViews(t *testing.T) {
	df, err := NewResult(DeepfakeResult{Score: 90, RiskLevel: RiskHigh, Signals: []Signal{}})
	require.NoError(t, err)
	d, ok := df.Deepfake()
	require.True(t, ok)
	assert.Equal(t, 90, d.Score)
	_, ok = df.Finance()
	assert.False(t, ok)

	fr, err := NewResult(FinanceResult{DocumentType: "invoice"})
	require.NoError(t, err)
	f, ok := fr.Finance()
	require.True(t, ok)
	assert.Equal(t, "invoice", f.DocumentType)
	_, ok = fr.Deepfake()
	assert.False(t, ok)
}

func TestWeight(t *testing.T) {
	assert.Equal(t, 50, Weight(TypeImage))
	assert.Equal(t, 50, Weight(TypeVideo))
	assert.Equal(t, 50, Weight(TypeAudio))
	assert.Equal(t, 30, Weight(TypeFinance))
	assert.Equal(t, 10, Weight(TypeDeepfake))
	assert.Equal(t, 10, Weight("ocr"))
	assert.True(t, IsDeepfakeType(TypeDeepfake))
	assert.False(t, IsDeepfakeType(TypeFinance))
}
