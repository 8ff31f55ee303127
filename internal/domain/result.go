package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

const RiskHigh = "high"

// HighRiskScore is the score above which an analysis counts as high risk.
const HighRiskScore = 70

// Result is the analyzer output stored verbatim. Its shape depends on the
// analysis type (DeepfakeResult or FinanceResult) and is never validated.
type Result json.RawMessage

func (r Result) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *Result) UnmarshalJSON(b []byte) error {
	*r = append((*r)[:0], b...)
	return nil
}

func (r Result) IsNull() bool {
	t := bytes.TrimSpace(r)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// Risk probes the optional score and riskLevel fields. Either may be missing
// or of an unexpected type; absence is reported through the ok flags.
func (r Result) Risk() (score float64, hasScore bool, level string) {
	var fields map[string]json.RawMessage
	if r.IsNull() || json.Unmarshal(r, &fields) != nil {
		return 0, false, ""
	}
	if raw, ok := fields["score"]; ok {
		score, hasScore = parseScore(raw)
	}
	if raw, ok := fields["riskLevel"]; ok {
		_ = json.Unmarshal(raw, &level)
	}
	return score, hasScore, level
}

func parseScore(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// IsHighRisk: riskLevel == "high" OR score > 70.
func (r Result) IsHighRisk() bool {
	score, hasScore, level := r.Risk()
	return level == RiskHigh || (hasScore && score > HighRiskScore)
}

type Signal struct {
	Type        string  `json:"type"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

type MediaMetadata struct {
	Duration float64 `json:"duration,omitempty"`
	FPS      int     `json:"fps,omitempty"`
	Codec    string  `json:"codec,omitempty"`
}

type DeepfakeResult struct {
	Score     int            `json:"score"`
	RiskLevel string         `json:"riskLevel"`
	Signals   []Signal       `json:"signals"`
	Metadata  *MediaMetadata `json:"metadata,omitempty"`
}

type ExtractedField struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

type RedFlag struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

type Compliance struct {
	KYC       bool `json:"kyc"`
	Signature bool `json:"signature"`
	Stamp     bool `json:"stamp"`
}

type FinanceResult struct {
	DocumentType string           `json:"documentType"`
	Fields       []ExtractedField `json:"fields"`
	RedFlags     []RedFlag        `json:"redFlags"`
	Compliance   Compliance       `json:"compliance"`
}

// NewResult encodes a typed analyzer payload.
func NewResult(v any) (Result, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Result(b), nil
}

// Deepfake decodes r as a deepfake-shaped payload.
func (r Result) Deepfake() (DeepfakeResult, bool) {
	var d DeepfakeResult
	if r.IsNull() || json.Unmarshal(r, &d) != nil || d.RiskLevel == "" {
		return DeepfakeResult{}, false
	}
	return d, true
}

// Finance decodes r as a finance-shaped payload.
func (r Result) Finance() (FinanceResult, bool) {
	var f FinanceResult
	if r.IsNull() || json.Unmarshal(r, &f) != nil || f.DocumentType == "" {
		return FinanceResult{}, false
	}
	return f, true
}
