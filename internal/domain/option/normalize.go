package option

import (
	"strconv"
	"strings"
	"time"

	"vega/pkg/errors"
)

// RawQuote is an option chain record as vendors actually deliver it: every
// field a string, empty or carrying sentinels like "N/A" for missing data.
// Normalize is the single boundary where this mess is coerced into typed
// values.
type RawQuote struct {
	Strike         string `json:"strike"`
	Type           string `json:"type"`
	Bid            string `json:"bid"`
	Ask            string `json:"ask"`
	Last           string `json:"last"`
	Delta          string `json:"delta"`
	OpenInterest   string `json:"open_interest"`
	Volume         string `json:"volume"`
	Expiry         string `json:"expiry"`
	ContractSymbol string `json:"contract_symbol"`
}

// Normalize converts a raw vendor record into a Quote.
// Strike and Type are mandatory; everything else degrades to nil.
func Normalize(raw RawQuote) (*Quote, error) {
	strike, ok := parseFloat(raw.Strike)
	if !ok || strike <= 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "bad strike %q", raw.Strike)
	}

	typ := Type(strings.ToLower(strings.TrimSpace(raw.Type)))
	switch typ {
	case "c":
		typ = Call
	case "p":
		typ = Put
	}
	if !typ.Valid() {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "bad contract type %q", raw.Type)
	}

	q := &Quote{
		Strike:     strike,
		Type:       typ,
		ContractID: strings.TrimSpace(raw.ContractSymbol),
	}

	// Prices must be positive to be meaningful; zero or negative values are
	// treated as missing here so downstream math never sees them.
	q.Bid = positiveFloatPtr(raw.Bid)
	q.Ask = positiveFloatPtr(raw.Ask)
	q.Last = positiveFloatPtr(raw.Last)

	if d, ok := parseFloat(raw.Delta); ok && d >= -1 && d <= 1 {
		q.Delta = &d
	}
	if oi, ok := parseInt(raw.OpenInterest); ok && oi >= 0 {
		q.OpenInterest = &oi
	}
	if vol, ok := parseInt(raw.Volume); ok && vol >= 0 {
		q.Volume = &vol
	}
	if exp, err := time.Parse("2006-01-02", strings.TrimSpace(raw.Expiry)); err == nil {
		q.Expiry = &exp
	}

	return q, nil
}

// NormalizeChain converts a whole raw chain, dropping malformed records.
// Returns the usable quotes and the number of records dropped.
func NormalizeChain(raw []RawQuote) ([]Quote, int) {
	quotes := make([]Quote, 0, len(raw))
	dropped := 0
	for _, r := range raw {
		q, err := Normalize(r)
		if err != nil {
			dropped++
			continue
		}
		quotes = append(quotes, *q)
	}
	return quotes, dropped
}

// missing sentinel strings observed in upstream payloads
func isMissing(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "n/a", "na", "-", "--", "null", "none":
		return true
	}
	return false
}

func parseFloat(s string) (float64, bool) {
	if isMissing(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseInt(s string) (int64, bool) {
	if isMissing(s) {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		// Some vendors ship counts as "1200.0"
		f, ferr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if ferr != nil {
			return 0, false
		}
		return int64(f), true
	}
	return v, true
}

func positiveFloatPtr(s string) *float64 {
	if v, ok := parseFloat(s); ok && v > 0 {
		return &v
	}
	return nil
}
