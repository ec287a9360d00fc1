package option

import "time"

// Type identifies the contract right
type Type string

const (
	Call Type = "call"
	Put  Type = "put"
)

// Valid reports whether the type is a known contract right
func (t Type) Valid() bool {
	return t == Call || t == Put
}

// Quote is a normalized option contract quote. Any field except Strike and
// Type may be absent; pointers are nil when the upstream payload had no
// usable value. All coercion from raw vendor payloads happens in Normalize,
// so arithmetic on a Quote never has to defend against sentinels again.
type Quote struct {
	Strike       float64    `json:"strike"`
	Type         Type       `json:"type"`
	Bid          *float64   `json:"bid,omitempty"`
	Ask          *float64   `json:"ask,omitempty"`
	Last         *float64   `json:"last,omitempty"`
	Delta        *float64   `json:"delta,omitempty"`
	OpenInterest *int64     `json:"open_interest,omitempty"`
	Volume       *int64     `json:"volume,omitempty"`
	Expiry       *time.Time `json:"expiry,omitempty"`
	ContractID   string     `json:"contract_id,omitempty"`
}

// Usable reports whether the quote carries at least one price field and can
// participate in scoring. Quotes failing this are still eligible for
// nearest-strike matching.
func (q *Quote) Usable() bool {
	return q.Bid != nil || q.Ask != nil || q.Last != nil
}

// Mid returns the fairest tradable price estimate for the quote.
// Preference order: (bid+ask)/2 when both sides are present and sane,
// then last, then whichever single side exists. The boolean is false when
// no price field is usable.
func (q *Quote) Mid() (float64, bool) {
	if q.Bid != nil && q.Ask != nil && *q.Ask >= *q.Bid && *q.Bid > 0 {
		return (*q.Bid + *q.Ask) / 2, true
	}
	if q.Last != nil {
		return *q.Last, true
	}
	if q.Ask != nil {
		return *q.Ask, true
	}
	if q.Bid != nil {
		return *q.Bid, true
	}
	return 0, false
}

// SpreadPct returns (ask-bid)/mid. The boolean is false when either side of
// the book is missing or the book is crossed (bid above ask); callers treat
// both as the worst allowed spread.
func (q *Quote) SpreadPct() (float64, bool) {
	if q.Bid == nil || q.Ask == nil || *q.Ask < *q.Bid {
		return 0, false
	}
	mid, ok := q.Mid()
	if !ok || mid <= 0 {
		return 0, false
	}
	return (*q.Ask - *q.Bid) / mid, true
}
