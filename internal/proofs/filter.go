package proofs

import (
	"fmt"
	"sort"
	"strings"
)

// Mode selects which creators' proofs are shown.
type Mode string

const (
	ModeAll Mode = "all"
	ModeMy  Mode = "my"
)

// SortOrder orders proofs by timestamp.
type SortOrder string

const (
	SortRecent SortOrder = "recent"
	SortOldest SortOrder = "oldest"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case "", ModeAll:
		return ModeAll, nil
	case ModeMy, "mine":
		return ModeMy, nil
	}
	return "", fmt.Errorf("invalid filter %q: must be all or my", s)
}

func ParseSort(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(s)) {
	case "", SortRecent:
		return SortRecent, nil
	case SortOldest:
		return SortOldest, nil
	}
	return "", fmt.Errorf("invalid sort %q: must be recent or oldest", s)
}

// Query is a local view over a fetched proof collection.
type Query struct {
	Mode    Mode
	Address string // current wallet address; used by ModeMy
	Search  string
	Sort    SortOrder
}

// Apply filters and sorts records into a new slice. records is not modified.
func Apply(records []Record, q Query) []Record {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if q.Mode == ModeMy && q.Address != "" && !strings.EqualFold(r.Creator, q.Address) {
			continue
		}
		if search != "" && !matches(r, search) {
			continue
		}
		out = append(out, r)
	}

	if q.Sort == SortOldest {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Timestamp.Before(out[j].Timestamp.Time)
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Timestamp.After(out[j].Timestamp.Time)
		})
	}
	return out
}

func matches(r Record, needle string) bool {
	return strings.Contains(strings.ToLower(r.PromptHash), needle) ||
		strings.Contains(strings.ToLower(r.OutputHash), needle) ||
		strings.Contains(strings.ToLower(r.Creator), needle) ||
		strings.Contains(strings.ToLower(r.TxHash), needle)
}

// Stats summarizes a proof collection.
type Stats struct {
	TotalProofs    int `json:"total_proofs"`
	UniqueCreators int `json:"unique_creators"`
	MyProofs       int `json:"my_proofs"`
}

// Summarize counts records, distinct creators and those created by address.
func Summarize(records []Record, address string) Stats {
	creators := make(map[string]struct{})
	st := Stats{TotalProofs: len(records)}
	for _, r := range records {
		creators[strings.ToLower(r.Creator)] = struct{}{}
		if address != "" && strings.EqualFold(r.Creator, address) {
			st.MyProofs++
		}
	}
	st.UniqueCreators = len(creators)
	return st
}
