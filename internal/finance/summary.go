package finance

import "financegateway/internal/fanout"

// Summary counts the outcomes of one aggregate.
type Summary struct {
	Total  int `json:"total"`
	OK     int `json:"ok"`
	Failed int `json:"failed"`
}

// AllFailed reports whether the aggregate has outcomes and none succeeded.
func (s Summary) AllFailed() bool {
	return s.Total > 0 && s.OK == 0
}

// SummarizeKeyed counts a keyed aggregate.
func SummarizeKeyed[V any](outcomes map[string]fanout.Outcome[V]) Summary {
	ok, failed := fanout.CountKeyed(outcomes)
	return Summary{Total: ok + failed, OK: ok, Failed: failed}
}

// SummarizeOrdered counts an ordered aggregate.
func SummarizeOrdered[V any](outcomes []fanout.Outcome[V]) Summary {
	ok, failed := fanout.CountOrdered(outcomes)
	return Summary{Total: ok + failed, OK: ok, Failed: failed}
}
