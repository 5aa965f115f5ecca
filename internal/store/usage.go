package store

import "github.com/faheemho18/monefy-pwa-clone/internal/kv"

// DefaultCeiling is the capacity assumed for backends that do not report one.
const DefaultCeiling int64 = 5 << 20

// NearlyFullPercent is the UsedPercent above which NearlyFull reports true.
const NearlyFullPercent = 80

// Usage describes byte-store occupancy. When Estimated is set the free space
// is measured against DefaultCeiling, not a real quota.
type Usage struct {
	Available         bool
	UsedBytes         int64
	FreeBytesEstimate int64
	CapacityBytes     int64
	UsedPercent       float64
	Estimated         bool
}

// Usage sums every key in the backend, not only the reserved ones.
func (s *Store) Usage() Usage {
	u := Usage{Available: s.Available()}
	if !u.Available && !s.readable() {
		return u
	}

	keys, err := s.kv.Keys()
	if err != nil {
		s.log.Warn().Err(err).Msg("listing keys for usage")
		return u
	}
	for _, k := range keys {
		v, ok, err := s.kv.Get(k)
		if err != nil || !ok {
			continue
		}
		u.UsedBytes += kv.EntrySize(k, v)
	}

	u.CapacityBytes = s.ceiling
	u.Estimated = true
	if q, ok := s.kv.(kv.Quota); ok && q.Capacity() > 0 {
		u.CapacityBytes = q.Capacity()
		u.Estimated = false
	}
	u.FreeBytesEstimate = max(0, u.CapacityBytes-u.UsedBytes)
	if u.CapacityBytes > 0 {
		u.UsedPercent = float64(u.UsedBytes) / float64(u.CapacityBytes) * 100
	}
	return u
}

// NearlyFull reports whether more than NearlyFullPercent of the capacity is used.
func (s *Store) NearlyFull() bool {
	return s.Usage().UsedPercent > NearlyFullPercent
}
