package dict

import "github.com/JohnCGriffin/overflow"

// Boost adds amount to the weight of (p, w) in exact, re-sorting that
// bucket. The addition saturates at the uint32 maximum instead of
// wrapping.
func (d *Dictionary) Boost(p, w string, amount uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	bucket := d.exact[p]
	for i := range bucket {
		if bucket[i].Word != w {
			continue
		}
		newWeight, ok := overflow.Add(int(bucket[i].Weight), int(amount))
		if !ok || newWeight < 0 {
			newWeight = int(^uint32(0))
		}
		bucket[i].Weight = clampUint32(newWeight)
		break
	}
	sortExactBucket(bucket)

	if idx, ok := d.entryIndex[entryKey(p, w)]; ok {
		newWeight, ok := overflow.Add(int(d.all[idx].Weight), int(amount))
		if !ok || newWeight < 0 {
			newWeight = int(^uint32(0))
		}
		d.all[idx].Weight = clampUint32(newWeight)
	}
}

func clampUint32(v int) uint32 {
	if v < 0 {
		return 0
	}
	max := int(^uint32(0))
	if v > max {
		return ^uint32(0)
	}
	return uint32(v)
}
