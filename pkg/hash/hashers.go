package hash

// bucketIndex maps a key to a bucket in [0, bucketCount) by reducing its
// absolute value modulo the bucket count. The absolute value is taken in
// 64-bit space: negating math.MinInt32 in 32 bits would overflow back to a
// negative number and produce a negative index.
func bucketIndex(key int32, bucketCount int32) int32 {
	k := int64(key)
	if k < 0 {
		k = -k
	}
	return int32(k % int64(bucketCount))
}
