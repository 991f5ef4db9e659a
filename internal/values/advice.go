package values

type Bucket string

const (
	BucketHigh   Bucket = "high"
	BucketMedium Bucket = "medium"
	BucketLow    Bucket = "low"
)

func BucketFor(gap int) Bucket {
	switch {
	case gap > 2:
		return BucketHigh
	case gap > 0:
		return BucketMedium
	default:
		return BucketLow
	}
}

// AdviceSource looks up the recommendation text for a value name and gap bucket.
type AdviceSource interface {
	Advice(valueName string, bucket Bucket) (string, bool)
}

// Advise returns a copy of ranked with advice attached where the source has any.
func Advise(ranked []Ranked, source AdviceSource) []Ranked {
	out := make([]Ranked, len(ranked))
	copy(out, ranked)
	if source == nil {
		return out
	}
	for i := range out {
		if text, ok := source.Advice(out[i].Name, out[i].Bucket); ok {
			out[i].Advice = text
		}
	}
	return out
}
