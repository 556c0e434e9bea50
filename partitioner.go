package mend

// DefaultContentType is the content type of text no rule claims.
const DefaultContentType = "__dftl_partition_content_type"

// Partitioner splits a span of the document into typed sub-ranges.
// The returned regions must be ordered by offset.
type Partitioner interface {
	ComputePartitioning(offset, length int) []TypedRegion
}

// PartitionerFunc adapts a function to the Partitioner interface.
type PartitionerFunc func(offset, length int) []TypedRegion

// ComputePartitioning calls f.
func (f PartitionerFunc) ComputePartitioning(offset, length int) []TypedRegion {
	return f(offset, length)
}

// DefaultPartitioner assigns DefaultContentType to the whole span.
type DefaultPartitioner struct{}

// ComputePartitioning returns the span as a single region.
func (DefaultPartitioner) ComputePartitioning(offset, length int) []TypedRegion {
	return []TypedRegion{{Offset: offset, Length: length, ContentType: DefaultContentType}}
}

// Ensure DefaultPartitioner implements Partitioner.
var _ Partitioner = DefaultPartitioner{}
