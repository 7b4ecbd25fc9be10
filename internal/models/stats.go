package models

// Stats tracks consumed capacity at one placement tier. At every tier
// the owner's Stats equals the additive merge of its children's Stats,
// maintained incrementally after each successful placement.
type Stats struct {
	ListenerCount    int
	TargetGroupCount int
	TargetCount      int
}

func (s *Stats) Merge(other Stats) {
	s.ListenerCount += other.ListenerCount
	s.TargetGroupCount += other.TargetGroupCount
	s.TargetCount += other.TargetCount
}
