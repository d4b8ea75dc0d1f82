package arenautils

import "math"

type Statistics struct {
	ArenaCount int
	SlotCount  int
	LiveCount  int
}

func (s *Statistics) Clear() {
	s.ArenaCount = 0
	s.SlotCount = 0
	s.LiveCount = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.ArenaCount += other.ArenaCount
	s.SlotCount += other.SlotCount
	s.LiveCount += other.LiveCount
}

type DetailedStatistics struct {
	Statistics
	FreeSlotCount int
	GenerationMin uint64
	GenerationMax uint64
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.FreeSlotCount = 0
	s.GenerationMin = math.MaxUint64
	s.GenerationMax = 0
}

func (s *DetailedStatistics) AddLiveSlot(gen uint64) {
	s.LiveCount++

	if gen < s.GenerationMin {
		s.GenerationMin = gen
	}

	if gen > s.GenerationMax {
		s.GenerationMax = gen
	}
}

func (s *DetailedStatistics) AddFreeSlot(gen uint64) {
	s.FreeSlotCount++

	if gen < s.GenerationMin {
		s.GenerationMin = gen
	}

	if gen > s.GenerationMax {
		s.GenerationMax = gen
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.FreeSlotCount += other.FreeSlotCount

	if other.GenerationMin < s.GenerationMin {
		s.GenerationMin = other.GenerationMin
	}

	if other.GenerationMax > s.GenerationMax {
		s.GenerationMax = other.GenerationMax
	}
}
