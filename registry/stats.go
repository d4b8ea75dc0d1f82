package registry

import (
	"fmt"

	"github.com/DoeringChristian/Arena-Allocator/arenautils"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// AddStatistics sums the backing arena's slot population into the provided
// statistics.
func (r *Registry[K, V]) AddStatistics(stats *arenautils.Statistics) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	r.store.AddStatistics(stats)
}

// AddDetailedStatistics sums the backing arena's slot population, including
// per-slot generation figures, into the provided statistics.
func (r *Registry[K, V]) AddDetailedStatistics(stats *arenautils.DetailedStatistics) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	r.store.AddDetailedStatistics(stats)
}

// BuildStatsString builds a JSON string describing the registry and its
// backing arena. When detailedMap is true, the output additionally walks every
// slot of the arena, which can be slow and extremely large for big registries.
func (r *Registry[K, V]) BuildStatsString(detailedMap bool) string {
	r.logger.Debug("Registry::BuildStatsString")

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	writer := jwriter.NewWriter()
	rootObj := writer.Object()

	generalObj := rootObj.Name("General").Object()
	generalObj.Name("Name").String(r.name)
	generalObj.Name("Flags").String(r.createFlags.String())
	generalObj.Name("FixedCapacity").Bool(r.fixed)
	generalObj.Name("Count").Int(r.store.Num())
	generalObj.End()

	arenaObj := rootObj.Name("Arena").Object()
	r.store.JsonData(arenaObj)
	arenaObj.End()

	if detailedMap {
		slotsArray := rootObj.Name("Slots").Array()

		_ = r.store.VisitAllSlots(func(slotIndex int, gen uint64, value V, free bool) error {
			slotObj := slotsArray.Object()

			slotObj.Name("Slot").Int(slotIndex)
			slotObj.Name("Generation").Int(int(gen))
			slotObj.Name("Free").Bool(free)
			if !free {
				slotObj.Name("Value").String(fmt.Sprintf("%+v", value))
			}

			slotObj.End()
			return nil
		})

		slotsArray.End()
	}

	rootObj.End()

	return string(writer.Bytes())
}
