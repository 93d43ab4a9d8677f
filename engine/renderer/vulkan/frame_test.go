package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextFrameSlot(t *testing.T) {
	t.Run("two slots alternate", func(t *testing.T) {
		assert.Equal(t, uint32(1), nextFrameSlot(0, 2))
		assert.Equal(t, uint32(0), nextFrameSlot(1, 2))
	})

	t.Run("three slots cycle", func(t *testing.T) {
		slot := uint32(0)
		seen := []uint32{}
		for i := 0; i < 6; i++ {
			slot = nextFrameSlot(slot, 3)
			seen = append(seen, slot)
		}
		assert.Equal(t, []uint32{1, 2, 0, 1, 2, 0}, seen)
	})
}

func TestFrameSlotDeferredReclaim(t *testing.T) {
	slot := &FrameSlot{}

	destroyed := []string{}
	slot.Defer(func() { destroyed = append(destroyed, "geometry") })
	slot.Defer(func() { destroyed = append(destroyed, "texture") })

	// Nothing runs until the slot is reclaimed.
	assert.Empty(t, destroyed)

	reclaimed := slot.Reclaim()
	assert.Equal(t, 2, reclaimed)
	assert.Equal(t, []string{"geometry", "texture"}, destroyed)

	// Reclaim is idempotent, callbacks run exactly once.
	assert.Equal(t, 0, slot.Reclaim())
	assert.Len(t, destroyed, 2)
}

func TestFrameSlotDeferAcrossCycles(t *testing.T) {
	const framesInFlight = 2
	slots := []*FrameSlot{{}, {}}

	destroyedAt := -1
	currentCycle := 0
	current := uint32(0)

	for cycle := 0; cycle < 5; cycle++ {
		currentCycle = cycle
		slot := slots[current]
		slot.Reclaim()

		if cycle == 1 {
			slot.Defer(func() { destroyedAt = currentCycle })
		}
		current = nextFrameSlot(current, framesInFlight)
	}

	// Deferred in cycle 1 on slot 1; slot 1 comes around again in cycle 3.
	assert.Equal(t, 3, destroyedAt)
}

// fakeFrameSubmitter stands in for the queue during ring tests, counting
// fence waits and presents instead of touching the GPU.
type fakeFrameSubmitter struct {
	fenceWaits []uint32
	submits    int
	presents   []uint32
}

func (s *fakeFrameSubmitter) WaitFence(slot uint32) { s.fenceWaits = append(s.fenceWaits, slot) }
func (s *fakeFrameSubmitter) Submit()               { s.submits++ }
func (s *fakeFrameSubmitter) Present(image uint32)  { s.presents = append(s.presents, image) }

func TestFrameCycleOneWaitAndPresentPerFrame(t *testing.T) {
	const slotCount = 2
	const imageCount = 3

	slots := make([]*FrameSlot, slotCount)
	for i := range slots {
		slots[i] = &FrameSlot{}
	}
	submitter := &fakeFrameSubmitter{}

	reclaimedAt := -1
	currentCycle := 0
	current := uint32(0)
	image := uint32(0)
	for cycle := 0; cycle < 5; cycle++ {
		currentCycle = cycle
		slot := slots[current]

		submitter.WaitFence(current)
		slot.Reclaim()

		if cycle == 0 {
			slot.Defer(func() { reclaimedAt = currentCycle })
		}

		submitter.Submit()
		submitter.Present(image)

		image = (image + 1) % imageCount
		current = nextFrameSlot(current, slotCount)
	}

	assert.Equal(t, []uint32{0, 1, 0, 1, 0}, submitter.fenceWaits)
	assert.Equal(t, 5, submitter.submits)
	assert.Equal(t, []uint32{0, 1, 2, 0, 1}, submitter.presents)
	// Work deferred on slot 0 in cycle 0 runs after that slot's next
	// fence wait, in cycle 2.
	assert.Equal(t, 2, reclaimedAt)
}
