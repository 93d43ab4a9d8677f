package vulkan

import (
	"fmt"
	"sync"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/tessera/engine/core"
)

/**
 * QueueSubmitter serializes all access to Vulkan queues. Queue submission
 * is not thread safe, and both the frame loop and asynchronous uploads can
 * reach the graphics queue at the same time.
 */
type QueueSubmitter struct {
	mu sync.Mutex
}

func NewQueueSubmitter() *QueueSubmitter {
	return &QueueSubmitter{}
}

func (s *QueueSubmitter) Submit(queue vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if res := vk.QueueSubmit(queue, uint32(len(submits)), submits, fence); res != vk.Success {
		err := fmt.Errorf("queue submit failed: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	return nil
}

// Present returns the raw result so the caller can react to
// Suboptimal and ErrorOutOfDate.
func (s *QueueSubmitter) Present(queue vk.Queue, presentInfo *vk.PresentInfo) vk.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	return vk.QueuePresent(queue, presentInfo)
}

func (s *QueueSubmitter) WaitIdle(queue vk.Queue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if res := vk.QueueWaitIdle(queue); res != vk.Success {
		err := fmt.Errorf("queue wait idle failed: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	return nil
}
