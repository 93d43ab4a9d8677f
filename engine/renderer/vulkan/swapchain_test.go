package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestChooseSurfaceFormat(t *testing.T) {
	preferred := vk.SurfaceFormat{
		Format:     vk.FormatB8g8r8a8Srgb,
		ColorSpace: vk.ColorSpaceSrgbNonlinear,
	}
	other := vk.SurfaceFormat{
		Format:     vk.FormatR8g8b8a8Unorm,
		ColorSpace: vk.ColorSpaceSrgbNonlinear,
	}

	t.Run("prefers BGRA sRGB", func(t *testing.T) {
		got := chooseSurfaceFormat([]vk.SurfaceFormat{other, preferred})
		assert.Equal(t, preferred, got)
	})

	t.Run("falls back to first format", func(t *testing.T) {
		got := chooseSurfaceFormat([]vk.SurfaceFormat{other})
		assert.Equal(t, other, got)
	})
}

func TestChoosePresentMode(t *testing.T) {
	t.Run("mailbox when available and vsync off", func(t *testing.T) {
		modes := []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}
		assert.Equal(t, vk.PresentModeMailbox, choosePresentMode(modes, false))
	})

	t.Run("fifo when vsync forced", func(t *testing.T) {
		modes := []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}
		assert.Equal(t, vk.PresentModeFifo, choosePresentMode(modes, true))
	})

	t.Run("fifo when mailbox unavailable", func(t *testing.T) {
		modes := []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeImmediate}
		assert.Equal(t, vk.PresentModeFifo, choosePresentMode(modes, false))
	})
}

func TestChooseSwapExtent(t *testing.T) {
	t.Run("fixed surface extent wins", func(t *testing.T) {
		caps := vk.SurfaceCapabilities{
			CurrentExtent: vk.Extent2D{Width: 800, Height: 600},
		}
		got := chooseSwapExtent(caps, 1920, 1080)
		assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, got)
	})

	t.Run("framebuffer size clamped into range", func(t *testing.T) {
		caps := vk.SurfaceCapabilities{
			CurrentExtent:  vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32},
			MinImageExtent: vk.Extent2D{Width: 320, Height: 240},
			MaxImageExtent: vk.Extent2D{Width: 1600, Height: 900},
		}

		got := chooseSwapExtent(caps, 1920, 1080)
		assert.Equal(t, vk.Extent2D{Width: 1600, Height: 900}, got)

		got = chooseSwapExtent(caps, 100, 100)
		assert.Equal(t, vk.Extent2D{Width: 320, Height: 240}, got)

		got = chooseSwapExtent(caps, 1280, 720)
		assert.Equal(t, vk.Extent2D{Width: 1280, Height: 720}, got)
	})
}

func TestClampImageCount(t *testing.T) {
	t.Run("one above minimum", func(t *testing.T) {
		caps := vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 8}
		assert.Equal(t, uint32(3), clampImageCount(caps))
	})

	t.Run("clamped to maximum", func(t *testing.T) {
		caps := vk.SurfaceCapabilities{MinImageCount: 3, MaxImageCount: 3}
		assert.Equal(t, uint32(3), clampImageCount(caps))
	})

	t.Run("zero maximum means unbounded", func(t *testing.T) {
		caps := vk.SurfaceCapabilities{MinImageCount: 4, MaxImageCount: 0}
		assert.Equal(t, uint32(5), clampImageCount(caps))
	})
}
