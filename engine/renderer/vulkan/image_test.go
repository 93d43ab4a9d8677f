package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMipLevelCount(t *testing.T) {
	tests := []struct {
		width, height uint32
		want          uint32
	}{
		{1, 1, 1},
		{2, 2, 2},
		{256, 256, 9},
		{512, 256, 10},
		{1024, 1, 11},
		{100, 60, 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mipLevelCount(tt.width, tt.height), "size %dx%d", tt.width, tt.height)
	}
}

func TestMipChainPlan(t *testing.T) {
	t.Run("one blit per level below the base", func(t *testing.T) {
		plan := mipChainPlan(256, 256)
		require.Len(t, plan, int(mipLevelCount(256, 256))-1)

		for i, blit := range plan {
			assert.Equal(t, uint32(i), blit.SrcLevel)
			assert.Equal(t, uint32(i+1), blit.DstLevel)
			assert.Equal(t, blit.SrcWidth/2, blit.DstWidth)
			assert.Equal(t, blit.SrcHeight/2, blit.DstHeight)
		}

		last := plan[len(plan)-1]
		assert.Equal(t, int32(1), last.DstWidth)
		assert.Equal(t, int32(1), last.DstHeight)
	})

	t.Run("non-square dimensions clamp at one", func(t *testing.T) {
		plan := mipChainPlan(8, 2)
		require.Len(t, plan, 3)

		assert.Equal(t, int32(4), plan[0].DstWidth)
		assert.Equal(t, int32(1), plan[0].DstHeight)
		// Height stays clamped while width keeps halving.
		assert.Equal(t, int32(2), plan[1].DstWidth)
		assert.Equal(t, int32(1), plan[1].DstHeight)
		assert.Equal(t, int32(1), plan[2].DstWidth)
		assert.Equal(t, int32(1), plan[2].DstHeight)
	})

	t.Run("non power of two rounds down", func(t *testing.T) {
		plan := mipChainPlan(100, 60)
		require.Len(t, plan, int(mipLevelCount(100, 60))-1)
		assert.Equal(t, int32(50), plan[0].DstWidth)
		assert.Equal(t, int32(30), plan[0].DstHeight)

		last := plan[len(plan)-1]
		assert.Equal(t, int32(1), last.DstWidth)
		assert.Equal(t, int32(1), last.DstHeight)
	})

	t.Run("single texel needs no blits", func(t *testing.T) {
		assert.Empty(t, mipChainPlan(1, 1))
	})
}

func TestImageCreateRejectsZeroDimensions(t *testing.T) {
	assert.Panics(t, func() {
		ImageCreate(nil, vk.ImageType2d, 0, 256, 1, vk.SampleCount1Bit,
			vk.FormatR8g8b8a8Srgb, vk.ImageTilingOptimal,
			vk.ImageUsageFlags(vk.ImageUsageSampledBit), 0, false,
			vk.ImageAspectFlags(vk.ImageAspectColorBit))
	})
	assert.Panics(t, func() {
		ImageCreate(nil, vk.ImageType2d, 256, 0, 1, vk.SampleCount1Bit,
			vk.FormatR8g8b8a8Srgb, vk.ImageTilingOptimal,
			vk.ImageUsageFlags(vk.ImageUsageSampledBit), 0, false,
			vk.ImageAspectFlags(vk.ImageAspectColorBit))
	})
}
