package graphics

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/wippyai/xr-bridge/extension"
	"github.com/wippyai/xr-bridge/xr"
)

// ImageData is backend-specific bookkeeping for one swapchain's images.
type ImageData any

// Adapter is the graphics backend the bridge renders through. It is also an
// extension wrapper: it requests its graphics binding extension and splices
// the binding into the session create-info chain.
type Adapter interface {
	extension.Wrapper

	// Name identifies the adapter in logs.
	Name() string

	// UsableSwapchainFormats lists acceptable formats, most preferred first.
	UsableSwapchainFormats() []int64

	// SwapchainFormatName returns a readable name for a format tag.
	SwapchainFormatName(format int64) string

	// SwapchainImageData enumerates the swapchain's images and builds the
	// per-image bookkeeping used by CopyRenderTargetToImage.
	SwapchainImageData(swapchain xr.Swapchain, format int64, width, height, sampleCount, arraySize uint32) (ImageData, error)

	// CleanupSwapchainData releases what SwapchainImageData allocated.
	CleanupSwapchainData(data ImageData)

	// CopyRenderTargetToImage blits the host render target into the image
	// at index.
	CopyRenderTargetToImage(target any, data ImageData, index uint32) error

	// ProjectionFov builds a projection matrix from an asymmetric field of view.
	ProjectionFov(fov xr.Fovf, zNear, zFar float32) mgl32.Mat4
}
