package software

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/wippyai/xr-bridge/errors"
	"github.com/wippyai/xr-bridge/extension"
	"github.com/wippyai/xr-bridge/graphics"
	"github.com/wippyai/xr-bridge/xr"
)

// Driver is the rendering driver name this adapter registers under.
const Driver = "software"

// HeadlessExtension lets a runtime create sessions without a graphics binding.
const HeadlessExtension = "XR_MND_headless"

var (
	FormatRGBA8 = int64(gputypes.TextureFormatRGBA8Unorm)
	FormatBGRA8 = int64(gputypes.TextureFormatBGRA8Unorm)
)

func init() {
	graphics.MustRegister(Driver, func(rt xr.Runtime) (graphics.Adapter, error) {
		return New(rt), nil
	})
}

// Binding is the session create-info record for the CPU adapter.
type Binding struct {
	Adapter  string
	Headless bool
}

// Adapter copies CPU render targets into swapchain images whose payload is
// a []draw.Image holding one image per array layer.
type Adapter struct {
	extension.Base
	rt       xr.Runtime
	headless bool
}

var _ graphics.Adapter = (*Adapter)(nil)

// New creates an adapter bound to rt.
func New(rt xr.Runtime) *Adapter {
	return &Adapter{rt: rt}
}

func (a *Adapter) Name() string { return Driver }

func (a *Adapter) RequestedExtensions() map[string]*bool {
	return map[string]*bool{HeadlessExtension: &a.headless}
}

// Headless reports whether the runtime enabled the headless extension.
func (a *Adapter) Headless() bool { return a.headless }

func (a *Adapter) SessionCreateNext(next *xr.Chain) *xr.Chain {
	return xr.Prepend(next, &Binding{Adapter: Driver, Headless: a.headless})
}

func (a *Adapter) UsableSwapchainFormats() []int64 {
	return []int64{FormatRGBA8, FormatBGRA8}
}

func (a *Adapter) SwapchainFormatName(format int64) string {
	switch format {
	case FormatRGBA8:
		return "RGBA8Unorm"
	case FormatBGRA8:
		return "BGRA8Unorm"
	case int64(gputypes.TextureFormatUndefined):
		return "Undefined"
	}
	return "Unknown"
}

type imageData struct {
	images [][]draw.Image
	format int64
	width  uint32
	height uint32
}

func (a *Adapter) SwapchainImageData(swapchain xr.Swapchain, format int64, width, height, sampleCount, arraySize uint32) (graphics.ImageData, error) {
	images, res := xr.Enumerate(func(dst []xr.SwapchainImage) (uint32, xr.Result) {
		return a.rt.EnumerateSwapchainImages(swapchain, dst)
	})
	if res.Failed() {
		return nil, errors.RuntimeCall(errors.PhaseGraphics, errors.KindSwapchainCreate, "xrEnumerateSwapchainImages", res)
	}

	data := &imageData{format: format, width: width, height: height}
	for i, img := range images {
		layers, ok := img.Image.([]draw.Image)
		if !ok {
			return nil, errors.New(errors.PhaseGraphics, errors.KindUnsupported).
				Detail("swapchain image %d is %T, want []draw.Image", i, img.Image).
				Build()
		}
		if uint32(len(layers)) < arraySize {
			return nil, errors.InvalidData(errors.PhaseGraphics, nil, "swapchain image has fewer layers than requested")
		}
		data.images = append(data.images, layers)
	}

	graphics.Logger().Debug("swapchain images ready",
		zap.Int("images", len(data.images)),
		zap.String("format", a.SwapchainFormatName(format)),
		zap.Uint32("samples", sampleCount))
	return data, nil
}

func (a *Adapter) CleanupSwapchainData(data graphics.ImageData) {
	if d, ok := data.(*imageData); ok {
		d.images = nil
	}
}

// CopyRenderTargetToImage accepts an image.Image, copied into every layer,
// or an []image.Image with one source per layer. Sources of a different size
// are scaled bilinearly.
func (a *Adapter) CopyRenderTargetToImage(target any, data graphics.ImageData, index uint32) error {
	d, ok := data.(*imageData)
	if !ok || d == nil {
		return errors.InvalidInput(errors.PhaseGraphics, "image data was not created by this adapter")
	}
	if int(index) >= len(d.images) {
		return errors.NotFound(errors.PhaseGraphics, "swapchain image", index)
	}
	layers := d.images[index]

	var sources []image.Image
	switch t := target.(type) {
	case image.Image:
		for range layers {
			sources = append(sources, t)
		}
	case []image.Image:
		sources = t
	default:
		return errors.New(errors.PhaseGraphics, errors.KindUnsupported).
			Detail("render target %T is not an image", target).
			Build()
	}

	for i, dst := range layers {
		if i >= len(sources) || sources[i] == nil {
			break
		}
		src := sources[i]
		if src.Bounds().Size() == dst.Bounds().Size() {
			draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
		} else {
			draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		}
		if d.format == FormatBGRA8 {
			swapRedBlue(dst)
		}
	}
	return nil
}

func swapRedBlue(img draw.Image) {
	rgba, ok := img.(*image.RGBA)
	if !ok {
		return
	}
	for i := 0; i+3 < len(rgba.Pix); i += 4 {
		rgba.Pix[i], rgba.Pix[i+2] = rgba.Pix[i+2], rgba.Pix[i]
	}
}

// ProjectionFov builds an OpenGL-style asymmetric frustum.
func (a *Adapter) ProjectionFov(fov xr.Fovf, zNear, zFar float32) mgl32.Mat4 {
	return Projection(fov, zNear, zFar)
}

// Projection builds an OpenGL-style asymmetric frustum from fov angles in radians.
func Projection(fov xr.Fovf, zNear, zFar float32) mgl32.Mat4 {
	left := zNear * math32.Tan(fov.AngleLeft)
	right := zNear * math32.Tan(fov.AngleRight)
	down := zNear * math32.Tan(fov.AngleDown)
	up := zNear * math32.Tan(fov.AngleUp)
	return mgl32.Frustum(left, right, down, up, zNear, zFar)
}
