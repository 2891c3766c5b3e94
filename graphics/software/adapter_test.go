package software

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/wippyai/xr-bridge/graphics"
	"github.com/wippyai/xr-bridge/xr"
	"github.com/wippyai/xr-bridge/xr/sim"
)

func newSwapchain(t *testing.T, format int64, w, h, layers uint32) (*sim.Runtime, *Adapter, xr.Swapchain) {
	t.Helper()
	rt := sim.New(sim.DefaultConfig())
	inst, res := rt.CreateInstance(&xr.InstanceCreateInfo{ApplicationInfo: xr.ApplicationInfo{ApplicationName: "test"}})
	if res.Failed() {
		t.Fatalf("CreateInstance: %v", res)
	}
	sys, _ := rt.GetSystem(inst, &xr.SystemGetInfo{FormFactor: xr.FormFactorHeadMountedDisplay})
	sess, res := rt.CreateSession(inst, &xr.SessionCreateInfo{SystemID: sys})
	if res.Failed() {
		t.Fatalf("CreateSession: %v", res)
	}
	sc, res := rt.CreateSwapchain(sess, &xr.SwapchainCreateInfo{
		Format: format, Width: w, Height: h, SampleCount: 1, FaceCount: 1, ArraySize: layers, MipCount: 1,
	})
	if res.Failed() {
		t.Fatalf("CreateSwapchain: %v", res)
	}
	return rt, New(rt), sc
}

func TestRegistered(t *testing.T) {
	if !graphics.IsRegistered(Driver) {
		t.Fatal("software driver not registered")
	}
	a, err := graphics.New(Driver, sim.New(sim.DefaultConfig()))
	if err != nil {
		t.Fatalf("graphics.New: %v", err)
	}
	if a.Name() != Driver {
		t.Fatalf("Name = %q", a.Name())
	}
}

func TestUnknownDriver(t *testing.T) {
	if _, err := graphics.New("metal", nil); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestFormats(t *testing.T) {
	a := New(nil)
	formats := a.UsableSwapchainFormats()
	if len(formats) != 2 || formats[0] != FormatRGBA8 {
		t.Fatalf("formats = %v", formats)
	}
	if a.SwapchainFormatName(FormatBGRA8) != "BGRA8Unorm" {
		t.Fatalf("name = %q", a.SwapchainFormatName(FormatBGRA8))
	}
	if a.SwapchainFormatName(-5) != "Unknown" {
		t.Fatal("unknown format should be named Unknown")
	}
}

func TestCopyRenderTarget(t *testing.T) {
	rt, a, sc := newSwapchain(t, FormatRGBA8, 4, 4, 2)

	data, err := a.SwapchainImageData(sc, FormatRGBA8, 4, 4, 1, 2)
	if err != nil {
		t.Fatalf("SwapchainImageData: %v", err)
	}

	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	red := color.RGBA{R: 255, A: 255}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.Set(x, y, red)
		}
	}

	if err := a.CopyRenderTargetToImage(src, data, 1); err != nil {
		t.Fatalf("CopyRenderTargetToImage: %v", err)
	}

	layers, ok := rt.SwapchainImage(sc, 1)
	if !ok {
		t.Fatal("image 1 missing")
	}
	for i, layer := range layers {
		if got := color.RGBAModel.Convert(layer.At(2, 2)); got != red {
			t.Fatalf("layer %d pixel = %v, want %v", i, got, red)
		}
	}

	untouched, _ := rt.SwapchainImage(sc, 0)
	if got := color.RGBAModel.Convert(untouched[0].At(2, 2)).(color.RGBA); got.R != 0 {
		t.Fatal("copy touched the wrong image index")
	}

	if err := a.CopyRenderTargetToImage(src, data, 9); err == nil {
		t.Fatal("expected error for out of range index")
	}
	if err := a.CopyRenderTargetToImage("not an image", data, 0); err == nil {
		t.Fatal("expected error for non-image target")
	}
}

func TestCopyScalesAndSwizzles(t *testing.T) {
	rt, a, sc := newSwapchain(t, FormatBGRA8, 8, 8, 1)
	data, err := a.SwapchainImageData(sc, FormatBGRA8, 8, 8, 1, 1)
	if err != nil {
		t.Fatalf("SwapchainImageData: %v", err)
	}

	src := image.NewUniform(color.RGBA{R: 200, B: 10, A: 255})
	small := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			small.Set(x, y, src.C)
		}
	}
	if err := a.CopyRenderTargetToImage([]image.Image{small}, data, 0); err != nil {
		t.Fatalf("CopyRenderTargetToImage: %v", err)
	}

	layers, _ := rt.SwapchainImage(sc, 0)
	px := layers[0].(*image.RGBA).RGBAAt(4, 4)
	if px.R != 10 || px.B != 200 {
		t.Fatalf("pixel = %+v, want red/blue swapped", px)
	}
}

func TestProjection(t *testing.T) {
	half := float32(math.Pi / 4)
	m := Projection(xr.Fovf{AngleLeft: -half, AngleRight: half, AngleUp: half, AngleDown: -half}, 0.1, 100)

	// Symmetric 90 degree frustum: focal terms are 1 and offsets are 0.
	if d := m.At(0, 0) - 1; d > 1e-4 || d < -1e-4 {
		t.Fatalf("m[0][0] = %v, want 1", m.At(0, 0))
	}
	if d := m.At(1, 1) - 1; d > 1e-4 || d < -1e-4 {
		t.Fatalf("m[1][1] = %v, want 1", m.At(1, 1))
	}
	if d := m.At(0, 2); d > 1e-4 || d < -1e-4 {
		t.Fatalf("m[0][2] = %v, want 0", m.At(0, 2))
	}
	if m.At(3, 2) != -1 {
		t.Fatalf("m[3][2] = %v, want -1", m.At(3, 2))
	}
}

func TestSessionChain(t *testing.T) {
	a := New(nil)
	head := a.SessionCreateNext(nil)
	b, ok := xr.FindIn[*Binding](head)
	if !ok || b.Adapter != Driver {
		t.Fatalf("binding not spliced: %v", head.Values())
	}
}
