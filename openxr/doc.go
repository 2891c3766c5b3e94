// Package openxr is the bridge between a host engine and an OpenXR runtime.
//
// # Main Types
//
//   - Bridge: owns the instance, the session and every input record
//   - Host: receives session state and tracker profile notifications
//   - PoseReading: a located pose with velocities and a tracking confidence
//
// # Lifecycle
//
//  1. Initialize negotiates extensions and creates the instance
//  2. InitializeSession creates the session and its spaces
//  3. Process polls events each tick; the ready state begins the session
//     and creates the swapchain
//  4. PreRender, PostDrawViewport and EndFrame run each rendered frame
//  5. Finish tears everything down
//
// # Thread Safety
//
// Bridge is NOT safe for concurrent use. All calls must come from the host's
// main thread.
//
// # Example
//
//	b := openxr.New(rt, cfg, openxr.DefaultOptions())
//	if err := b.Initialize("software"); err != nil {
//		return err
//	}
//	defer b.Finish()
//	if err := b.InitializeSession(); err != nil {
//		return err
//	}
//	for ctx.Err() == nil {
//		if !b.Process() {
//			continue
//		}
//		if err := b.PreRender(ctx); err != nil {
//			continue
//		}
//		if b.PreDrawViewport() {
//			_ = b.PostDrawViewport(ctx, target)
//		}
//		_ = b.EndFrame()
//	}
package openxr
