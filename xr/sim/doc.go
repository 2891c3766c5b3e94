// Package sim implements xr.Runtime in process.
//
// The simulated runtime follows the OpenXR call-order rules closely enough to
// catch protocol mistakes (frame begin without wait, layers that reference an
// unreleased swapchain image, suggestions after attachment) and records every
// entry point it receives. Tests drive it with the Set*, Push* and Fail*
// methods; the run command uses it as a headless runtime.
//
// Session state changes are queued as events and only take effect when the
// caller polls them, matching how real runtimes deliver them. With
// Config.AutoAdvance the runtime walks idle, ready, synchronized, visible and
// focused on its own once the session is begun.
package sim
