// Package software provides a CPU graphics adapter.
//
// Importing the package registers the "software" rendering driver. Swapchain
// images must carry []draw.Image payloads, which xr/sim provides. Render
// targets are plain image.Image values.
package software
