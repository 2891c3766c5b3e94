// Package graphics defines the graphics adapter contract and a registry of
// adapters keyed by rendering driver name ("vulkan", "opengl3", "software").
package graphics
