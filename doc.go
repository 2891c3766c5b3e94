// Package xrbridge connects a host engine to an OpenXR runtime.
//
// The bridge negotiates extensions, creates the instance and session, runs
// the session state machine, drives the per-frame wait/begin/end cycle with
// a swapchain the engine renders into, and exposes trackers, action sets,
// actions and interaction profiles behind generation-checked ids.
//
// # Architecture Overview
//
//	xrbridge/
//	├── openxr/          Bridge: instance, session, state machine, frame loop, input
//	├── xr/              Native runtime surface (handles, structs, result codes, Runtime)
//	│   └── sim/         Deterministic in-process runtime for tests and the CLI
//	├── extension/       Extension wrappers and their registry
//	├── graphics/        Graphics adapter contract and driver registry
//	│   └── software/    CPU adapter over x/image
//	├── handle/          Kind-tagged generation-checked handle stores
//	├── actionmap/       YAML action maps applied through the bridge
//	├── wasmext/         Extension wrappers compiled to WebAssembly (wazero)
//	├── config/          Settings loaded from TOML, YAML or JSON
//	├── errors/          Structured error types
//	└── cmd/run/         CLI driving the bridge against the simulator
//
// # Quick Start
//
//	rt := sim.New(sim.DefaultConfig())
//	b := openxr.NewWithDefaults(rt, config.Default())
//	defer b.Finish()
//
//	if err := b.Initialize("software"); err != nil {
//		return err
//	}
//	maps, err := actionmap.Apply(b, actionmap.Default())
//	if err != nil {
//		return err
//	}
//	if err := b.InitializeSession(); err != nil {
//		return err
//	}
//	if err := actionmap.Attach(b, maps); err != nil {
//		return err
//	}
//
//	for b.State() != xr.SessionStateExiting {
//		if !b.Process() {
//			continue
//		}
//		if err := b.PreRender(ctx); err != nil {
//			continue
//		}
//		if b.PreDrawViewport() {
//			render(target)
//			b.PostDrawViewport(ctx, target)
//		}
//		b.EndFrame()
//	}
//
// # Threading
//
// A Bridge is not safe for concurrent use. Drive it from the host's main
// thread; the handle stores and action spaces are locked internally so pose
// reads issued from render callbacks stay consistent.
package xrbridge
