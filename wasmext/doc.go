// Package wasmext runs extension wrappers compiled to WebAssembly.
//
// A plugin is a core WebAssembly module. Every lifecycle hook of
// extension.Wrapper maps to an optional export of the same name in snake
// case; hooks the module does not export are skipped:
//
//	on_instance_created(instance i64)
//	on_instance_destroyed()
//	on_session_created(session i64)
//	on_session_destroyed()
//	on_state_idle() ... on_state_exiting()
//	on_pre_render()
//	on_process()
//	on_event(code i32) -> i32    nonzero consumes the event
//
// Requested extensions are listed in a custom section named "xr_extensions",
// one name per line. A trailing '?' marks the extension optional.
//
// Plugins may import the host module "xr_bridge":
//
//	log(level i32, ptr i32, len i32)
//	extension_enabled(ptr i32, len i32) -> i32
//
// Strings are read from the plugin's exported "memory".
package wasmext
