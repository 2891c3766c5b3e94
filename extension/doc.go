// Package extension defines extension wrappers and the registry the bridge
// broadcasts lifecycle events through.
//
// A wrapper embeds Base and overrides what it needs:
//
//	type handTracking struct {
//		extension.Base
//		enabled bool
//	}
//
//	func (h *handTracking) RequestedExtensions() map[string]*bool {
//		return map[string]*bool{"XR_EXT_hand_tracking": &h.enabled}
//	}
//
// Registration order is observable: every broadcast and every structure
// chain hook runs in that order.
package extension
