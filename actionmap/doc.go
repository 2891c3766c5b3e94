// Package actionmap loads action map documents and applies them to a bridge.
//
// An action map names the action sets a game exposes, the typed actions in
// each set together with the trackers they read from, and the bindings each
// interaction profile suggests for those actions:
//
//	action_sets:
//	  - name: player
//	    localized_name: Player
//	    actions:
//	      - name: trigger
//	        localized_name: Trigger
//	        kind: float
//	        trackers: [/user/hand/left, /user/hand/right]
//	interaction_profiles:
//	  - path: /interaction_profiles/khr/simple_controller
//	    bindings:
//	      - action: player/trigger
//	        paths: [/user/hand/left/input/select/click]
//
// Apply creates every record through the bridge and suggests the bindings.
// Attach must follow once a session exists; after it the sets are read-only.
package actionmap
