// Package handle provides typed, generation-checked record stores.
//
// Each Store issues 64-bit handles tagged with the store's Kind. A handle
// packs the kind, a generation counter and a slot index, so a handle from
// another store or a freed slot fails lookup instead of aliasing a newer
// record:
//
//	trackers := handle.NewStore[*Tracker](handle.KindTracker)
//	h := trackers.Alloc(&Tracker{Name: "left_hand"})
//	t, ok := trackers.Get(h)
//	trackers.Free(h) // calls t.Drop() if *Tracker implements Dropper
//	_, ok = trackers.Get(h) // false
//
// Iteration order is unspecified.
package handle
