// Package pearl is the event-dispatch and lifecycle engine.
//
// A World owns every pearl (a user value addressed by a generation-checked
// handle), the registry mapping event types to listening pearl types, and a
// resource bag of type-keyed singletons.
//
// Mutation is bimodal. Outside dispatch the direct operations (Insert,
// Remove, GetMut, Slice) are unrestricted. While Trigger is delivering an
// event to pearls of type P, direct mutable access to P is refused; callbacks
// use QueueInsert and QueueDestroy instead, which are applied in bounded
// rounds after each listener pass and once more when the outermost Trigger
// returns. Other pearl types and all resources stay freely mutable.
//
// A nested Trigger raised from a callback skips P for as long as P is in
// flight, so no pearl is handed to two callbacks at once. OnSpawn and
// OnDespawn hooks follow the same rules as a callback for their own type, and
// anything they queue or trigger is applied after they return.
//
// The engine is single-threaded. A World must not be shared across goroutines.
package pearl
