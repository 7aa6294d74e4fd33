// Package streamhub multiplexes many broadcast streams behind opaque numeric
// identifiers. It owns id allocation and routing: callers hold plain uint64
// handles and the hub resolves them to in-memory stream and subscription
// objects, converting unknown identifiers into explicit NotFound errors at
// this boundary.
//
// Identifiers are allocated from monotonic counters and stored in concurrent
// maps, so lookups are O(1) and ids are never reused or derived from list
// positions.
//
//	hub := streamhub.New[string](ctx) // ctx owns every stream's producer loop
//	defer hub.Close()
//
//	id := hub.CreateStream()
//	_ = hub.AddData(id, "hello")
//
//	subID, err := hub.Subscribe(id)
//	item, err := hub.TakeData(ctx, id, subID)
//
// The hub also carries the end-of-stream policy: CloseStream finishes one
// stream, and Close finishes all of them on process shutdown.
package streamhub
