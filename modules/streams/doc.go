// Package streams exposes the stream hub and consumer pool as a REST module.
//
// Mount the router under a path prefix:
//
//	r := chi.NewRouter()
//	r.Mount("/api/streams", streams.Router(streams.RouterOptions{
//		Hub:  hub,
//		Pool: pool,
//	}))
//
// Routes:
//
//	POST   /                                      create a stream
//	POST   /{streamID}/data                       append an item
//	DELETE /{streamID}                            close a stream
//	GET    /{streamID}/subscribers                subscriber count
//	POST   /{streamID}/subscriptions              subscribe
//	DELETE /{streamID}/subscriptions/{subID}      unsubscribe
//	GET    /{streamID}/subscriptions/{subID}/next blocking take
//	GET    /{streamID}/subscriptions/{subID}/empty emptiness hint
//	POST   /{streamID}/subscriptions/{subID}/consumer start draining
//	DELETE /{streamID}/subscriptions/{subID}/consumer stop draining
//
// Unknown identifiers map to 404, subscribing to a closed stream to 409.
package streams
