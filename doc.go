// Package pozeclient is the Go client for the Poze API. It bundles the three
// pieces every consumer of the API needs:
//
//   - Transport client: header/auth management, uniform error normalization,
//     and a result-value contract (never panics, never surfaces raw
//     transport faults)
//   - Auth session store: durable login state with token persistence across
//     process restarts
//   - Cache coordinator: keyed query cache with staleness windows, retries
//     with backoff, single-flight de-duplication and garbage collection,
//     plus a non-cached mutation path with targeted invalidation
//
// Design goals:
//   - Small surface area: functional options configure everything
//   - Results over exceptions: every transport outcome is a value
//   - Safe concurrent use of a single *Client / *Coordinator instance
//   - Pluggable storage, logging and metrics
//
// Typical usage:
//
//	store := pozeclient.NewSessionStore(storage.NewMemory())
//	client := pozeclient.New(
//	    pozeclient.WithBaseURL("https://api.example.com"),
//	    pozeclient.WithTokenSource(store),
//	    pozeclient.WithUnauthorizedHook(store.Teardown),
//	)
//	coord := pozeclient.NewCoordinator()
//	svc := api.New(client, coord, store, nil)
//	sub := svc.Dashboard("abc123")
//	snap := <-sub.Updates()
//
// A 401 from any endpoint clears the session before the result is returned;
// domain consumers should gate auth-sensitive queries with Policy.Enabled
// rather than retry them.
package pozeclient
