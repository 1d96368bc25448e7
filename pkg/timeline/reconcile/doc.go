// Package reconcile moves a volume's attached retention policies to a
// desired set with the fewest store calls.
//
// NewPlan is a pure diff. Reconciler executes a plan against a
// timeline.Store: every removed policy is detached and then deleted, every
// new selected entry is created and then attached with the id the store
// returned, and changed policies are edited in place. Chains run
// concurrently up to Config.Concurrency and a failed call stops only its
// own chain. Outcomes are returned per call in Result.
package reconcile
