// Package locks provides per-document mutual exclusion for the
// workflow orchestrator. Two implementations exist: an in-process map
// for single-instance deployments and a redis SET NX locker for
// deployments sharing one database across instances.
package locks
