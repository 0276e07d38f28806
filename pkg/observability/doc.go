/*
Package observability provides tools for monitoring builds.

Metrics exposes Prometheus counters fed by domain.LifecycleHooks, and Chain combines several
hook sets so that metrics, logging and auditing can observe the same builder.
*/
package observability
