// Package manager owns the single loaded model. It is structured into small
// files by concern:
//
//   - manager.go: core Manager type, constructor, capability and handle access.
//   - config.go: Config and package defaults.
//   - types.go: Placement, Capability, Status, Handle.
//   - errors.go: LifecycleError kinds and helpers (IsFileNotFound, ...).
//   - load.go: Load; the unload-then-load sequence inside the exclusive section.
//   - unload.go: Unload and the drain of in-flight handle references.
//   - status_report.go: Status and GPUInfo reporting.
//   - events.go / eventpub_memory.go: lifecycle event publishing.
//   - metrics.go: prometheus collectors.
//
// Load and Unload are totally ordered through one exclusive section. Readers
// (Status, Acquire) only ever observe "unloaded" or a fully loaded handle.
package manager
