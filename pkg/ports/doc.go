/*
Package ports defines the driven ports (interfaces) for Spectrum.

These interfaces decouple the gradient synchronizer and its session manager from
external implementations, allowing them to work with various storage backends
and preset sources.

# Key Interfaces

  - GradientStore: Persists and loads session Snapshots (Memory, File, Redis).
  - PresetCatalog: Lists and resolves named presets (Memory, File, Loam).
  - DistributedLocker: Provides distributed locking for concurrent session access.
*/
package ports
