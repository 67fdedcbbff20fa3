/*
Package domain contains the core domain models of the Spectrum gradient synchronizer.

It defines the color token grammar, gradient directions, the authoritative gradient
state and its serialized CSS expression. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - ColorToken: a validated color string (hex, rgb, rgba, hsl or a named color).
  - Direction: a keyword ("to right") or angle ("135deg") describing the gradient axis.
  - Gradient: the ordered color stops plus direction from which everything is derived.
  - Snapshot: the persisted/transported view of a live synchronizer.
  - Mutation: a structural description of a change requested by a host.
*/
package domain
