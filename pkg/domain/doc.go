/*
Package domain contains the core domain models for the Lattice engine.

It defines the fundamental entities of a branching form: the graph of question
steps, the collected answers, in-progress drafts, and live inventory status.
This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Step: One node of the form graph (text, choice, quantity, or conclusion).
  - FormGraph: The directed graph of steps plus the root id; cycles and
    dangling edges are tolerated, never fatal.
  - Answer: One step's collected input, keyed by step id.
  - Draft: The serializable snapshot of an in-progress fill session.
  - InventoryStatus: Live stock state of one quantity choice.
*/
package domain
