/*
Package ports defines the driven ports (interfaces) for the Lattice engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various template stores, draft storage backends,
inventory feeds, and submission endpoints.

# Key Interfaces

  - TemplateStore: Responsible for loading and saving form templates (the
    editor-side Save collaborator).
  - Storage: A local-storage-shaped key/value port for draft persistence.
  - InventorySource: Provides fresh stock snapshots for re-validation.
  - SubmissionSink: Accepts finished submissions.
*/
package ports
