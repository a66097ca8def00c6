// Package dfc compiles a synchronous dataflow language file down to a
// scheduled, memory-explicit intermediate representation ready for code
// generation.
//
// Compile runs the full pipeline in order: symbol resolution, typing, HIR
// lowering, dependency-graph construction, unitary-node synthesis,
// normalization, causal inlining, memorization, and scheduling. Each stage
// accumulates its own diagnostics rather than aborting on the first
// problem; Compile stops at the first stage that reports any and returns
// them together.
//
// Everything under internal/ is organized one package per pipeline stage:
//
//	internal/passes/resolve   — symbol resolution (S1)
//	internal/passes/typing    — type checking (S2)
//	internal/passes/lower     — HIR lowering (S3)
//	internal/passes/deps      — dependency graphs (S4)
//	internal/passes/unitary   — unitary-node synthesis (S5)
//	internal/passes/normalize — normalization (S6)
//	internal/passes/inline    — causal inlining (S7)
//	internal/passes/memorize  — memorization (S8)
//	internal/passes/schedule  — scheduling (S9)
package dfc
