// Package pipeline loads declarative task definitions from HCL files
// and translates them into a format-agnostic model. A task declares
// named inputs (each an expression, a default, or both) and named
// outputs (expressions over the task's own inputs). Input expressions
// may reference other tasks' outputs as `task.<name>.outputs.<output>`;
// those references are left unevaluated here and compiled into lazy
// provider chains by the engine.
package pipeline
