/*
Package builder constructs an analysed stencil solution from the
format-agnostic definition model (defined in the 'config' package).

The construction is a multi-phase process:

 1. Dimensions: the step, domain and misc dimension names are classified and
    the fold and cluster shapes are laid out in domain order.

 2. Grids: every grid definition becomes a grid owned by the solution, with
    its step allocation policy applied.

 3. Equations: both sides of every equation are translated by the Converter.
    Each grid access records its indices and halo on the grid it reads or
    writes, so the halo of every grid is accumulated across all equations of
    a pack.

 4. Analysis: the solution is frozen and fold eligibility is computed for
    every grid.

Upon successful completion the solution can be reported on or used to plan
a run-time scan.
*/
package builder
