// Package geometry builds the solid bodies of a cladding-patterned waveguide:
// one bulk block filling the cell and a ring of elliptical prisms whose
// refractive index is shifted by a small delta.
//
// Bodies are emitted in engine order. The engine resolves overlaps by letting
// later bodies win, so the prisms must follow the block.
package geometry
