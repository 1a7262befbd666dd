package testutil

// Heat2D is a two-dimensional heat solution with a coefficient grid, a
// scratch grid and a scan block.
const Heat2D = `
solution "heat2d" {
  description = "explicit 2-D heat equation"
}

dimensions {
  step   = "t"
  domain = ["x", "y"]
  misc   = ["m"]
  fold   = { x = 4, y = 2 }
}

grid "u" {
  dims = ["t", "x", "y"]
}

grid "coef" {
  dims = ["m"]
}

pack "main" {
  equation "update" {
    lhs = u(t + 1, x, y)
    rhs = u(t, x, y) + coef(0) * (u(t, x - 1, y) + u(t, x + 1, y) + u(t, x, y - 2) + u(t, x, y + 1) - 4 * u(t, x, y))
  }
}

scan {
  domain = { x = 16, y = 8 }
  levels = [{ x = 8, y = 4 }, { x = 4, y = 4 }]
}
`
