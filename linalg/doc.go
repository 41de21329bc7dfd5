// Package linalg provides dense complex linear-algebra routines that are
// not covered by gonum's real-valued solvers.
//
// The centerpiece is [Eig], a general (non-Hermitian) complex
// eigendecomposition built from Householder Hessenberg reduction, an
// implicitly shifted QR iteration with deflation, and triangular
// back-substitution for the right eigenvectors. It targets the dense,
// moderately sized matrices that arise from delay-weighted graph
// Laplacians (N on the order of 100), not large sparse problems.
package linalg
