// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the run pipeline that loads a solution,
// analyses its grids, optionally walks their padded domains and renders or
// publishes the resulting report. It is decoupled from any specific
// entrypoint like a CLI.
package app
