// Package config defines the format-agnostic definition model of a stencil
// solution, along with the core interfaces (Loader, Converter) for loading
// and interpreting definitions from various sources.
//
// The `config.Model` is the single source of truth for the `builder`
// package. Concrete implementations of the interfaces, such as for HCL, are
// provided in separate packages.
package config
