package modkit

import "allsky/internal/modkit/module"

// Module is the common surface for API modules, see module.Module
type Module = module.Module

// Builder constructs a Module from shared deps and options.
// Modules expose New(deps Deps, opts ...Option) Module matching it
type Builder func(Deps, ...Option) Module
