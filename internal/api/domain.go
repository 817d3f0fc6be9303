package api

import (
	"github.com/minsuklee/fundscope/internal/projects"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Projects projects.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	projectsSystem := projects.New(
		runtime.Database.Connection(),
		runtime.Pipeline,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Projects: projectsSystem,
	}
}
