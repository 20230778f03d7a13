package knolus

import "fmt"

// Module installs a group of functions into a root context.
type Module interface {
	Name() string
	Register(c *Context) error
}

type moduleFunc struct {
	name string
	fn   func(c *Context) error
}

func (m moduleFunc) Name() string              { return m.name }
func (m moduleFunc) Register(c *Context) error { return m.fn(c) }

// NewModule adapts a registration function into a Module.
func NewModule(name string, register func(c *Context) error) Module {
	return moduleFunc{name: name, fn: register}
}

// StandardLibrary is the operator and member set every engine loads unless
// Config.SkipStandardLibrary is set.
var StandardLibrary = NewModule("standard", func(c *Context) error {
	if failure := registerStandardOperators(c); failure != nil {
		return failure
	}
	if failure := registerStandardMembers(c); failure != nil {
		return failure
	}
	return nil
})

// Functions builds a module that registers fns globally.
func Functions(name string, fns ...*Function) Module {
	return NewModule(name, func(c *Context) error {
		for _, fn := range fns {
			if r := c.Register(fn.Name, fn, true); !r.IsSuccess() {
				return fmt.Errorf("module %s: %w", name, r.Failure())
			}
		}
		return nil
	})
}
