package model

// Decorator adjusts a schema after it has been decoded and checked, for
// example to inject locale-specific labels or stage-specific defaults.
type Decorator interface {
	Decorate(*FormSchema) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*FormSchema) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(form *FormSchema) error {
	return fn(form)
}
