package scripting

import (
	"context"

	"github.com/dop251/goja"
)

// Globals bound by RegisterDOM. Macro text refers to the first two as
// Page# and TotalPages#.
const (
	pageVar       = "__page"
	totalPagesVar = "__totalPages"
	reportNameVar = "ReportName"
)

type GojaEngine struct {
	vm *goja.Runtime
}

func NewEngine() *GojaEngine {
	vm := goja.New()
	return &GojaEngine{vm: vm}
}

func (e *GojaEngine) Execute(ctx context.Context, script string) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	defer close(done)
	defer e.vm.ClearInterrupt()

	go func() {
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := e.vm.RunString(script)
	if err != nil {
		if interruptedErr, ok := err.(*goja.InterruptedError); ok {
			if cause := interruptedErr.Unwrap(); cause != nil {
				return nil, cause
			}
			return nil, context.Canceled
		}
		return nil, err
	}
	return val.Export(), nil
}

func (e *GojaEngine) RegisterDOM(dom ReportDOM) error {
	global := e.vm.GlobalObject()
	getters := map[string]func() interface{}{
		pageVar:       func() interface{} { return dom.PageNumber() },
		totalPagesVar: func() interface{} { return dom.TotalPages() },
		reportNameVar: func() interface{} { return dom.ReportName() },
	}
	for _, name := range []string{pageVar, totalPagesVar, reportNameVar} {
		get := getters[name]
		err := global.DefineAccessorProperty(name,
			e.vm.ToValue(func(goja.FunctionCall) goja.Value {
				return e.vm.ToValue(get())
			}),
			nil,
			goja.FLAG_FALSE, // Configurable
			goja.FLAG_TRUE,  // Enumerable
		)
		if err != nil {
			return err
		}
	}
	return nil
}
