package main

import (
	"github.com/opal-lang/interact/internal/demo"
	"github.com/opal-lang/interact/runtime/interact"
	"github.com/opal-lang/interact/runtime/root"
)

// demoGraph is the value graph the interact binary explores.
type demoGraph struct {
	root   *root.Root
	worker *interact.Actor
}

func newDemoGraph(opts ...root.Option) *demoGraph {
	r := demo.NewRand(demo.Seed)

	send := root.NewSend()
	send.Insert("basic", interact.Struct(demo.NewBasic(r)))
	send.Insert("complex", interact.Struct(demo.NewComplex(r)))
	send.Insert("state", interact.Struct(demo.NewState()))

	worker := demo.NewWorker(demo.Foo{A: 1, B: 2})
	send.Insert("worker", worker)

	local := root.NewLocal()
	local.Insert("rc_loops", interact.Struct(demo.NewLocalRcLoop(r)))

	return &demoGraph{root: root.New(send, local, opts...), worker: worker}
}

// Close stops the worker goroutine.
func (g *demoGraph) Close() {
	g.worker.Close()
}
