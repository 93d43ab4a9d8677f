package engine

type Game struct {
	State        interface{}
	FnInitialize Initialize
	FnUpdate     Update
	FnOnResize   OnResize
}

type Initialize func(engine *Engine) error
type Update func(engine *Engine, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
