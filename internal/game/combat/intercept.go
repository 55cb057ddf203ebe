package combat

import "github.com/udisondev/rsckernel/internal/model"

// Interceptor sees every NPC drop before it is placed on the ground.
// It may replace the item, or take it (keep == false) so nothing is placed.
type Interceptor interface {
	Intercept(owner *model.Player, item model.Item, def *model.ItemDefinition) (out model.Item, keep bool)
}

// InterceptorFunc adapts a function to Interceptor.
type InterceptorFunc func(owner *model.Player, item model.Item, def *model.ItemDefinition) (model.Item, bool)

// Intercept implements Interceptor.
func (f InterceptorFunc) Intercept(owner *model.Player, item model.Item, def *model.ItemDefinition) (model.Item, bool) {
	return f(owner, item, def)
}

// AvariceInterceptor moves stackable drops straight into the carried items
// of an owner wearing the ring of avarice.
type AvariceInterceptor struct{}

// Intercept implements Interceptor.
func (AvariceInterceptor) Intercept(owner *model.Player, item model.Item, def *model.ItemDefinition) (model.Item, bool) {
	if def == nil || !def.Stackable || !owner.HasEquipped(model.ItemRingOfAvarice) {
		return item, true
	}
	owner.Carry(item)
	return item, false
}

// DefaultInterceptors returns the stock interceptor chain.
func DefaultInterceptors() []Interceptor {
	return []Interceptor{AvariceInterceptor{}}
}
