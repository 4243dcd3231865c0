package dynamic

import (
	"fmt"

	"github.com/tabforge/tabforge/internal/render/element"
)

// Blank is what the boundary renders in place of a faulted component
func Blank() *element.Element {
	return element.New("div").WithClass("dynamic-blank")
}

// Boundary wraps a render pass: any error or panic degrades to a blank
// element instead of propagating to the host.
func Boundary(render func() (*element.Element, error)) *element.Element {
	el, err := func() (el *element.Element, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("render fault: %v", r)
			}
		}()
		return render()
	}()

	if err != nil || el == nil {
		return Blank()
	}
	return el
}
