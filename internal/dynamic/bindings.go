package dynamic

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dop251/goja"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tabforge/tabforge/internal/render/element"
)

// iconSymbols is the fixed icon library exposed to dynamic components.
// A closed table: components cannot load glyphs from anywhere else.
var iconSymbols = map[string]string{
	"check":    "✓",
	"cross":    "✗",
	"arrow":    "→",
	"star":     "★",
	"warning":  "⚠",
	"info":     "ℹ",
	"pin":      "⌖",
	"search":   "⌕",
	"bolt":     "⚡",
	"heart":    "♥",
	"circle":   "●",
	"square":   "■",
	"triangle": "▲",
}

// installBindings exposes exactly three things to transformed source:
// the view-construction primitive h, the icon symbol table, and the
// charting helpers. Nothing else reaches the runtime.
func installBindings(vm *goja.Runtime) error {
	if err := vm.Set("h", makeH(vm)); err != nil {
		return err
	}

	icons := vm.NewObject()
	for name, glyph := range iconSymbols {
		if err := icons.Set(name, glyph); err != nil {
			return err
		}
	}
	if err := vm.Set("icons", icons); err != nil {
		return err
	}

	charts := vm.NewObject()
	charts.Set("stats", chartStats)
	charts.Set("ticks", chartTicks)
	charts.Set("bar", makeChartBar(vm))
	if err := vm.Set("charts", charts); err != nil {
		return err
	}

	return nil
}

// makeH builds the view-construction primitive: h(tag, props, children...)
func makeH(vm *goja.Runtime) func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return vm.ToValue(element.Empty())
		}

		el := element.New(tagFor(call.Arguments[0].String()))

		if len(call.Arguments) > 1 {
			applyProps(el, call.Arguments[1])
		}
		for _, arg := range call.Arguments[2:] {
			appendChild(el, arg.Export())
		}

		return vm.ToValue(el)
	}
}

// viewTags maps capitalized view primitives to their HTML rendering.
// Unknown tags degrade to a div carrying the tag as a class.
var viewTags = map[string]string{
	"Box":     "div",
	"Row":     "div",
	"Column":  "div",
	"Title":   "h2",
	"Text":    "p",
	"List":    "ul",
	"Item":    "li",
	"Button":  "button",
	"Card":    "div",
	"Divider": "hr",
	"Image":   "img",
	"Code":    "pre",
}

func tagFor(name string) string {
	if tag, ok := viewTags[name]; ok {
		return tag
	}
	return "div"
}

func applyProps(el *element.Element, props goja.Value) {
	exported, ok := props.Export().(map[string]interface{})
	if !ok {
		return
	}
	for key, value := range exported {
		switch v := value.(type) {
		case string:
			el.WithAttr(propName(key), v)
		case bool:
			if v {
				el.WithAttr(propName(key), "")
			}
		case int64:
			el.WithAttr(propName(key), strconv.FormatInt(v, 10))
		case float64:
			el.WithAttr(propName(key), strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
}

func propName(key string) string {
	if key == "className" {
		return "class"
	}
	return strings.ToLower(key)
}

func appendChild(el *element.Element, child interface{}) {
	switch v := child.(type) {
	case nil:
	case *element.Element:
		el.Append(v)
	case string:
		el.Append(element.Text(v))
	case int64:
		el.Append(element.Text(strconv.FormatInt(v, 10)))
	case float64:
		el.Append(element.Text(strconv.FormatFloat(v, 'f', -1, 64)))
	case bool:
		// Conditional rendering idiom: false renders nothing
	case []interface{}:
		for _, item := range v {
			appendChild(el, item)
		}
	default:
		el.Append(element.Text(fmt.Sprintf("%v", v)))
	}
}

// chartStats summarizes a numeric series for dashboard components
func chartStats(values []float64) map[string]float64 {
	if len(values) == 0 {
		return map[string]float64{"min": 0, "max": 0, "mean": 0}
	}
	return map[string]float64{
		"min":  floats.Min(values),
		"max":  floats.Max(values),
		"mean": stat.Mean(values, nil),
	}
}

// chartTicks computes round axis tick positions covering [min, max]
func chartTicks(min, max float64, count int) []float64 {
	if count < 2 || math.IsNaN(min) || math.IsNaN(max) || min >= max {
		return []float64{0}
	}

	span := max - min
	step := math.Pow(10, math.Floor(math.Log10(span/float64(count-1))))
	for span/step > float64(count-1)*2 {
		step *= 2
	}

	start := math.Floor(min/step) * step
	var ticks []float64
	for v := start; v <= max+step/2; v += step {
		ticks = append(ticks, math.Round(v*1e9)/1e9)
	}
	return ticks
}

// makeChartBar renders a numeric series as a horizontal bar chart
// element, heights scaled to the series maximum.
func makeChartBar(vm *goja.Runtime) func(values []float64) goja.Value {
	return func(values []float64) goja.Value {
		chart := element.New("div").WithClass("chart-bar")
		if len(values) == 0 {
			return vm.ToValue(chart)
		}

		max := floats.Max(values)
		if max <= 0 {
			max = 1
		}
		for _, v := range values {
			pct := math.Max(0, v/max*100)
			chart.Append(element.New("div").WithClass("chart-bar-item").
				WithAttr("style", fmt.Sprintf("height:%.1f%%", pct)).
				WithAttr("data-value", strconv.FormatFloat(v, 'f', -1, 64)))
		}
		return vm.ToValue(chart)
	}
}
