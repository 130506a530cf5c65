package render_test

import (
	"fmt"

	"github.com/matzehuels/safephase/pkg/conflict"
	"github.com/matzehuels/safephase/pkg/render"
)

func ExampleToDOT() {
	m, _ := conflict.FromStrings([]string{"01", "10"})
	fmt.Print(render.ToDOT(m, render.Options{}))
	// Output:
	// graph conflicts {
	//   bgcolor="transparent";
	//   node [shape=circle, style=filled, fillcolor=white, fontsize=14];
	//
	//   c0 [label="0"];
	//   c1 [label="1"];
	//
	//   c0 -- c1 [color=red];
	// }
}
