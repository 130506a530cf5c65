package phase_test

import (
	"fmt"

	"github.com/matzehuels/safephase/pkg/conflict"
	"github.com/matzehuels/safephase/pkg/phase"
)

func ExampleEnumerate() {
	// Connection 0 conflicts with 1, 2 and 3; the others are compatible.
	m, _ := conflict.FromStrings([]string{
		"0111",
		"1000",
		"1000",
		"1000",
	})

	r, _ := phase.Enumerate(m)
	fmt.Println("connections:", r.N)
	for _, p := range r.Phases {
		fmt.Println(p)
	}
	// Output:
	// connections: 4
	// [0]
	// [1]
	// [2]
	// [3]
	// [1 2]
	// [1 3]
	// [2 3]
	// [1 2 3]
}

func ExampleResult_Maximal() {
	m, _ := conflict.FromStrings([]string{
		"010",
		"100",
		"000",
	})

	r, _ := phase.Enumerate(m)
	fmt.Println(r.Maximal())
	// Output:
	// [[0 2] [1 2]]
}

func ExampleWithJunction() {
	m := conflict.Independent(2)

	r, _ := phase.Enumerate(m, phase.WithJunction(phase.Junction{ID: "J3", Type: "priority"}))
	fmt.Println(len(r.Phases), "phases")
	for _, d := range r.Diagnostics {
		fmt.Println(d.Code)
	}
	// Output:
	// 3 phases
	// junction-not-signalized
}
